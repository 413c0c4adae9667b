// service/main_test.go
package service

import (
	"go-wallet-ledger/logger"
	"os"
	"testing"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}
