// cmd/main.go
package main

import (
	"go-wallet-ledger/app"
)

// @title           Go Wallet Ledger API
// @version         1.0
// @description     Custodial wallet ledger with atomic deposits and transfers.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
