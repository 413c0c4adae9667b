package router

import (
	"go-wallet-ledger/handler"
	"net/http"

	_ "go-wallet-ledger/docs"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(userHandler *handler.UserHandler, accountHandler *handler.AccountHandler, transactionHandler *handler.TransactionHandler, verifier handler.TokenVerifier) http.Handler {
	mux := http.NewServeMux()
	auth := handler.AuthMiddleware(verifier)

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	mux.Handle("POST /signup", handler.ErrorHandlingMiddleware(userHandler.Signup))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))

	mux.Handle("POST /api/deposit", auth(handler.ErrorHandlingMiddleware(accountHandler.Deposit)))
	mux.Handle("POST /api/transfer", auth(handler.ErrorHandlingMiddleware(transactionHandler.CreateTransfer)))
	mux.Handle("GET /api/profile", auth(handler.ErrorHandlingMiddleware(accountHandler.Profile)))
	mux.Handle("GET /api/admin/accounts", auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(accountHandler.AdminList))))

	return handler.RequestLogger(mux)
}
