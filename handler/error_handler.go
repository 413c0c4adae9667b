package handler

import (
	"go-wallet-ledger/common"
	"go-wallet-ledger/service"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// serviceError maps a service error to its HTTP form. credentialStatus is the
// status used for a credential mismatch, which differs between login and a
// PIN check on an authenticated session.
func serviceError(err error, credentialStatus int, fallback string) *common.AppError {
	kind := service.KindOf(err)
	switch kind {
	case service.KindNotFound:
		return common.NewAppError(http.StatusNotFound, kind, err.Error(), err)
	case service.KindAlreadyExists, service.KindConflict:
		return common.NewAppError(http.StatusConflict, kind, err.Error(), err)
	case service.KindInvalidCredential:
		return common.NewAppError(credentialStatus, kind, service.ErrInvalidCredential.Error(), err)
	case service.KindAmountInvalid, service.KindInsufficientBalance, service.KindSelfTransfer:
		return common.NewAppError(http.StatusBadRequest, kind, err.Error(), err)
	case service.KindContention:
		return common.NewAppError(http.StatusServiceUnavailable, kind, service.ErrContention.Error(), err)
	case service.KindUnauthorized:
		return common.NewAppError(http.StatusUnauthorized, kind, service.ErrUnauthorized.Error(), err)
	case service.KindCanceled:
		return common.NewAppError(http.StatusServiceUnavailable, kind, "request was canceled or timed out", err)
	default:
		return common.NewAppError(http.StatusInternalServerError, service.KindInternal, fallback, err)
	}
}
