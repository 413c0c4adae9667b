package handler

import (
	"go-wallet-ledger/common"
	"go-wallet-ledger/model"
	"go-wallet-ledger/service"
	"net/http"
)

// TransactionHandler holds dependencies for transfer handlers.
type TransactionHandler struct {
	service *service.AccountService
}

func NewTransactionHandler(s *service.AccountService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// CreateTransfer godoc
// @Summary      Transfer money to another wallet
// @Description  Moves an amount in minor units from the caller to the wallet owning receiver_handle.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "Client key that makes retries safe"
// @Param        transfer body model.TransferRequest true "Receiver and amount"
// @Success      201  {object}  model.LedgerResult
// @Success      200  {object}  model.LedgerResult "Replay of an earlier request"
// @Failure      400  {object}  common.AppError "Invalid amount, insufficient balance or self transfer"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      404  {object}  common.AppError "Receiver not found"
// @Failure      409  {object}  common.AppError "Idempotency conflict"
// @Failure      503  {object}  common.AppError "Account is busy, retry later"
// @Router       /api/transfer [post]
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	senderID, appErr := accountIDFrom(r)
	if appErr != nil {
		return appErr
	}
	key, appErr := idempotencyKey(r)
	if appErr != nil {
		return appErr
	}
	var req model.TransferRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	result, err := h.service.Transfer(r.Context(), senderID, req, key)
	if err != nil {
		return serviceError(err, http.StatusForbidden, "Could not process transfer")
	}

	common.WriteJSON(w, resultStatus(result), result)
	return nil
}
