package handler

import (
	"go-wallet-ledger/common"
	"go-wallet-ledger/logger"
	"go-wallet-ledger/model"
	"go-wallet-ledger/service"
	"net/http"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	service *service.AccountService
}

func NewAccountHandler(s *service.AccountService) *AccountHandler {
	return &AccountHandler{service: s}
}

// Deposit godoc
// @Summary      Deposit funds
// @Description  Credits the caller's wallet after a PIN check. Amounts are in minor units.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "Client key that makes retries safe"
// @Param        deposit body model.DepositRequest true "Amount and PIN"
// @Success      201  {object}  model.LedgerResult
// @Success      200  {object}  model.LedgerResult "Replay of an earlier request"
// @Failure      400  {object}  common.AppError "Invalid amount"
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Failure      403  {object}  common.AppError "PIN mismatch"
// @Failure      409  {object}  common.AppError "Idempotency conflict"
// @Failure      503  {object}  common.AppError "Account is busy"
// @Router       /api/deposit [post]
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := accountIDFrom(r)
	if appErr != nil {
		return appErr
	}
	key, appErr := idempotencyKey(r)
	if appErr != nil {
		return appErr
	}
	var req model.DepositRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     req.Amount,
	}).Info("Deposit request received")

	result, err := h.service.Deposit(r.Context(), accountID, req, key)
	if err != nil {
		return serviceError(err, http.StatusForbidden, "Could not process deposit")
	}

	common.WriteJSON(w, resultStatus(result), result)
	return nil
}

// Profile godoc
// @Summary      Show the caller's wallet
// @Description  Returns balance and transaction history in creation order.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.Profile
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/profile [get]
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := accountIDFrom(r)
	if appErr != nil {
		return appErr
	}

	profile, err := h.service.Profile(r.Context(), accountID)
	if err != nil {
		return serviceError(err, http.StatusForbidden, "Could not load profile")
	}

	common.WriteJSON(w, http.StatusOK, profile)
	return nil
}

// AdminList godoc
// @Summary      List all wallets
// @Description  Balance and history of every account. Admin role required.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.AccountSummary
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Router       /api/admin/accounts [get]
func (h *AccountHandler) AdminList(w http.ResponseWriter, r *http.Request) *common.AppError {
	summaries, err := h.service.AdminList(r.Context())
	if err != nil {
		return serviceError(err, http.StatusForbidden, "Could not list accounts")
	}

	common.WriteJSON(w, http.StatusOK, summaries)
	return nil
}

func resultStatus(result *model.LedgerResult) int {
	if result.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}
