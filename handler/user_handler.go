package handler

import (
	"go-wallet-ledger/common"
	"go-wallet-ledger/model"
	"go-wallet-ledger/service"
	"net/http"
)

type UserHandler struct {
	service *service.AccountService
}

func NewUserHandler(s *service.AccountService) *UserHandler {
	return &UserHandler{service: s}
}

// Signup godoc
// @Summary      Open a wallet
// @Description  Creates an account with zero balance. Handles are unique.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signup body model.SignupRequest true "Handle, password and PIN"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError "Validation failed"
// @Failure      409  {object}  common.AppError "Handle already taken"
// @Router       /signup [post]
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignupRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	account, err := h.service.Signup(r.Context(), req)
	if err != nil {
		return serviceError(err, http.StatusUnauthorized, "Could not create account")
	}

	common.WriteJSON(w, http.StatusCreated, account)
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Verifies handle, password and PIN and returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login body model.LoginRequest true "Credentials"
// @Success      200  {object}  model.TokenResponse
// @Failure      400  {object}  common.AppError "Validation failed"
// @Failure      401  {object}  common.AppError "Invalid credentials"
// @Router       /login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		return serviceError(err, http.StatusUnauthorized, "Could not log in")
	}

	common.WriteJSON(w, http.StatusOK, token)
	return nil
}
