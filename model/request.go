// file: model/request.go

package model

// SignupRequest defines the payload for opening a wallet.
type SignupRequest struct {
	Handle   string `json:"handle" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Pin      string `json:"pin" validate:"required,number,min=4,max=6"`
}

// LoginRequest defines the payload for authentication. Both secrets are checked.
type LoginRequest struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required"`
	Pin      string `json:"pin" validate:"required"`
}

// DepositRequest credits the caller's own wallet after a PIN check.
type DepositRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Pin    string `json:"pin" validate:"required"`
}

// TransferRequest moves funds from the caller to the wallet owning ReceiverHandle.
type TransferRequest struct {
	ReceiverHandle string `json:"receiver_handle" validate:"required"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
}
