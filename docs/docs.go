// Package docs registers the OpenAPI description served at /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Show the status of server",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Open a wallet",
                "parameters": [
                    {"description": "Handle, password and PIN", "name": "signup", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Account"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "409": {"description": "Handle already taken", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/deposit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Deposit funds",
                "parameters": [
                    {"type": "string", "description": "Client key that makes retries safe", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Amount and PIN", "name": "deposit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.DepositRequest"}}
                ],
                "responses": {
                    "200": {"description": "Replay of an earlier request", "schema": {"$ref": "#/definitions/model.LedgerResult"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.LedgerResult"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "403": {"description": "PIN mismatch", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "409": {"description": "Idempotency conflict", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "503": {"description": "Account is busy", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/transfer": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Transfer money to another wallet",
                "parameters": [
                    {"type": "string", "description": "Client key that makes retries safe", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Receiver and amount", "name": "transfer", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TransferRequest"}}
                ],
                "responses": {
                    "200": {"description": "Replay of an earlier request", "schema": {"$ref": "#/definitions/model.LedgerResult"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.LedgerResult"}},
                    "400": {"description": "Invalid amount, insufficient balance or self transfer", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Unauthorized: Invalid or missing token", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Receiver not found", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "409": {"description": "Idempotency conflict", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "503": {"description": "Account is busy, retry later", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Show the caller's wallet",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Profile"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/admin/accounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List all wallets",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.AccountSummary"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "403": {"description": "Admin privileges required", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        }
    },
    "definitions": {
        "common.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "kind": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "model.Account": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "handle": {"type": "string"},
                "balance": {"type": "integer"},
                "transaction_ids": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"}
            }
        },
        "model.SignupRequest": {
            "type": "object",
            "required": ["handle", "password", "pin"],
            "properties": {
                "handle": {"type": "string", "maxLength": 32, "minLength": 3},
                "password": {"type": "string", "maxLength": 72, "minLength": 8},
                "pin": {"type": "string", "maxLength": 6, "minLength": 4}
            }
        },
        "model.LoginRequest": {
            "type": "object",
            "required": ["handle", "password", "pin"],
            "properties": {
                "handle": {"type": "string"},
                "password": {"type": "string"},
                "pin": {"type": "string"}
            }
        },
        "model.DepositRequest": {
            "type": "object",
            "required": ["amount", "pin"],
            "properties": {
                "amount": {"type": "integer"},
                "pin": {"type": "string"}
            }
        },
        "model.TransferRequest": {
            "type": "object",
            "required": ["amount", "receiver_handle"],
            "properties": {
                "amount": {"type": "integer"},
                "receiver_handle": {"type": "string"}
            }
        },
        "model.Transaction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sender_id": {"type": "string"},
                "receiver_id": {"type": "string"},
                "amount": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "model.LedgerResult": {
            "type": "object",
            "properties": {
                "transaction": {"$ref": "#/definitions/model.Transaction"},
                "balance": {"type": "integer"},
                "replayed": {"type": "boolean"}
            }
        },
        "model.TransactionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "direction": {"type": "string", "enum": ["in", "out"]},
                "counterparty_id": {"type": "string"},
                "amount": {"type": "integer"},
                "amount_display": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "model.Profile": {
            "type": "object",
            "properties": {
                "account_id": {"type": "string"},
                "handle": {"type": "string"},
                "balance": {"type": "integer"},
                "balance_display": {"type": "string"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/model.TransactionView"}}
            }
        },
        "model.AccountSummary": {
            "type": "object",
            "properties": {
                "account_id": {"type": "string"},
                "handle": {"type": "string"},
                "balance": {"type": "integer"},
                "balance_display": {"type": "string"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/model.TransactionView"}}
            }
        },
        "model.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Go Wallet Ledger API",
	Description:      "Custodial wallet ledger with atomic deposits and transfers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
