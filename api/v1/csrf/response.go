package csrf

import (
	"github.com/jacobsenj/canto-fal/internal/utils"
	"github.com/jacobsenj/canto-fal/pkg/status"
)

// TokenHeader carries the token on the response and is expected back on writes
const TokenHeader = "X-CSRF-Token"

// TokenResponse is the body of GET /csrf
type TokenResponse struct {
	Code      int16  `json:"code"`
	Token     string `json:"token"`
	Header    string `json:"header"`
	ExpiresAt int64  `json:"expiresAt"`
}

type ErrorResponse struct {
	Code   int16  `json:"code"`
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func newTokenResponse(token string, expiresAt int64) TokenResponse {
	return TokenResponse{
		Code:      status.StatusOK,
		Token:     token,
		Header:    TokenHeader,
		ExpiresAt: expiresAt,
	}
}

func newErrorResponse(message string) ErrorResponse {
	return ErrorResponse{
		Code:   status.StatusInternalServerError,
		Detail: "Error with requestId " + utils.GenerateShortID(),
		Error:  message,
	}
}
