package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-service/auth"
	"github.com/jrsteele09/go-identity-service/sessions"
	"github.com/jrsteele09/go-identity-service/tenants"
	"github.com/jrsteele09/go-identity-service/token"
)

// APIResponse is the envelope every JSON endpoint replies with
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError carries a machine-readable code alongside the human message.
// Internal details never leak through this struct.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
}

// Machine-readable error codes
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeExpiredRefreshToken = "EXPIRED_REFRESH_TOKEN"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeInvalidClaims       = "INVALID_CLAIMS"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeForbidden           = "FORBIDDEN"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeTenantNotFound      = "TENANT_NOT_FOUND"
	CodeBadRequest          = "BAD_REQUEST"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   &APIError{Message: message, Code: code, Status: status},
	})
}

// writeServiceError maps typed service errors to HTTP statuses and codes.
// Anything unrecognised is logged and reported as a generic internal error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.InvalidCredentialsErr):
		writeError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, auth.SessionNotFoundErr):
		writeError(w, http.StatusUnauthorized, CodeInvalidRefreshToken, "Refresh token is not valid, please login again")
	case errors.Is(err, auth.RefreshTokenExpiredErr):
		writeError(w, http.StatusUnauthorized, CodeExpiredRefreshToken, "Refresh token has expired, please login again")
	case errors.Is(err, auth.UserNotFoundErr):
		writeError(w, http.StatusUnauthorized, CodeUserNotFound, "User not found")
	case errors.Is(err, auth.InvalidClaimsErr):
		writeError(w, http.StatusUnauthorized, CodeInvalidClaims, "Invalid user claims")
	case errors.Is(err, token.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, CodeInvalidToken, "Invalid access token")
	case errors.Is(err, sessions.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "Session store unavailable, please retry")
	case errors.Is(err, tenants.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeTenantNotFound, "Tenant not found")
	default:
		log.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, CodeInternalError, "Internal error")
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Malformed request body")
		return false
	}
	return true
}
