package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-service/sessions"
	"github.com/jrsteele09/go-identity-service/users"
)

// LoginRequest identifies the caller by email or username
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

// LoginResponse is the token pair returned by login and refresh
type LoginResponse struct {
	AccessToken        string    `json:"accessToken"`
	AccessTokenExpiry  time.Time `json:"accessTokenExpiry"`
	RefreshToken       string    `json:"refreshToken"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiry"`
}

func loginResponseFromRecord(record *sessions.Record) LoginResponse {
	return LoginResponse{
		AccessToken:        record.AccessToken,
		AccessTokenExpiry:  record.AccessTokenExpiry,
		RefreshToken:       record.RefreshToken,
		RefreshTokenExpiry: record.RefreshTokenExpiry,
	}
}

// LoginHandler authenticates an identifier/password pair and returns the
// session token pair. Unknown identifier and wrong password are deliberately
// indistinguishable in the response.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.Identifier == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "identifier and password are required")
			return
		}

		record, err := s.sessions.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusOK, loginResponseFromRecord(record))
	}
}

// RefreshTokenHandler exchanges a refresh token for a token pair. Identity
// for rotation comes from the caller's bearer token, which may be past its
// lifetime but must carry a valid signature.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "refreshToken is required")
			return
		}

		record, err := s.sessions.Refresh(r.Context(), req.RefreshToken, ClaimsFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusOK, loginResponseFromRecord(record))
	}
}

// LogoutHandler revokes the caller's session
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LogoutRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		if err := s.sessions.Logout(r.Context(), req.RefreshToken, ClaimsFromContext(r.Context())); err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusOK, "Logged out successfully")
	}
}

// MeHandler projects the caller's principal from their token claims
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.sessions.WhoAmI(r.Context(), ClaimsFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusOK, profile)
	}
}

// RegisterHandler creates a new user under an existing tenant
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.Email == "" || req.Username == "" || req.Password == "" || req.TenantID == "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "email, username, password and tenantId are required")
			return
		}

		if _, err := s.repos.Tenants.Get(r.Context(), req.TenantID); err != nil {
			writeServiceError(w, err)
			return
		}

		if exists, err := s.repos.Users.ExistsByEmail(r.Context(), req.Email); err != nil {
			writeServiceError(w, err)
			return
		} else if exists {
			writeError(w, http.StatusConflict, CodeEmailExists, "Email already registered")
			return
		}

		if exists, err := s.repos.Users.ExistsByUsername(r.Context(), req.Username); err != nil {
			writeServiceError(w, err)
			return
		} else if exists {
			writeError(w, http.StatusConflict, CodeUsernameExists, "Username already taken")
			return
		}

		passwordHash, err := users.HashPassword(req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		user := &users.User{
			ID:           uuid.New().String(),
			Email:        req.Email,
			Username:     req.Username,
			Phone:        req.Phone,
			PasswordHash: passwordHash,
			TenantID:     req.TenantID,
			Roles:        []users.RoleType{users.RoleTenantOperator},
			DateJoined:   time.Now(),
		}
		if err := s.repos.Users.Upsert(r.Context(), user); err != nil {
			writeServiceError(w, err)
			return
		}

		log.Info().Str("user_id", user.ID).Str("tenant_id", user.TenantID).Msg("user registered")
		writeData(w, http.StatusOK, "User registered successfully")
	}
}

// HealthzHandler reports process liveness
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
