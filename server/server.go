package server

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-service/auth"
	"github.com/jrsteele09/go-identity-service/authz"
	"github.com/jrsteele09/go-identity-service/internal/config"
	"github.com/jrsteele09/go-identity-service/tenants"
	"github.com/jrsteele09/go-identity-service/token"
	"github.com/jrsteele09/go-identity-service/users"
)

// Repos holds the repository dependencies for the server
type Repos struct {
	Users   users.Repo
	Tenants tenants.Repo
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    *config.Config
	repos     Repos
	sessions  *auth.SessionManager
	verifier  *token.Verifier
	roleTable authz.Table
}

func New(cfg *config.Config, repos Repos, sessionManager *auth.SessionManager, verifier *token.Verifier) (*Server, error) {
	if repos.Users == nil {
		return nil, errors.New("[Server.New] users repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[Server.New] tenants repo is required")
	}
	if sessionManager == nil {
		return nil, errors.New("[Server.New] session manager is required")
	}
	if verifier == nil {
		return nil, errors.New("[Server.New] token verifier is required")
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		sessions:  sessionManager,
		verifier:  verifier,
		roleTable: cfg.GetEndpointRoles(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Info().Str("path", parts[0]).Msg("route registered")
		}
	}
}
