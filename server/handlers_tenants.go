package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-identity-service/tenants"
)

type CreateTenantRequest struct {
	Name string `json:"name"`
}

type UpdateTenantRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) TenantCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTenantRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "name is required")
			return
		}

		tenant := &tenants.Tenant{
			ID:        uuid.New().String(),
			Name:      req.Name,
			Status:    tenants.StatusActive,
			CreatedAt: time.Now(),
		}
		if err := s.repos.Tenants.Upsert(r.Context(), tenant); err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusCreated, tenant)
	}
}

func (s *Server) TenantUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateTenantRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.ID == "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "id is required")
			return
		}

		tenant, err := s.repos.Tenants.Get(r.Context(), req.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		tenant.Name = req.Name
		if err := s.repos.Tenants.Upsert(r.Context(), tenant); err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusOK, tenant)
	}
}

func (s *Server) TenantGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := s.repos.Tenants.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusOK, tenant)
	}
}

func (s *Server) TenantListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.repos.Tenants.List(r.Context(), 0, 0)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusOK, all)
	}
}

func (s *Server) TenantDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.repos.Tenants.SoftDelete(r.Context(), r.PathValue("id")); err != nil {
			writeServiceError(w, err)
			return
		}

		writeData(w, http.StatusAccepted, "Tenant deleted")
	}
}
