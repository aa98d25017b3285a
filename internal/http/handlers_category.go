package http

import (
	"net/http"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type)}
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := s.categories.Create(r.Context(), req.Name, core.CategoryType(req.Type))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

// handleListCategories returns all categories, optionally filtered by
// ?type= or looked up by ?name=.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		c, err := s.categories.GetByName(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []categoryResponse{toCategoryResponse(c)})
		return
	}

	var (
		cats []core.Category
		err  error
	)
	if typ := strings.TrimSpace(r.URL.Query().Get("type")); typ != "" {
		cats, err = s.categories.GetByType(r.Context(), core.CategoryType(typ))
	} else {
		cats, err = s.categories.GetAll(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}

	c, err := s.categories.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

type updateCategoryRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}

	var req updateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	params := storage.UpdateCategoryParams{Name: req.Name}
	if req.Type != nil {
		t := core.CategoryType(*req.Type)
		params.Type = &t
	}

	c, err := s.categories.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}

	if err := s.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
