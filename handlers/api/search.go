package api

import (
	"net/http"

	"github.com/nijaru/videovoyager/models"
	"github.com/nijaru/videovoyager/services/search"
	"github.com/nijaru/videovoyager/validation"
	"github.com/sirupsen/logrus"
)

type SearchHandler struct {
	service   search.Service
	validator *validation.Validator
	logger    *logrus.Logger
}

func NewSearchHandler(service search.Service, validator *validation.Validator, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// HandleSearch handles POST /search_videos
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, jsonRequest); err != nil {
		respondError(w, r, err)
		return
	}

	var req models.SearchRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	videos, err := h.service.SearchVideos(r.Context(), req.Query)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, videos)
}
