package api

import (
	"net/http"

	"github.com/nijaru/videovoyager/models"
	"github.com/nijaru/videovoyager/services/summary"
	"github.com/nijaru/videovoyager/validation"
	"github.com/sirupsen/logrus"
)

type SummaryHandler struct {
	service   summary.Service
	validator *validation.Validator
	logger    *logrus.Logger
}

func NewSummaryHandler(service summary.Service, validator *validation.Validator, logger *logrus.Logger) *SummaryHandler {
	return &SummaryHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// HandleSummarize handles POST /summarize_video
func (h *SummaryHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, jsonRequest); err != nil {
		respondError(w, r, err)
		return
	}

	var req models.SummarizeRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	resp, err := h.service.SummarizeVideo(r.Context(), req.VideoURL, req.Translate)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, resp)
}
