package api

import (
	"net/http"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/models"
	"github.com/nijaru/videovoyager/services/chat"
	"github.com/nijaru/videovoyager/validation"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	service   chat.Service
	validator *validation.Validator
	sessions  *sessionIDs
	logger    *logrus.Logger
}

func NewChatHandler(service chat.Service, validator *validation.Validator, cfg config.SessionConfig, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		service:   service,
		validator: validator,
		sessions:  newSessionIDs(cfg),
		logger:    logger,
	}
}

// HandleChat handles POST /video_chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, jsonRequest); err != nil {
		respondError(w, r, err)
		return
	}

	var req models.ChatRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	sessionID := h.sessions.resolve(w, r)

	resp, err := h.service.ChatAboutVideo(r.Context(), sessionID, req.VideoURL, req.Question, req.Translate)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, resp)
}
