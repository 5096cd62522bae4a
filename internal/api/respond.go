package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/youknowom/campus-connect/internal/storage"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError отдает общий текст ошибки. Подробности нижележащей
// ошибки уходят наружу только в dev-режиме, чтобы не светить внутренности.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		log.Printf("%s: %v", message, err)
		if h.devMode {
			resp.Details = err.Error()
		}
	}
	respondJSON(w, status, resp)
}

// respondStorageError сопоставляет сигнальные ошибки хранилища
// с классами ошибок HTTP; все остальное - 500 с общим сообщением.
func (h *Handler) respondStorageError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, storage.ErrPostNotFound):
		h.respondError(w, http.StatusNotFound, "Post not found", nil)
	case errors.Is(err, storage.ErrVoteNotFound):
		h.respondError(w, http.StatusNotFound, "Vote not found", nil)
	case errors.Is(err, storage.ErrEmptyContent):
		h.respondError(w, http.StatusBadRequest, "Content is required", nil)
	case errors.Is(err, storage.ErrContentTooLong):
		h.respondError(w, http.StatusBadRequest, "Content is too long", nil)
	case errors.Is(err, storage.ErrInvalidVoteValue):
		h.respondError(w, http.StatusBadRequest, "Invalid vote value", nil)
	default:
		h.respondError(w, http.StatusInternalServerError, fallback, err)
	}
}
