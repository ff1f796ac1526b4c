package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"farmtrace/assistant/internal/middleware"
	"farmtrace/assistant/internal/rag"
)

type Answerer interface {
	Answer(ctx context.Context, question string, role rag.Role, useCase string) (string, error)
}

type Handler struct {
	service Answerer
}

func NewHandler(service Answerer) *Handler {
	return &Handler{service: service}
}

type AskRequest struct {
	Question string `json:"question"`
	Role     string `json:"role"`
	UseCase  string `json:"use_case"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "question is required", http.StatusBadRequest)
		return
	}

	role := rag.Role(req.Role)
	if req.Role == "" {
		role = rag.RoleFarmer
	}
	if !role.Valid() {
		h.writeError(ctx, w, "VALIDATION_ERROR", "unknown role", http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "answering question", "role", role, "correlationId", correlationID)

	answer, err := h.service.Answer(ctx, req.Question, role, req.UseCase)
	if err != nil {
		if errors.Is(err, rag.ErrGenerationUnavailable) {
			h.writeError(ctx, w, "SERVICE_UNAVAILABLE", "assistant is not configured", http.StatusServiceUnavailable)
			return
		}
		slog.ErrorContext(ctx, "failed to answer question", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AskResponse{Answer: answer}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
