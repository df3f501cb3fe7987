package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"voicecollect/internal/api/handler/dto"
	"voicecollect/internal/domain/profile"
	"voicecollect/internal/pkg/apperrors"
	"voicecollect/internal/session"
)

type ProfileHandler struct {
	service      profile.Service
	configurator *session.Configurator
	logger       *slog.Logger
}

func NewProfileHandler(s profile.Service, c *session.Configurator, l *slog.Logger) *ProfileHandler {
	if s == nil {
		panic("profile service cannot be nil")
	}
	if c == nil {
		panic("session configurator cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &ProfileHandler{
		service:      s,
		configurator: c,
		logger:       l.With("component", "ProfileHandler"),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"message":"An internal error occurred"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	var missing *apperrors.MissingFieldsError

	switch {
	case errors.As(err, &missing):
		respondJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
			Message:       "Missing required fields",
			MissingFields: missing.Fields,
		})
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		respondJSON(w, http.StatusBadRequest, dto.MessageResponse{Message: err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, dto.MessageResponse{Message: "Unauthorized"})
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
		respondJSON(w, http.StatusInternalServerError, dto.InternalErrorResponse{
			Message: "An internal error occurred",
			Error:   shortDiagnostic(err),
		})
	}
}

// shortDiagnostic surfaces the error class without leaking stored values
// or wrapped driver detail into the response body.
func shortDiagnostic(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	switch {
	case errors.Is(err, apperrors.ErrPersistence):
		return apperrors.ErrPersistence.Error()
	case errors.Is(err, apperrors.ErrDatabase):
		return apperrors.ErrDatabase.Error()
	default:
		return apperrors.ErrInternalServer.Error()
	}
}

// SaveCustomer handles POST /api/customer. The body is decoded as a flat
// JSON object; an unparseable body is classified as all fields missing
// rather than rejected with a decode error.
func (h *ProfileHandler) SaveCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "Received customer submission")

	var fields map[string]json.RawMessage
	if r.Body != nil {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			h.logger.WarnContext(ctx, "Failed to decode submission body", slog.Any("error", err))
			fields = nil
		}
	}

	_, err := h.service.SubmitProfile(ctx, fields)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			h.logger.WarnContext(ctx, "Submission rejected", slog.Any("error", err))
		} else {
			h.logger.ErrorContext(ctx, "Failed to save customer data", slog.Any("error", err))
		}
		respondError(w, err)
		return
	}

	// The next session should see the new record without waiting for
	// session start.
	if err := h.configurator.Refresh(ctx); err != nil {
		h.logger.WarnContext(ctx, "Instruction refresh after save failed", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "Customer data saved successfully")
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Customer data saved successfully"})
}

// GetCustomer handles GET /api/customer.
func (h *ProfileHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "Received get customer request")

	rec, err := h.service.CurrentProfile(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load customer data", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if rec == nil {
		respondJSON(w, http.StatusNotFound, dto.MessageResponse{Message: "No customer data available"})
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProfileResponse(rec, h.service.RepaymentSummary(rec)))
}

// Test handles GET /api/test.
func (h *ProfileHandler) Test(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Hi, backend running"})
}
