package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/auth"
	"github.com/horoscape/horoscape-engine/pkg/generators"
	"github.com/horoscape/horoscape-engine/pkg/services"
)

// DailyContentHandler handles daily content HTTP requests.
type DailyContentHandler struct {
	content services.ContentService
	logger  *zap.Logger
}

// NewDailyContentHandler creates a new daily content handler.
func NewDailyContentHandler(content services.ContentService, logger *zap.Logger) *DailyContentHandler {
	return &DailyContentHandler{
		content: content,
		logger:  logger,
	}
}

// RegisterRoutes registers the daily content routes on the given mux.
func (h *DailyContentHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/daily/text", authMiddleware.RequireUser(h.GenerateText))
	mux.HandleFunc("POST /api/daily/image", authMiddleware.RequireUser(h.GenerateImage))
	mux.HandleFunc("GET /api/daily", authMiddleware.RequireUser(h.Get))
}

// GenerateText handles POST /api/daily/text.
// Returns today's narrative, generating it on the day's first call.
func (h *DailyContentHandler) GenerateText(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserUUIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, apperrors.ErrAuthRequired)
		return
	}

	payload, err := h.content.GenerateDailyText(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to generate daily text",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode text response", zap.Error(err))
	}
}

// GenerateImage handles POST /api/daily/image.
// Returns today's companion image, generating it on the day's first call.
func (h *DailyContentHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserUUIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, apperrors.ErrAuthRequired)
		return
	}

	payload, err := h.content.GenerateDailyImage(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to generate daily image",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode image response", zap.Error(err))
	}
}

// Get handles GET /api/daily.
// Returns today's stored record without triggering any generation.
func (h *DailyContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserUUIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, apperrors.ErrAuthRequired)
		return
	}

	rec, err := h.content.GetDaily(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "No content generated today"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to fetch daily content",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, rec); err != nil {
		h.logger.Error("Failed to encode daily content", zap.Error(err))
	}
}

// writeError maps service errors to HTTP responses. Generator failures keep
// their classified category as the error code so clients can distinguish a
// quota problem from a transient provider fault.
func (h *DailyContentHandler) writeError(w http.ResponseWriter, err error) {
	var (
		status  int
		code    string
		message string
	)

	switch {
	case errors.Is(err, apperrors.ErrAuthRequired):
		status, code, message = http.StatusUnauthorized, "authentication_required", "Authentication required"
	case errors.Is(err, apperrors.ErrProfileIncomplete):
		status, code, message = http.StatusUnprocessableEntity, "profile_incomplete", "Birth month and day are required before generating content"
	case errors.Is(err, apperrors.ErrConfigurationMissing):
		status, code, message = http.StatusServiceUnavailable, "configuration_missing", "Content generation is not configured"
	case errors.Is(err, apperrors.ErrPersistenceFailure):
		status, code, message = http.StatusInternalServerError, "persistence_failure", "Failed to store generated content"
	default:
		var genErr *generators.Error
		if !errors.As(err, &genErr) {
			status, code, message = http.StatusInternalServerError, "internal_error", "Something went wrong"
			break
		}
		switch genErr.Category {
		case generators.CategoryQuotaExceeded:
			status, code, message = http.StatusTooManyRequests, "quota_exceeded", "Generation quota exceeded"
		case generators.CategoryBillingLimit:
			status, code, message = http.StatusPaymentRequired, "billing_limit_reached", "Provider billing limit reached"
		case generators.CategoryRateLimited:
			status, code, message = http.StatusTooManyRequests, "rate_limited", "Provider rate limit hit, try again shortly"
		case generators.CategoryAuth:
			status, code, message = http.StatusBadGateway, "provider_authentication_failed", "Provider rejected our credentials"
		default:
			status, code, message = http.StatusBadGateway, "external_error", "Content generation failed"
		}
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
