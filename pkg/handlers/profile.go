package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/astro"
	"github.com/horoscape/horoscape-engine/pkg/auth"
	"github.com/horoscape/horoscape-engine/pkg/models"
	"github.com/horoscape/horoscape-engine/pkg/repositories"
)

// CreateUserRequest is the request body for registering a user.
type CreateUserRequest struct {
	Email      string `json:"email"`
	Discipline string `json:"discipline,omitempty"`
	RoleTitle  string `json:"role_title,omitempty"`
	Location   string `json:"location,omitempty"`
}

// UpdateBirthDataRequest is the request body for setting birth data.
type UpdateBirthDataRequest struct {
	BirthMonth int `json:"birth_month"`
	BirthDay   int `json:"birth_day"`
}

// ProfileHandler handles user registration and profile updates.
type ProfileHandler struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(users repositories.UserRepository, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		users:  users,
		logger: logger,
	}
}

// RegisterRoutes registers the profile routes on the given mux.
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/users", h.Create)
	mux.HandleFunc("PUT /api/profile/birth", authMiddleware.RequireUser(h.UpdateBirthData))
}

// Create handles POST /api/users.
// Registers a new user; birth data is set separately.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Email == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_email", "Email is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user := &models.User{
		Email:      req.Email,
		Discipline: req.Discipline,
		RoleTitle:  req.RoleTitle,
		Location:   req.Location,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			if err := ErrorResponse(w, http.StatusConflict, "email_taken", "A user with this email already exists"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to create user",
			zap.String("email", req.Email),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "create_failed", "Failed to create user"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, map[string]string{"id": user.ID.String()}); err != nil {
		h.logger.Error("Failed to encode create response", zap.Error(err))
	}
}

// UpdateBirthData handles PUT /api/profile/birth.
// Sets the authenticated user's birth month and day. The pair must name a
// real calendar date; the derived star sign is returned for confirmation.
func (h *ProfileHandler) UpdateBirthData(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserUUIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "authentication_required", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req UpdateBirthDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	sign, err := astro.StarSign(req.BirthMonth, req.BirthDay)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_birth_date", "Birth month and day must form a valid calendar date"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.users.UpdateBirthData(r.Context(), userID, req.BirthMonth, req.BirthDay); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "User not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to update birth data",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "update_failed", "Failed to update birth data"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"star_sign": sign}); err != nil {
		h.logger.Error("Failed to encode birth data response", zap.Error(err))
	}
}
