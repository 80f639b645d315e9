package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/models"
	"github.com/horoscape/horoscape-engine/pkg/repositories"
)

type stubUserRepo struct {
	createErr error
	updateErr error
	created   *models.User
	updated   [2]int
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = uuid.New()
	s.created = user
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubUserRepo) UpdateBirthData(ctx context.Context, id uuid.UUID, month, day int) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = [2]int{month, day}
	return nil
}

var _ repositories.UserRepository = (*stubUserRepo)(nil)

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &stubUserRepo{}
		h := NewProfileHandler(repo, zap.NewNop())

		body := `{"email":"leo@example.com","role_title":"Senior Engineer"}`
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, repo.created)
		assert.Equal(t, "leo@example.com", repo.created.Email)
		assert.Contains(t, rec.Body.String(), repo.created.ID.String())
	})

	t.Run("missing email", func(t *testing.T) {
		h := NewProfileHandler(&stubUserRepo{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing_email")
	})

	t.Run("duplicate email", func(t *testing.T) {
		h := NewProfileHandler(&stubUserRepo{createErr: apperrors.ErrConflict}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"email":"leo@example.com"}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "email_taken")
	})
}

func TestUpdateBirthData(t *testing.T) {
	userID := uuid.New()

	t.Run("success returns derived sign", func(t *testing.T) {
		repo := &stubUserRepo{}
		h := NewProfileHandler(repo, zap.NewNop())

		req := withBody(authedRequest(http.MethodPut, "/api/profile/birth", userID), `{"birth_month":8,"birth_day":5}`)
		rec := httptest.NewRecorder()
		h.UpdateBirthData(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Leo")
		assert.Equal(t, [2]int{8, 5}, repo.updated)
	})

	t.Run("invalid date", func(t *testing.T) {
		h := NewProfileHandler(&stubUserRepo{}, zap.NewNop())

		req := withBody(authedRequest(http.MethodPut, "/api/profile/birth", userID), `{"birth_month":2,"birth_day":30}`)
		rec := httptest.NewRecorder()
		h.UpdateBirthData(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_birth_date")
	})

	t.Run("user not found", func(t *testing.T) {
		h := NewProfileHandler(&stubUserRepo{updateErr: apperrors.ErrNotFound}, zap.NewNop())

		req := withBody(authedRequest(http.MethodPut, "/api/profile/birth", userID), `{"birth_month":8,"birth_day":5}`)
		rec := httptest.NewRecorder()
		h.UpdateBirthData(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h := NewProfileHandler(&stubUserRepo{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPut, "/api/profile/birth", strings.NewReader(`{"birth_month":8,"birth_day":5}`))
		rec := httptest.NewRecorder()
		h.UpdateBirthData(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

// withBody swaps a fresh JSON body onto a request built by authedRequest.
func withBody(req *http.Request, body string) *http.Request {
	clone := httptest.NewRequest(req.Method, req.URL.Path, strings.NewReader(body))
	return clone.WithContext(req.Context())
}
