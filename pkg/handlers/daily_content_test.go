package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/auth"
	"github.com/horoscape/horoscape-engine/pkg/generators"
	"github.com/horoscape/horoscape-engine/pkg/models"
	"github.com/horoscape/horoscape-engine/pkg/services"
)

// mockContentService scripts each operation with a function field.
type mockContentService struct {
	textFn  func(ctx context.Context, userID uuid.UUID) (*services.TextPayload, error)
	imageFn func(ctx context.Context, userID uuid.UUID) (*services.ImagePayload, error)
	getFn   func(ctx context.Context, userID uuid.UUID) (*models.DailyContent, error)
}

func (m *mockContentService) GenerateDailyText(ctx context.Context, userID uuid.UUID) (*services.TextPayload, error) {
	return m.textFn(ctx, userID)
}

func (m *mockContentService) GenerateDailyImage(ctx context.Context, userID uuid.UUID) (*services.ImagePayload, error) {
	return m.imageFn(ctx, userID)
}

func (m *mockContentService) GetDaily(ctx context.Context, userID uuid.UUID) (*models.DailyContent, error) {
	return m.getFn(ctx, userID)
}

var _ services.ContentService = (*mockContentService)(nil)

func authedRequest(method, path string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()}}
	ctx := context.WithValue(req.Context(), auth.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func TestGenerateTextSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &mockContentService{
		textFn: func(ctx context.Context, id uuid.UUID) (*services.TextPayload, error) {
			assert.Equal(t, userID, id)
			return &services.TextPayload{
				StarSign:  "Leo",
				Narrative: "A steady day.",
				DoList:    []string{"stretch"},
				DontList:  []string{"rush"},
			}, nil
		},
	}
	h := NewDailyContentHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GenerateText(rec, authedRequest(http.MethodPost, "/api/daily/text", userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var body services.TextPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Leo", body.StarSign)
	assert.Equal(t, "A steady day.", body.Narrative)
	assert.False(t, body.Cached)
}

func TestGenerateImageSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &mockContentService{
		imageFn: func(ctx context.Context, id uuid.UUID) (*services.ImagePayload, error) {
			return &services.ImagePayload{
				ImageURL:      "https://images.example/a.png",
				CharacterType: "animal",
				StyleKey:      "watercolor",
				Cached:        true,
			}, nil
		},
	}
	h := NewDailyContentHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GenerateImage(rec, authedRequest(http.MethodPost, "/api/daily/image", userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var body services.ImagePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://images.example/a.png", body.ImageURL)
	assert.True(t, body.Cached)
}

func TestGenerateTextErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"profile incomplete", apperrors.ErrProfileIncomplete, http.StatusUnprocessableEntity, "profile_incomplete"},
		{"wrapped profile incomplete", fmt.Errorf("resolve: %w", apperrors.ErrProfileIncomplete), http.StatusUnprocessableEntity, "profile_incomplete"},
		{"configuration missing", apperrors.ErrConfigurationMissing, http.StatusServiceUnavailable, "configuration_missing"},
		{"persistence failure", fmt.Errorf("%w: verification read failed", apperrors.ErrPersistenceFailure), http.StatusInternalServerError, "persistence_failure"},
		{"quota exceeded", &generators.Error{Category: generators.CategoryQuotaExceeded}, http.StatusTooManyRequests, "quota_exceeded"},
		{"billing limit", fmt.Errorf("text generation: %w", &generators.Error{Category: generators.CategoryBillingLimit}), http.StatusPaymentRequired, "billing_limit_reached"},
		{"rate limited", &generators.Error{Category: generators.CategoryRateLimited}, http.StatusTooManyRequests, "rate_limited"},
		{"provider auth", &generators.Error{Category: generators.CategoryAuth}, http.StatusBadGateway, "provider_authentication_failed"},
		{"unknown provider fault", &generators.Error{Category: generators.CategoryUnknown}, http.StatusBadGateway, "external_error"},
		{"unclassified error", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockContentService{
				textFn: func(ctx context.Context, id uuid.UUID) (*services.TextPayload, error) {
					return nil, tt.err
				},
			}
			h := NewDailyContentHandler(svc, zap.NewNop())

			rec := httptest.NewRecorder()
			h.GenerateText(rec, authedRequest(http.MethodPost, "/api/daily/text", uuid.New()))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestGenerateTextWithoutAuthContext(t *testing.T) {
	h := NewDailyContentHandler(&mockContentService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GenerateText(rec, httptest.NewRequest(http.MethodPost, "/api/daily/text", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")
}

func TestGetDaily(t *testing.T) {
	userID := uuid.New()
	generated := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		svc := &mockContentService{
			getFn: func(ctx context.Context, id uuid.UUID) (*models.DailyContent, error) {
				return &models.DailyContent{
					UserID:      id,
					StarSign:    "Leo",
					Narrative:   "A steady day.",
					GeneratedAt: generated,
				}, nil
			},
		}
		h := NewDailyContentHandler(svc, zap.NewNop())

		rec := httptest.NewRecorder()
		h.Get(rec, authedRequest(http.MethodGet, "/api/daily", userID))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "A steady day.")
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockContentService{
			getFn: func(ctx context.Context, id uuid.UUID) (*models.DailyContent, error) {
				return nil, apperrors.ErrNotFound
			},
		}
		h := NewDailyContentHandler(svc, zap.NewNop())

		rec := httptest.NewRecorder()
		h.Get(rec, authedRequest(http.MethodGet, "/api/daily", userID))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_found")
	})
}
