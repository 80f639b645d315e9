package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/generators"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// contentTestContext bundles the fakes behind one ContentService.
type contentTestContext struct {
	svc     ContentService
	userID  uuid.UUID
	users   *fakeUserRepo
	daily   *fakeDailyRepo
	textGen *generators.MockTextGenerator
	imgGen  *generators.MockImageGenerator
}

func setupContentTest(t *testing.T) *contentTestContext {
	t.Helper()

	month, day := 8, 5
	userID := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "leo@example.com", BirthMonth: &month, BirthDay: &day, RoleTitle: "Senior Engineer"},
	}}

	daily := newFakeDailyRepo()
	styleRepo := &fakeStyleRepo{styles: []*models.Style{
		{ID: uuid.New(), Key: "watercolor", Label: "Soft watercolor", Active: true},
		{ID: uuid.New(), Key: "flat_vector", Label: "Flat vector illustration", Active: true},
	}}
	ruleRepo := &fakeRuleRepo{ruleset: &models.Ruleset{ID: uuid.New(), Name: "default", Active: true}}

	logger := zap.NewNop()
	configSvc := NewDailyConfigService(&fakeSegmentRepo{}, ruleRepo, &fakeThemeRepo{}, styleRepo, logger)

	textGen := &generators.MockTextGenerator{}
	imgGen := &generators.MockImageGenerator{}

	svc := NewContentService(users, daily, styleRepo, configSvc, NewSeededSampler(42), textGen, imgGen, logger)

	return &contentTestContext{
		svc:     svc,
		userID:  userID,
		users:   users,
		daily:   daily,
		textGen: textGen,
		imgGen:  imgGen,
	}
}

func TestGenerateDailyTextIdempotent(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	first, err := tc.svc.GenerateDailyText(ctx, tc.userID)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.NotEmpty(t, first.Narrative)
	assert.Equal(t, "Leo", first.StarSign)

	for i := 0; i < 4; i++ {
		again, err := tc.svc.GenerateDailyText(ctx, tc.userID)
		require.NoError(t, err)
		assert.True(t, again.Cached)
		assert.Equal(t, first.Narrative, again.Narrative)
		assert.Equal(t, first.DoList, again.DoList)
		assert.Equal(t, first.DontList, again.DontList)
		assert.Equal(t, first.CharacterName, again.CharacterName)
	}

	assert.Equal(t, 1, tc.textGen.Calls(), "external generator must run exactly once")
}

func TestGenerateDailyImageIdempotent(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	first, err := tc.svc.GenerateDailyImage(ctx, tc.userID)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.NotEmpty(t, first.ImageURL)
	assert.Contains(t, []string{"watercolor", "flat_vector"}, first.StyleKey)
	assert.Contains(t, models.CharacterTypes, first.CharacterType)

	again, err := tc.svc.GenerateDailyImage(ctx, tc.userID)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, first.ImageURL, again.ImageURL)

	assert.Equal(t, 1, tc.imgGen.Calls())
}

func TestCrossOperationMerge(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	text, err := tc.svc.GenerateDailyText(ctx, tc.userID)
	require.NoError(t, err)

	_, err = tc.svc.GenerateDailyImage(ctx, tc.userID)
	require.NoError(t, err)

	// The image operation must leave every text field byte-identical.
	rec, err := tc.svc.GetDaily(ctx, tc.userID)
	require.NoError(t, err)
	assert.Equal(t, text.Narrative, rec.Narrative)
	assert.Equal(t, text.DoList, rec.DoList)
	assert.Equal(t, text.DontList, rec.DontList)
	assert.Equal(t, text.CharacterName, rec.CharacterName)
	assert.True(t, rec.HasImage())

	// And the text payload now carries the image handle.
	withImage, err := tc.svc.GenerateDailyText(ctx, tc.userID)
	require.NoError(t, err)
	assert.Equal(t, rec.ImageURL, withImage.ImageURL)
	assert.True(t, withImage.Cached)

	assert.Equal(t, 1, tc.textGen.Calls())
	assert.Equal(t, 1, tc.imgGen.Calls())
}

// hookedTextGen lets a test run code between the cache check and the
// double-check read, in the window where a concurrent writer can land.
type hookedTextGen struct {
	inner  *generators.MockTextGenerator
	during func()
}

func (h *hookedTextGen) GenerateNarrative(ctx context.Context, profile *models.UserProfile, cfg *models.ResolvedConfig) (*generators.TextResult, error) {
	res, err := h.inner.GenerateNarrative(ctx, profile, cfg)
	if h.during != nil {
		h.during()
	}
	return res, err
}

func TestDoubleCheckDiscardsOwnCandidate(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	// While "our" generation is in flight, a concurrent request completes
	// and persists its own narrative.
	concurrent := &models.DailyContent{
		UserID:      tc.userID,
		ContentDate: dateOf(nowOf(tc.svc)),
		StarSign:    "Leo",
		Narrative:   "the concurrent winner",
		DoList:      []string{"win"},
	}

	hooked := &hookedTextGen{
		inner: tc.textGen,
		during: func() {
			require.NoError(t, tc.daily.UpsertText(ctx, concurrent))
		},
	}
	tc.svc.(*contentService).textGen = hooked

	payload, err := tc.svc.GenerateDailyText(ctx, tc.userID)
	require.NoError(t, err)

	// Our candidate was generated (cost sunk) but discarded; the concurrent
	// result is what we return and what stays stored.
	assert.Equal(t, 1, tc.textGen.Calls())
	assert.True(t, payload.Cached)
	assert.Equal(t, "the concurrent winner", payload.Narrative)

	rec, err := tc.svc.GetDaily(ctx, tc.userID)
	require.NoError(t, err)
	assert.Equal(t, "the concurrent winner", rec.Narrative)
}

func TestConcurrentFirstRequests(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	payloads := make([]*TextPayload, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payloads[i], errs[i] = tc.svc.GenerateDailyText(ctx, tc.userID)
		}(i)
	}
	wg.Wait()

	// Both requests succeed with content; exactly one row exists and both
	// responses agree with it.
	rec, err := tc.svc.GetDaily(ctx, tc.userID)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, payloads[i])
		assert.Equal(t, rec.Narrative, payloads[i].Narrative)
	}
	assert.Len(t, tc.daily.rows, 1)
}

func TestFailClosedOnVerification(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	// Upsert reports success but nothing lands; the verification read must
	// catch it and surface a persistence failure rather than handing back
	// unstored content.
	tc.daily.dropWrites = true

	_, err := tc.svc.GenerateDailyText(ctx, tc.userID)
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
	assert.Equal(t, 1, tc.textGen.Calls())

	_, err = tc.svc.GetDaily(ctx, tc.userID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "record must not exist after failed verification")
}

func TestPersistenceErrorAfterGeneration(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	tc.daily.upsertErr = assert.AnError

	_, err := tc.svc.GenerateDailyImage(ctx, tc.userID)
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
	// The external cost was already spent; that is accepted, not retried.
	assert.Equal(t, 1, tc.imgGen.Calls())
}

func TestGeneratorErrorsSurfaceClassified(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	tc.textGen.Err = &generators.Error{Category: generators.CategoryQuotaExceeded, Message: "quota exceeded"}

	_, err := tc.svc.GenerateDailyText(ctx, tc.userID)
	require.Error(t, err)
	assert.Equal(t, generators.CategoryQuotaExceeded, generators.CategoryOf(err))

	// No retry happened.
	assert.Equal(t, 1, tc.textGen.Calls())
}

func TestProfileIncomplete(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	noBirth := uuid.New()
	tc.users.users[noBirth] = &models.User{ID: noBirth, Email: "mystery@example.com"}

	_, err := tc.svc.GenerateDailyText(ctx, noBirth)
	assert.ErrorIs(t, err, apperrors.ErrProfileIncomplete)
	assert.Equal(t, 0, tc.textGen.Calls(), "no external call without a profile")

	_, err = tc.svc.GenerateDailyImage(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrProfileIncomplete)
}

func TestConfigurationMissing(t *testing.T) {
	tc := setupContentTest(t)
	ctx := context.Background()

	// Drain the style catalog: resolution must fail before any generation.
	svc := tc.svc.(*contentService)
	emptyStyles := &fakeStyleRepo{}
	svc.styles = emptyStyles
	svc.config = NewDailyConfigService(&fakeSegmentRepo{}, &fakeRuleRepo{ruleset: &models.Ruleset{ID: uuid.New()}}, &fakeThemeRepo{}, emptyStyles, zap.NewNop())

	_, err := tc.svc.GenerateDailyImage(ctx, tc.userID)
	assert.ErrorIs(t, err, apperrors.ErrConfigurationMissing)
	assert.Equal(t, 0, tc.imgGen.Calls())
}

// nowOf reaches into the service for its clock so tests key records to the
// same date the coordinator uses.
func nowOf(svc ContentService) time.Time {
	return svc.(*contentService).now()
}
