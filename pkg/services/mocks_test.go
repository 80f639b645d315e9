package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/models"
	"github.com/horoscape/horoscape-engine/pkg/repositories"
)

// fakeUserRepo serves a fixed set of users.
type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateBirthData(ctx context.Context, id uuid.UUID, month, day int) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.BirthMonth = &month
	u.BirthDay = &day
	return nil
}

// fakeDailyRepo reimplements the merge-preserving upsert semantics in memory:
// one row per (user, date), first writer wins per field group, nothing is
// ever nulled. Hooks let tests inject concurrent writers and failures.
type fakeDailyRepo struct {
	mu   sync.Mutex
	rows map[string]*models.DailyContent

	upsertErr    error        // returned by both upserts when set
	dropWrites   bool         // upserts report success but store nothing
	beforeUpsert func(kind string) // runs before each upsert, outside the lock
}

func newFakeDailyRepo() *fakeDailyRepo {
	return &fakeDailyRepo{rows: make(map[string]*models.DailyContent)}
}

func dailyKey(userID uuid.UUID, date time.Time) string {
	return userID.String() + "|" + date.Format("2006-01-02")
}

func (f *fakeDailyRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[dailyKey(userID, date)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeDailyRepo) UpsertText(ctx context.Context, rec *models.DailyContent) error {
	if f.beforeUpsert != nil {
		f.beforeUpsert("text")
	}
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.dropWrites {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := dailyKey(rec.UserID, rec.ContentDate)
	row, ok := f.rows[key]
	if !ok {
		cp := *rec
		cp.ID = uuid.New()
		cp.GeneratedAt = time.Now()
		f.rows[key] = &cp
		rec.ID = cp.ID
		return nil
	}
	if row.StarSign == "" {
		row.StarSign = rec.StarSign
	}
	if row.Narrative == "" {
		row.Narrative = rec.Narrative
		row.DoList = rec.DoList
		row.DontList = rec.DontList
		row.CharacterName = rec.CharacterName
	}
	rec.ID = row.ID
	return nil
}

func (f *fakeDailyRepo) UpsertImage(ctx context.Context, rec *models.DailyContent) error {
	if f.beforeUpsert != nil {
		f.beforeUpsert("image")
	}
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.dropWrites {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := dailyKey(rec.UserID, rec.ContentDate)
	row, ok := f.rows[key]
	if !ok {
		cp := *rec
		cp.ID = uuid.New()
		cp.GeneratedAt = time.Now()
		f.rows[key] = &cp
		rec.ID = cp.ID
		return nil
	}
	if row.StarSign == "" {
		row.StarSign = rec.StarSign
	}
	if row.ImageURL == "" {
		row.ImageURL = rec.ImageURL
		row.ImagePrompt = rec.ImagePrompt
		row.CharacterType = rec.CharacterType
		row.StyleKey = rec.StyleKey
		row.StyleLabel = rec.StyleLabel
		row.Rationale = rec.Rationale
	}
	rec.ID = row.ID
	return nil
}

// fakeSegmentRepo resolves every requested key to a deterministic id.
type fakeSegmentRepo struct {
	empty bool
}

func (f *fakeSegmentRepo) ResolveKeys(ctx context.Context, keys []models.SegmentKey) ([]*models.Segment, error) {
	if f.empty {
		return nil, nil
	}
	segments := make([]*models.Segment, len(keys))
	for i, k := range keys {
		segments[i] = &models.Segment{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(k.Type+"/"+k.Value)),
			Type:  k.Type,
			Value: k.Value,
		}
	}
	return segments, nil
}

// fakeRuleRepo serves a fixed ruleset and rule list.
type fakeRuleRepo struct {
	ruleset *models.Ruleset
	rules   []*models.Rule
}

func (f *fakeRuleRepo) GetActiveRuleset(ctx context.Context) (*models.Ruleset, error) {
	if f.ruleset == nil {
		return nil, apperrors.ErrConfigurationMissing
	}
	return f.ruleset, nil
}

func (f *fakeRuleRepo) GetActiveRules(ctx context.Context, rulesetID uuid.UUID, segmentIDs []uuid.UUID) ([]*models.Rule, error) {
	return f.rules, nil
}

// fakeThemeRepo serves fixed themes and overrides.
type fakeThemeRepo struct {
	themes    []*models.Theme
	overrides []*models.ThemeRule
}

func (f *fakeThemeRepo) GetActiveOn(ctx context.Context, date time.Time) ([]*models.Theme, error) {
	return f.themes, nil
}

func (f *fakeThemeRepo) GetThemeRules(ctx context.Context, themeIDs, segmentIDs []uuid.UUID) ([]*models.ThemeRule, error) {
	return f.overrides, nil
}

// fakeStyleRepo serves a fixed style catalog.
type fakeStyleRepo struct {
	styles []*models.Style
}

func (f *fakeStyleRepo) GetActive(ctx context.Context) ([]*models.Style, error) {
	return f.styles, nil
}

var (
	_ repositories.UserRepository         = (*fakeUserRepo)(nil)
	_ repositories.DailyContentRepository = (*fakeDailyRepo)(nil)
	_ repositories.SegmentRepository      = (*fakeSegmentRepo)(nil)
	_ repositories.RuleRepository         = (*fakeRuleRepo)(nil)
	_ repositories.ThemeRepository        = (*fakeThemeRepo)(nil)
	_ repositories.StyleRepository        = (*fakeStyleRepo)(nil)
)
