package generators

import (
	"context"
	"fmt"
	"sync"

	"github.com/horoscape/horoscape-engine/pkg/models"
)

// MockTextGenerator is a scriptable TextGenerator for tests. It counts calls
// so idempotency tests can assert the external generator was invoked exactly
// once.
type MockTextGenerator struct {
	mu     sync.Mutex
	calls  int
	Result *TextResult
	Err    error
}

var _ TextGenerator = (*MockTextGenerator)(nil)

func (m *MockTextGenerator) GenerateNarrative(ctx context.Context, profile *models.UserProfile, cfg *models.ResolvedConfig) (*TextResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		r := *m.Result
		return &r, nil
	}
	return &TextResult{
		Narrative:     fmt.Sprintf("A steady day for %s (call %d).", profile.StarSign, m.calls),
		DoList:        []string{"take a walk"},
		DontList:      []string{"doomscroll"},
		CharacterName: "Juniper",
	}, nil
}

// Calls returns how many times GenerateNarrative ran.
func (m *MockTextGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockImageGenerator is a scriptable ImageGenerator for tests.
type MockImageGenerator struct {
	mu     sync.Mutex
	calls  int
	Result *ImageResult
	Err    error
}

var _ ImageGenerator = (*MockImageGenerator)(nil)

func (m *MockImageGenerator) GenerateImage(ctx context.Context, profile *models.UserProfile, choices *models.ResolvedChoices) (*ImageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		r := *m.Result
		return &r, nil
	}
	return &ImageResult{
		URL:       fmt.Sprintf("https://images.example/%s-%d.png", choices.StyleKey, m.calls),
		Prompt:    fmt.Sprintf("a %s in %s style", choices.CharacterType, choices.StyleKey),
		Rationale: "mock draw",
	}, nil
}

// Calls returns how many times GenerateImage ran.
func (m *MockImageGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
