package mock

import (
	"context"
	"strings"

	"github.com/poiesic/docent/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default behavior: Reply is streamed word by word.
	GenerateFunc func(ctx context.Context, turns []ai.Turn, onFragment ai.FragmentFunc) (string, error)

	// Reply is the canned reply used by the default behavior.
	Reply string

	callCount int
}

// NewMockGenerator creates a mock generator with a canned reply.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Reply: "mock reply",
	}
}

// Generate streams the canned reply word by word through onFragment
// and returns the full reply, unless GenerateFunc is injected.
func (m *MockGenerator) Generate(ctx context.Context, turns []ai.Turn, onFragment ai.FragmentFunc) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, turns, onFragment)
	}

	if onFragment != nil {
		words := strings.SplitAfter(m.Reply, " ")
		for _, word := range words {
			if err := onFragment(ctx, []byte(word)); err != nil {
				return "", err
			}
		}
	}
	return m.Reply, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
	m.Reply = "mock reply"
}
