// Package mock provides test doubles for the ai service interfaces.
//
// The mocks let tests run without a live AI backend. Defaults are
// deterministic: MockEmbedder derives a unit vector from the text hash
// (equal texts embed identically) and MockGenerator streams a canned
// reply word by word. Behavior can be overridden per test through the
// exported function fields:
//
//	provider := mock.NewMockProvider()
//	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//	provider.GetMockGenerator().Reply = "canned answer"
package mock
