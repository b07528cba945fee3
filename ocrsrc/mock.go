package ocrsrc

import "context"

// MockSource is a deterministic, in-memory Source for tests.
type MockSource struct {
	ByPage map[int][]Observation
	Err    error
}

// Observe implements Source.
func (m *MockSource) Observe(ctx context.Context, pageImage []byte, pageNumber int) ([]Observation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ByPage[pageNumber], nil
}

// Close implements Source.
func (m *MockSource) Close() error { return nil }
