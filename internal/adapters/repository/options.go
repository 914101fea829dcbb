package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithRetention caps how many alerts are kept. The oldest alert is dropped
// first. Zero or a negative value keeps everything.
func WithRetention(n int) Option {
	return func(s *MemoryStore) {
		s.retention = n
	}
}
