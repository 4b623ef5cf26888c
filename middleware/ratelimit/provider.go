package ratelimit

func ProvideRateLimitStore() Store {
	return NewMemoryStore()
}
