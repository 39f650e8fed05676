package resilience

import "time"

// Settings are the knobs every provider client exposes. They are turned
// into a ClientConfig for a named provider family.
type Settings struct {
	// Timeout bounds each attempt. Zero keeps the default.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	Registry *Registry
	Metrics  Recorder
}

// ClientConfig builds the resilient client configuration for a provider.
func (s Settings) ClientConfig(name string) ClientConfig {
	cfg := DefaultClientConfig(name)
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	cfg.MaxRetries = s.MaxRetries
	cfg.Registry = s.Registry
	cfg.Metrics = s.Metrics
	return cfg
}

// NewClient builds and registers a resilient client for a provider.
func (s Settings) NewClient(name string) *Client {
	return NewClient(s.ClientConfig(name))
}

// CallBudget is the longest one Client.Do can take with these settings:
// every attempt running to its timeout plus the worst randomized wait
// between attempts.
func (s Settings) CallBudget() time.Duration {
	return s.ClientConfig("").CallBudget()
}
