package processor

import "github.com/prospectly/billing-service/pkg/backoff"

// Option adjusts processor behavior.
type Option func(*Processor)

// WithMaxRetries sets how many additional attempts follow a failed initial
// dispatch. Negative values are ignored.
func WithMaxRetries(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxRetries = n
		}
	}
}

// WithBackoff sets the retry delay strategy.
func WithBackoff(s backoff.Strategy) Option {
	return func(p *Processor) {
		if s != nil {
			p.backoff = s
		}
	}
}
