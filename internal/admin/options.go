package admin

import (
	"time"

	"go.uber.org/zap"
)

// DefaultSuccessDelay is how long a dialog's success message stays up before it closes
const DefaultSuccessDelay = time.Second

type settings struct {
	logger       *zap.Logger
	successDelay time.Duration
}

// Option configures controllers and dialogs
type Option func(*settings)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSuccessDelay sets the pause between a dialog's success message and its
// close. Zero closes immediately.
func WithSuccessDelay(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.successDelay = d
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:       zap.NewNop(),
		successDelay: DefaultSuccessDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
