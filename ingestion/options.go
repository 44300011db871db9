package ingestion

import (
	"log/slog"
	"runtime"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/retry"
	"github.com/poiesic/jobtrail/rules"
)

// Option configures the pipeline and its stages.
type Option func(*settings) error

type settings struct {
	logger    *slog.Logger
	poolSize  int
	account   int
	filter    string
	policy    retry.Policy
	engine    *rules.Engine
	extractor ai.AttributeExtractor
}

func newSettings(opts []Option) (*settings, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	s := &settings{
		logger:   slog.Default(),
		poolSize: poolSize,
		policy:   retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.engine == nil {
		engine, err := rules.NewEngine(nil)
		if err != nil {
			return nil, err
		}
		s.engine = engine
	}
	return s, nil
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the number of concurrent detail fetches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *settings) error {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
		return nil
	}
}

// WithAccount sets the account index used in message links.
func WithAccount(account int) Option {
	return func(s *settings) error {
		s.account = account
		return nil
	}
}

// WithFilter sets the source filter used by Pipeline runs.
func WithFilter(filter string) Option {
	return func(s *settings) error {
		s.filter = filter
		return nil
	}
}

// WithRetryPolicy sets the policy for classifier and embedder batch calls.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(s *settings) error {
		if policy.MaxAttempts < 1 {
			return retry.ErrInvalidMaxAttempts
		}
		s.policy = policy
		return nil
	}
}

// WithRules sets the decision engine used by classification.
// Default is an engine built from rules.DefaultConfig().
func WithRules(engine *rules.Engine) Option {
	return func(s *settings) error {
		s.engine = engine
		return nil
	}
}

// WithExtractor enables attribute extraction for newly indexed documents.
func WithExtractor(extractor ai.AttributeExtractor) Option {
	return func(s *settings) error {
		s.extractor = extractor
		return nil
	}
}
