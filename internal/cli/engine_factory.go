package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/adapters/file"
	"github.com/aretw0/switchboard/pkg/adapters/keyword"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	openaiAdapter "github.com/aretw0/switchboard/pkg/adapters/openai"
	redisAdapter "github.com/aretw0/switchboard/pkg/adapters/redis"
	"github.com/aretw0/switchboard/pkg/config"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/observability"
	"github.com/aretw0/switchboard/pkg/persistence/middleware"
	"github.com/aretw0/switchboard/pkg/ports"
)

// Stack is an engine with the collaborators the commands need around it.
type Stack struct {
	Engine  *switchboard.Engine
	Metrics *observability.Metrics
	Logger  *slog.Logger

	closers []io.Closer
}

// Close releases the repository backend.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.Format), nil
}

// Build wires an engine according to cfg.
func Build(cfg config.Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	stack := &Stack{Logger: logger}

	repo, locker, err := buildRepository(cfg.Store, stack)
	if err != nil {
		return nil, err
	}

	mws, err := buildMiddleware(cfg)
	if err != nil {
		stack.Close()
		return nil, err
	}

	classifier, err := buildClassifier(cfg.Classifier, logger)
	if err != nil {
		stack.Close()
		return nil, err
	}

	stack.Metrics = observability.NewMetrics(nil)

	opts := []switchboard.Option{
		switchboard.WithRepository(middleware.Chain(repo, mws...)),
		switchboard.WithClassifier(classifier),
		switchboard.WithClassifierTimeout(cfg.Classifier.Timeout),
		switchboard.WithLockTTL(cfg.Store.LockTTL),
		switchboard.WithLogger(logger),
		switchboard.WithLifecycleHooks(domain.ChainHooks(
			stack.Metrics.Hooks(),
			observability.LogHooks(logger),
		)),
	}
	if locker != nil {
		opts = append(opts, switchboard.WithLocker(locker))
	}

	stack.Engine, err = switchboard.New(opts...)
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	logger.Debug("engine ready",
		"store", cfg.Store.Backend,
		"classifier", cfg.Classifier.Kind,
		"encrypted", cfg.Store.EncryptionKey != "",
		"redact", cfg.Redact.Enabled,
	)
	return stack, nil
}

func buildRepository(cfg config.StoreConfig, stack *Stack) (ports.ManagedRepository, ports.DistributedLocker, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return file.New(cfg.Path), nil, nil
	case config.BackendRedis:
		repo := redisAdapter.New(cfg.Addr, cfg.Password, cfg.DB,
			redisAdapter.WithPrefix(cfg.Prefix),
			redisAdapter.WithTTL(cfg.TTL),
		)
		stack.closers = append(stack.closers, repo)
		return repo, redisAdapter.NewLocker(repo.Client(), cfg.Prefix), nil
	case config.BackendMemory, "":
		return memory.NewRepository(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// buildMiddleware masks before encrypting so stored ciphertext never holds raw PII.
func buildMiddleware(cfg config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.Redact.Enabled {
		patterns := cfg.Redact.Patterns
		if len(patterns) == 0 {
			patterns = middleware.DefaultPIIPatterns
		}
		mws = append(mws, middleware.NewPIIMiddleware(patterns))
	}

	active, fallback, err := cfg.Store.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return mws, nil
}

func buildClassifier(cfg config.ClassifierConfig, logger *slog.Logger) (ports.IntentClassifier, error) {
	switch cfg.Kind {
	case config.ClassifierOpenAI:
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("classifier.kind is openai but %s is not set", cfg.APIKeyEnv)
		}
		opts := []openaiAdapter.Option{openaiAdapter.WithLogger(logger)}
		if cfg.Model != "" {
			opts = append(opts, openaiAdapter.WithModel(cfg.Model))
		}
		var c ports.IntentClassifier = openaiAdapter.NewFromAPIKey(apiKey, cfg.BaseURL, opts...)
		if cfg.RateLimit > 0 {
			c = openaiAdapter.NewRateLimited(c, cfg.RateLimit, cfg.Burst)
		}
		return c, nil
	case config.ClassifierKeyword, "":
		catalogue := keyword.DefaultCatalogue()
		if cfg.Catalogue != "" {
			var err error
			if catalogue, err = keyword.Load(cfg.Catalogue); err != nil {
				return nil, err
			}
		}
		return keyword.New(catalogue)
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", cfg.Kind)
	}
}
