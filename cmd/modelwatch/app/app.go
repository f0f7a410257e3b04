// Package app provides the application context and dependency management
// for the modelwatch CLI: configuration, logging, and the lazily opened
// AWS config, state store and notifier shared by commands.
package app

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/internal/awsconfig"
	"github.com/agentstation/modelwatch/internal/notifiers"
	"github.com/agentstation/modelwatch/internal/sources/bedrock"
	"github.com/agentstation/modelwatch/internal/stores"
	"github.com/agentstation/modelwatch/internal/tracing"
	"github.com/agentstation/modelwatch/pkg/catalog"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/notify"
	"github.com/agentstation/modelwatch/pkg/state"
)

// App holds the CLI's dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu       sync.Mutex
	awsCfg   *aws.Config
	store    *state.Store
	notifier notify.Notifier
	notified bool // notifier resolved, possibly to nil
	lister   catalog.Lister
	tracing  tracing.Shutdown
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// Regions returns the configured target regions.
func (a *App) Regions() []string { return a.config.Regions }

// Detector builds a detector wired to the configured catalog, state store
// and notifier.
func (a *App) Detector(ctx context.Context, opts ...modelwatch.Option) (*modelwatch.Detector, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	store, err := a.StateStore(ctx)
	if err != nil {
		return nil, err
	}
	notifier, err := a.Notifier(ctx)
	if err != nil {
		return nil, err
	}
	lister, err := a.Lister(ctx)
	if err != nil {
		return nil, err
	}

	base := []modelwatch.Option{
		modelwatch.WithRegions(a.config.Regions...),
		modelwatch.WithFetchTimeout(a.config.FetchTimeout),
	}
	if a.config.NotifyTimeout > 0 {
		base = append(base, modelwatch.WithNotifyTimeout(a.config.NotifyTimeout))
	}
	if notifier != nil {
		base = append(base, modelwatch.WithNotifier(notifier))
	}

	return modelwatch.New(lister, store, append(base, opts...)...)
}

// StateStore opens the configured state store on first use.
func (a *App) StateStore(ctx context.Context) (*state.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	if a.config.StateStore == "" {
		return nil, errors.NewConfigError("config", "STATE_STORE (or DYNAMODB_TABLE_NAME) is required", nil)
	}

	loc, err := stores.Parse(a.config.StateStore)
	if err != nil {
		return nil, err
	}

	var opts []stores.Option
	if loc.Kind == stores.KindDynamoDB {
		cfg, err := a.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stores.WithAWSConfig(cfg))
	}

	backend, err := stores.OpenLocation(ctx, loc, opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("store", loc.String()).Msg("Opened state store")

	a.store = state.NewStore(backend)
	return a.store, nil
}

// Notifier resolves the configured notifier target on first use. It
// returns nil when no target is configured.
func (a *App) Notifier(ctx context.Context) (notify.Notifier, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.notified {
		return a.notifier, nil
	}

	var opts []notifiers.Option
	if kind, err := notifiers.Detect(a.config.NotifierTarget); err != nil {
		return nil, err
	} else if kind == notifiers.KindAgentCore {
		cfg, err := a.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, notifiers.WithAWSConfig(cfg))
	}

	n, err := notifiers.Open(ctx, a.config.NotifierTarget, opts...)
	if err != nil {
		return nil, err
	}
	if n != nil {
		a.logger.Debug().Str("notifier", notifiers.Describe(a.config.NotifierTarget)).Msg("Resolved notifier")
	}

	a.notifier = n
	a.notified = true
	return n, nil
}

// Lister returns the Bedrock catalog client.
func (a *App) Lister(ctx context.Context) (catalog.Lister, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lister != nil {
		return a.lister, nil
	}
	cfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	a.lister = bedrock.New(cfg)
	return a.lister, nil
}

// awsConfig loads the shared AWS configuration once. Callers hold a.mu.
func (a *App) awsConfig(ctx context.Context) (aws.Config, error) {
	if a.awsCfg != nil {
		return *a.awsCfg, nil
	}
	cfg, err := awsconfig.Load(ctx, a.config.AWSRegion)
	if err != nil {
		return aws.Config{}, err
	}
	a.awsCfg = &cfg
	return cfg, nil
}

// startTracing installs the tracer provider when enabled.
func (a *App) startTracing(ctx context.Context) error {
	shutdown, err := tracing.Init(ctx, a.config.Tracing)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.tracing = shutdown
	a.mu.Unlock()
	return nil
}

// Shutdown releases the state store and notifier and flushes traces.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	store, notifier, shutdownTracing := a.store, a.notifier, a.tracing
	a.store, a.notifier, a.tracing = nil, nil, nil
	a.notified = false
	a.mu.Unlock()

	var firstErr error
	if notifier != nil {
		if err := notifiers.Close(notifier); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close notifier during shutdown")
			firstErr = err
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close state store during shutdown")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			a.logger.Error().Err(err).Msg("Failed to flush traces during shutdown")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithLister replaces the Bedrock catalog client, for tests.
func WithLister(l catalog.Lister) Option {
	return func(a *App) error {
		a.lister = l
		return nil
	}
}

// WithNotifier replaces target resolution with a fixed notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) error {
		a.notifier = n
		a.notified = true
		return nil
	}
}
