// Package app provides the application context and dependency
// management for the ownersync CLI. It centralizes configuration,
// logging, and the remote client behind one struct handed to commands.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xcp-ng/ownersync/cmd/application"
	"github.com/xcp-ng/ownersync/internal/github"
	"github.com/xcp-ng/ownersync/internal/identity"
)

// App represents the ownersync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Remote client (lazy-initialized, singleton)
	mu     sync.Mutex
	remote *github.Client
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
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
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Settings returns the resolved reconciliation settings.
func (a *App) Settings() application.Settings {
	return application.Settings{
		Org:          a.config.Org,
		PlatformTeam: a.config.PlatformTeam,
		RegistryPath: a.config.Registry,
		Branches:     a.config.Branches,
	}
}

// Remote returns the authenticated GitHub client, creating it lazily.
// Fails when GITHUB_TOKEN is not configured.
func (a *App) Remote() (application.Remote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.remote != nil {
		return a.remote, nil
	}

	var opts []github.Option
	if a.config.APIURL != "" {
		opts = append(opts, github.WithBaseURL(a.config.APIURL))
	}

	client, err := github.NewClient(a.config.Token, opts...)
	if err != nil {
		return nil, err
	}

	a.remote = client
	return client, nil
}

// Identity resolves the committer identity from git configuration.
func (a *App) Identity(ctx context.Context) (identity.Identity, error) {
	return identity.Resolve(ctx)
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
