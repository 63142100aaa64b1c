// Package application provides the application interface for ownersync
// commands.
//
// The Application interface defines the contract between the
// application layer and command implementations, enabling dependency
// injection and testability. Commands accept this interface rather
// than the concrete App type.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xcp-ng/ownersync/internal/github"
	"github.com/xcp-ng/ownersync/internal/identity"
	"github.com/xcp-ng/ownersync/pkg/reconciler"
)

// Remote is the full remote surface commands use: the per-branch file
// operations the reconciler needs plus organization enumeration.
type Remote interface {
	reconciler.Remote

	// ListRepos returns every repository of the organization, keyed
	// by repository name.
	ListRepos(ctx context.Context, org string) (map[string]github.Repo, error)
}

// Settings carries the reconciliation-relevant configuration resolved
// at startup.
type Settings struct {
	// Org is the organization whose repositories are reconciled and
	// the namespace of every team handle.
	Org string

	// PlatformTeam is the fallback owner added to every repository.
	PlatformTeam string

	// RegistryPath is the location of the packages.json registry.
	RegistryPath string

	// Branches are the branches reconciled per repository.
	Branches []string
}

// Application provides the application interface that commands need.
type Application interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Settings returns the resolved reconciliation settings.
	Settings() Settings

	// Remote returns the authenticated repository-hosting client.
	// Fails when no usable credential is configured.
	Remote() (Remote, error)

	// Identity resolves the committer identity used in commit messages.
	Identity(ctx context.Context) (identity.Identity, error)

	// Version returns the application version string.
	Version() string
}
