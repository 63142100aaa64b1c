package sync

import (
	"context"
	"fmt"

	"github.com/xcp-ng/ownersync/cmd/application"
	"github.com/xcp-ng/ownersync/pkg/logging"
	"github.com/xcp-ng/ownersync/pkg/reconciler"
	"github.com/xcp-ng/ownersync/pkg/registry"
)

// ExecuteSync orchestrates the complete reconciliation pass.
func ExecuteSync(ctx context.Context, app application.Application, flags *Flags) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)
	settings := app.Settings()
	if flags.Org != "" {
		settings.Org = flags.Org
	}
	if flags.Registry != "" {
		settings.RegistryPath = flags.Registry
	}
	if len(flags.Branches) > 0 {
		settings.Branches = flags.Branches
	}

	// Load and validate the registry before any remote call.
	reg, err := registry.Load(settings.RegistryPath)
	if err != nil {
		return err
	}

	// Resolve the committer identity for the sign-off trailer.
	id, err := app.Identity(ctx)
	if err != nil {
		return err
	}

	remote, err := app.Remote()
	if err != nil {
		return err
	}

	// Enumerate the organization once; the loop never refreshes it.
	repos, err := remote.ListRepos(ctx, settings.Org)
	if err != nil {
		return err
	}
	logger.Debug().
		Int("repositories", len(repos)).
		Int("packages", len(reg)).
		Str("org", settings.Org).
		Msg("enumerated organization")

	names := make(map[string]struct{}, len(repos))
	for name := range repos {
		names[name] = struct{}{}
	}
	in := reg.Intersect(names)

	if len(in.MissingRepos) > 0 {
		logger.Debug().Strs("packages", in.MissingRepos).Msg("registry packages without a repository")
	}
	if len(in.ExtraRepos) > 0 {
		logger.Debug().Strs("repositories", in.ExtraRepos).Msg("repositories without a registry entry")
	}

	rec := reconciler.New(remote, reconciler.Config{
		Org:           settings.Org,
		PlatformTeam:  settings.PlatformTeam,
		Branches:      settings.Branches,
		CommitMessage: id.CommitMessage(),
		Force:         flags.Force,
		DryRun:        flags.DryRun,
	})

	result, err := rec.Run(ctx, reg, in.Common)
	if err != nil {
		return err
	}

	logger.Info().
		Int("repositories", len(in.Common)).
		Dur("duration", result.Duration).
		Msg(result.Summary())

	if !result.Clean() {
		return fmt.Errorf("%d of %d branches left out of sync", result.Conflicts+result.Skipped, len(result.Branches))
	}
	return nil
}
