// Package reconciler ensures each repository's ownership file matches
// the content derived from its registry record. Per branch it decides
// one of: create, update, leave alone, or report the divergence.
package reconciler

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xcp-ng/ownersync/internal/github"
	"github.com/xcp-ng/ownersync/pkg/logging"
	"github.com/xcp-ng/ownersync/pkg/owners"
	"github.com/xcp-ng/ownersync/pkg/registry"
)

// Remote is the subset of repository operations the reconciler uses.
// *github.Client satisfies it; tests provide a fake.
type Remote interface {
	// Contents fetches a file at a ref. A nil state with a nil error
	// means the file is absent on that branch.
	Contents(ctx context.Context, org, repo, path, ref string) (*github.FileState, error)

	// CreateFile creates a file on a branch with a single commit.
	CreateFile(ctx context.Context, org, repo, path, branch, message, content string) error

	// UpdateFile replaces a file on a branch, guarded by the blob SHA
	// previously returned from Contents.
	UpdateFile(ctx context.Context, org, repo, path, branch, message, content, sha string) error
}

// Config carries the settings of one reconciliation run.
type Config struct {
	// Org is the organization owning the repositories and the
	// namespace of every team handle.
	Org string

	// PlatformTeam is the fallback owner added to every repository.
	PlatformTeam string

	// Branches are reconciled independently per repository.
	Branches []string

	// CommitMessage is used for every create and update.
	CommitMessage string

	// Force overwrites divergent remote content instead of reporting it.
	Force bool

	// DryRun suppresses all writes and reports what would change.
	DryRun bool
}

// Reconciler reconciles ownership files against registry records.
type Reconciler struct {
	remote Remote
	cfg    Config

	// out receives diff bodies; progress goes to the logger.
	out io.Writer
}

// Option is a functional option for configuring the Reconciler.
type Option func(*Reconciler)

// WithOutput redirects diff output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Reconciler) {
		r.out = w
	}
}

// New creates a Reconciler over the given remote.
func New(remote Remote, cfg Config, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote: remote,
		cfg:    cfg,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles every named repository against its registry record
// and returns the aggregated result. Names are processed in the order
// given; callers pass them sorted for deterministic output. A remote
// failure aborts the run with the partial result.
func (r *Reconciler) Run(ctx context.Context, reg registry.Registry, names []string) (*Result, error) {
	result := NewResult()
	defer result.Finalize()

	for _, name := range names {
		if err := r.Repo(ctx, name, reg[name], result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// Repo reconciles all configured branches of one repository, recording
// each branch outcome on result. Only a remote-layer failure returns
// an error; divergence is recorded, not raised.
func (r *Reconciler) Repo(ctx context.Context, repo string, record registry.Record, result *Result) error {
	expected := owners.ExpectedContent(r.cfg.Org, record.Maintainer, r.cfg.PlatformTeam)

	for _, branch := range r.cfg.Branches {
		outcome, err := r.branch(ctx, repo, branch, expected)
		if err != nil {
			return err
		}
		result.Record(repo, branch, outcome)
	}

	return nil
}

// branch applies the per-branch decision table.
func (r *Reconciler) branch(ctx context.Context, repo, branch, expected string) (Outcome, error) {
	log := logging.Ctx(ctx).With().
		Str("repository", repo).
		Str("branch", branch).
		Logger()

	state, err := r.remote.Contents(ctx, r.cfg.Org, repo, owners.Path, branch)
	if err != nil {
		return "", err
	}

	switch {
	case state == nil:
		if r.cfg.DryRun {
			log.Info().Msg("would create CODEOWNERS")
			fmt.Fprint(r.out, owners.Diff(nil, expected))
			return OutcomeSkipped, nil
		}
		log.Info().Msg("creating CODEOWNERS")
		if err := r.remote.CreateFile(ctx, r.cfg.Org, repo, owners.Path, branch, r.cfg.CommitMessage, expected); err != nil {
			return "", err
		}
		return OutcomeCreated, nil

	case state.Content == expected:
		log.Debug().Msg("CODEOWNERS already in sync")
		return OutcomeUnchanged, nil

	case r.cfg.Force:
		if r.cfg.DryRun {
			log.Info().Msg("would update CODEOWNERS")
			fmt.Fprint(r.out, owners.Diff(&state.Content, expected))
			return OutcomeSkipped, nil
		}
		log.Info().Msg("updating CODEOWNERS")
		if err := r.remote.UpdateFile(ctx, r.cfg.Org, repo, owners.Path, branch, r.cfg.CommitMessage, expected, state.SHA); err != nil {
			return "", err
		}
		return OutcomeUpdated, nil

	default:
		log.Error().Msg("CODEOWNERS is not in sync")
		fmt.Fprint(r.out, owners.Diff(&state.Content, expected))
		return OutcomeConflict, nil
	}
}
