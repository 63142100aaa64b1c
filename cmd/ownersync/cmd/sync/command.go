// Package sync implements the sync command: one reconciliation pass
// over every repository that has a matching registry entry.
package sync

import (
	"github.com/spf13/cobra"

	"github.com/xcp-ng/ownersync/cmd/application"
)

// NewCommand creates the sync command using the app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile CODEOWNERS in every matching repository",
		Args:  cobra.NoArgs,
		Long: `Sync loads the package registry, lists the organization's
repositories, and for every package with a matching repository makes
sure each tracked branch carries the expected CODEOWNERS file.

A missing file is created. A file that already matches is left alone.
A file with divergent content is reported as a unified diff and left
in place unless --force is given, in which case it is overwritten.

The exit code is 0 when every branch ended clean and 1 when any
divergence was left unresolved.`,
		Example: `  ownersync sync                  # report divergence, create missing files
  ownersync sync --force          # also overwrite divergent files
  ownersync sync --dry-run        # write nothing, show all pending changes
  ownersync sync --branch master --branch next`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ExecuteSync(cmd.Context(), app, flags)
		},
	}

	flags = addSyncFlags(cmd)

	return cmd
}
