package sync

import "github.com/spf13/cobra"

// Flags holds the sync command flags.
type Flags struct {
	// Force overwrites divergent remote content instead of reporting it.
	Force bool

	// DryRun suppresses all writes and reports what would change.
	DryRun bool

	// Branches overrides the configured branch list.
	Branches []string

	// Org overrides the configured organization.
	Org string

	// Registry overrides the configured registry path.
	Registry string
}

// addSyncFlags registers the sync command flags and returns the
// struct they are bound to.
func addSyncFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}

	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite CODEOWNERS even if it already exists with different content")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report pending changes without writing anything")
	cmd.Flags().StringArrayVar(&flags.Branches, "branch", nil, "branch to reconcile (repeatable, overrides configuration)")
	cmd.Flags().StringVar(&flags.Org, "org", "", "organization to reconcile (overrides configuration)")
	cmd.Flags().StringVar(&flags.Registry, "registry", "", "registry file to load (overrides configuration)")

	return flags
}
