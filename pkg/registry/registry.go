// Package registry loads the package-to-maintainer registry used to
// derive the expected owners of each repository.
package registry

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/xcp-ng/ownersync/pkg/errors"
)

// DefaultPath is the registry file read from the working directory.
const DefaultPath = "packages.json"

// Record describes a single package entry in the registry.
// The registry file carries more fields per package, but the
// maintainer is the only one this tool consumes.
type Record struct {
	Maintainer string `json:"maintainer"`
}

// Registry maps package name to its maintainer record.
// Loaded once at process start and never refreshed.
type Registry map[string]Record

// Load reads and validates the registry file at path.
// A missing or empty maintainer field fails the whole load: every
// record must be usable before the first remote call is made.
func Load(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("registry", "unable to read "+path, err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}

	for name, record := range reg {
		if strings.TrimSpace(record.Maintainer) == "" {
			return nil, &errors.ValidationError{
				Field:   name + ".maintainer",
				Value:   record.Maintainer,
				Message: "missing or empty maintainer",
			}
		}
	}

	return reg, nil
}

// Names returns the sorted package names in the registry.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Intersection describes how the registry lines up with the remote
// repository listing.
type Intersection struct {
	// Common holds the names present on both sides, sorted.
	Common []string

	// MissingRepos holds registry packages with no matching repository.
	MissingRepos []string

	// ExtraRepos holds repositories with no matching registry entry.
	ExtraRepos []string
}

// Intersect computes the overlap between the registry and a set of
// remote repository names. The difference sets are diagnostics only;
// reconciliation operates on Common.
func (r Registry) Intersect(repos map[string]struct{}) Intersection {
	var in Intersection
	for name := range r {
		if _, ok := repos[name]; ok {
			in.Common = append(in.Common, name)
		} else {
			in.MissingRepos = append(in.MissingRepos, name)
		}
	}
	for name := range repos {
		if _, ok := r[name]; !ok {
			in.ExtraRepos = append(in.ExtraRepos, name)
		}
	}
	sort.Strings(in.Common)
	sort.Strings(in.MissingRepos)
	sort.Strings(in.ExtraRepos)
	return in
}
