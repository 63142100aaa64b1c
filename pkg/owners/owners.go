// Package owners derives the expected CODEOWNERS content for a
// repository from its maintainer record. Everything here is a pure
// function of its inputs.
package owners

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Path is the ownership file reconciled in every repository.
const Path = ".github/CODEOWNERS"

// nonWord matches every maximal run of characters that cannot appear
// in a team slug.
var nonWord = regexp.MustCompile(`\W+`)

// TeamHandle converts a maintainer display name into the team handle
// referenced from CODEOWNERS: lower-cased, every non-word run
// collapsed to a single hyphen, prefixed with the org namespace.
// Edge hyphens are trimmed since a team slug cannot start or end
// with one.
func TeamHandle(org, maintainer string) string {
	slug := nonWord.ReplaceAllString(strings.ToLower(maintainer), "-")
	return "@" + org + "/" + strings.Trim(slug, "-")
}

// ExpectedContent renders the single-line CODEOWNERS body for a
// maintainer. The platform team co-owns every repository; it is
// listed once even when it is itself the maintainer.
func ExpectedContent(org, maintainer, platformTeam string) string {
	teams := []string{maintainer}
	if maintainer != platformTeam {
		teams = append(teams, platformTeam)
	}

	handles := make([]string, len(teams))
	for i, team := range teams {
		handles[i] = TeamHandle(org, team)
	}
	return "* " + strings.Join(handles, " ") + "\n"
}

// Diff renders a unified diff between the current remote content and
// the expected content. A nil current side means the file is absent
// and renders as an empty sequence of lines.
func Diff(current *string, expected string) string {
	var a []string
	if current != nil {
		a = difflib.SplitLines(*current)
	}

	diff := difflib.UnifiedDiff{
		A:        a,
		B:        difflib.SplitLines(expected),
		FromFile: "current/" + Path,
		ToFile:   "expected/" + Path,
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	return text
}
