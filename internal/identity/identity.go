// Package identity resolves the committer identity used in the
// sign-off trailer of every commit this tool creates.
package identity

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/xcp-ng/ownersync/pkg/errors"
)

// Identity is the committer's name and email, taken from the invoking
// user's git configuration. It is only embedded in commit messages;
// authentication is the API token's job.
type Identity struct {
	Name  string
	Email string
}

// Resolve reads user.name and user.email through git config.
// Both values must be non-empty single lines.
func Resolve(ctx context.Context) (Identity, error) {
	name, err := gitConfig(ctx, "user.name")
	if err != nil {
		return Identity{}, err
	}
	email, err := gitConfig(ctx, "user.email")
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Email: email}, nil
}

// CommitMessage renders the fixed commit message used for every
// create and update, with the sign-off trailer.
func (id Identity) CommitMessage() string {
	return fmt.Sprintf("Set team owner\n\nSigned-off-by: %s <%s>\n", id.Name, id.Email)
}

// gitConfig runs `git config <key>` and validates the output.
func gitConfig(ctx context.Context, key string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "config", key).Output()
	if err != nil {
		output := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			output = string(exitErr.Stderr)
		}
		return "", &errors.ProcessError{
			Operation: "resolve identity",
			Command:   "git config " + key,
			Output:    output,
			Err:       err,
		}
	}

	value := strings.TrimSpace(string(out))
	if value == "" || strings.ContainsAny(value, "\r\n") {
		return "", &errors.ValidationError{
			Field:   key,
			Value:   value,
			Message: "must be a non-empty single line",
		}
	}
	return value, nil
}
