// Package github implements the subset of the GitHub REST API the
// reconciler needs: organization repository listing and per-branch
// contents reads and writes.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/xcp-ng/ownersync/internal/transport"
	"github.com/xcp-ng/ownersync/pkg/errors"
)

// DefaultAPIURL is the public GitHub API endpoint.
const DefaultAPIURL = "https://api.github.com"

// reposPerPage is the page size used when listing organization
// repositories. 100 is the API maximum.
const reposPerPage = 100

// Repo is a repository handle returned by ListRepos.
type Repo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Archived      bool   `json:"archived"`
}

// FileState is the observed state of a file on one branch: its
// decoded content and the blob SHA required to update it.
type FileState struct {
	Content string
	SHA     string
}

// Client talks to the GitHub REST API.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used to point the client at
// a test server or a GitHub Enterprise instance.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// NewClient creates a client authenticated with the given token.
// An empty token is rejected up front: every operation this client
// performs requires authentication.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, &errors.AuthenticationError{
			Method:  "token",
			Message: "GITHUB_TOKEN is not set",
			Err:     errors.ErrTokenRequired,
		}
	}

	c := &Client{
		transport: transport.New(&transport.TokenAuth{Token: token}),
		baseURL:   DefaultAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListRepos returns every repository of the organization, keyed by
// repository name. The listing is paginated; all pages are fetched.
func (c *Client) ListRepos(ctx context.Context, org string) (map[string]Repo, error) {
	repos := make(map[string]Repo)

	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/orgs/%s/repos?per_page=%d&page=%d",
			c.baseURL, url.PathEscape(org), reposPerPage, page)

		resp, err := c.transport.Get(ctx, u)
		if err != nil {
			return nil, err
		}

		var batch []Repo
		if err := transport.DecodeResponse(resp, &batch); err != nil {
			return nil, err
		}

		for _, repo := range batch {
			repos[repo.Name] = repo
		}

		if len(batch) < reposPerPage {
			return repos, nil
		}
	}
}

// Contents fetches a file at a ref. A nil state with a nil error
// means the file does not exist on that branch; any other failure is
// returned as-is.
func (c *Client) Contents(ctx context.Context, org, repo, path, ref string) (*FileState, error) {
	u := fmt.Sprintf("%s?ref=%s", c.contentsURL(org, repo, path), url.QueryEscape(ref))

	resp, err := c.transport.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var body struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		SHA      string `json:"sha"`
	}
	if err := transport.DecodeResponse(resp, &body); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	content, err := decodeContent(body.Content, body.Encoding)
	if err != nil {
		return nil, err
	}

	return &FileState{Content: content, SHA: body.SHA}, nil
}

// CreateFile creates a file on a branch with a single commit.
func (c *Client) CreateFile(ctx context.Context, org, repo, path, branch, message, content string) error {
	return c.putContents(ctx, org, repo, path, contentsRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  branch,
	})
}

// UpdateFile replaces a file on a branch with a single commit. The
// sha must be the blob SHA previously fetched by Contents; a stale
// sha fails the call and the error propagates.
func (c *Client) UpdateFile(ctx context.Context, org, repo, path, branch, message, content, sha string) error {
	return c.putContents(ctx, org, repo, path, contentsRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  branch,
		SHA:     sha,
	})
}

// contentsRequest is the PUT body of the contents endpoint.
type contentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

func (c *Client) putContents(ctx context.Context, org, repo, path string, body contentsRequest) error {
	resp, err := c.transport.Put(ctx, c.contentsURL(org, repo, path), body)
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, nil)
}

func (c *Client) contentsURL(org, repo, path string) string {
	escaped := make([]string, 0, 3)
	for _, part := range strings.Split(path, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(org), url.PathEscape(repo), strings.Join(escaped, "/"))
}

// decodeContent decodes the contents payload. The API returns base64
// with embedded newlines.
func decodeContent(content, encoding string) (string, error) {
	switch encoding {
	case "", "none":
		return content, nil
	case "base64":
		raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return "", errors.WrapParse("base64", "contents response", err)
		}
		return string(raw), nil
	default:
		return "", &errors.ValidationError{
			Field:   "encoding",
			Value:   encoding,
			Message: "unsupported contents encoding",
		}
	}
}
