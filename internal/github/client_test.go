package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcp-ng/ownersync/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-token", WithBaseURL(server.URL))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	assert.True(t, errors.IsAuthError(err), "empty token should be an auth error")
}

func TestListReposPagination(t *testing.T) {
	var authHeader string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orgs/xcp-ng-rpms/repos", r.URL.Path)
		authHeader = r.Header.Get("Authorization")

		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case "1":
			// A full page triggers a fetch of the next one
			repos := make([]Repo, reposPerPage)
			for i := range repos {
				repos[i] = Repo{Name: fmt.Sprintf("repo-%03d", i)}
			}
			require.NoError(t, json.NewEncoder(w).Encode(repos))
		case "2":
			require.NoError(t, json.NewEncoder(w).Encode([]Repo{{Name: "last-repo", DefaultBranch: "master"}}))
		default:
			t.Errorf("unexpected page %q", page)
		}
	})

	client := newTestClient(t, handler)
	repos, err := client.ListRepos(context.Background(), "xcp-ng-rpms")
	require.NoError(t, err)

	assert.Len(t, repos, reposPerPage+1)
	assert.Equal(t, "Bearer test-token", authHeader)
	assert.Equal(t, "master", repos["last-repo"].DefaultBranch)
}

func TestListReposAuthRejected(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
	})

	client := newTestClient(t, handler)
	_, err := client.ListRepos(context.Background(), "xcp-ng-rpms")
	require.Error(t, err)
	assert.True(t, errors.IsAuthError(err), "401 should map to an auth error, got %v", err)
}

func TestContents(t *testing.T) {
	content := "* @xcp-ng-rpms/xapi-team\n"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/xcp-ng-rpms/xapi/contents/.github/CODEOWNERS", r.URL.Path)
		require.Equal(t, "master", r.URL.Query().Get("ref"))

		w.Header().Set("Content-Type", "application/json")
		// The API wraps base64 at 60 columns; embedded newlines must
		// not break decoding.
		encoded := base64.StdEncoding.EncodeToString([]byte(content))
		body := map[string]string{
			"content":  encoded[:10] + "\n" + encoded[10:],
			"encoding": "base64",
			"sha":      "abc123",
		}
		require.NoError(t, json.NewEncoder(w).Encode(body))
	})

	client := newTestClient(t, handler)
	state, err := client.Contents(context.Background(), "xcp-ng-rpms", "xapi", ".github/CODEOWNERS", "master")
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.Equal(t, content, state.Content)
	assert.Equal(t, "abc123", state.SHA)
}

func TestContentsAbsent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	})

	client := newTestClient(t, handler)
	state, err := client.Contents(context.Background(), "xcp-ng-rpms", "xapi", ".github/CODEOWNERS", "master")

	// Absence is not an error, it is a nil state
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestCreateFile(t *testing.T) {
	var got contentsRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/repos/xcp-ng-rpms/xapi/contents/.github/CODEOWNERS", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	client := newTestClient(t, handler)
	err := client.CreateFile(context.Background(), "xcp-ng-rpms", "xapi", ".github/CODEOWNERS",
		"master", "Set team owner", "* @xcp-ng-rpms/xapi-team\n")
	require.NoError(t, err)

	assert.Equal(t, "Set team owner", got.Message)
	assert.Equal(t, "master", got.Branch)
	assert.Empty(t, got.SHA, "create must not carry a sha")

	decoded, err := base64.StdEncoding.DecodeString(got.Content)
	require.NoError(t, err)
	assert.Equal(t, "* @xcp-ng-rpms/xapi-team\n", string(decoded))
}

func TestUpdateFile(t *testing.T) {
	var got contentsRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	})

	client := newTestClient(t, handler)
	err := client.UpdateFile(context.Background(), "xcp-ng-rpms", "xapi", ".github/CODEOWNERS",
		"master", "Set team owner", "* @xcp-ng-rpms/xapi-team\n", "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", got.SHA, "update must carry the fetched sha")
}

func TestUpdateFileStaleSHA(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "sha does not match"}`))
	})

	client := newTestClient(t, handler)
	err := client.UpdateFile(context.Background(), "xcp-ng-rpms", "xapi", ".github/CODEOWNERS",
		"master", "Set team owner", "content", "stale")

	// A stale revision token must fail the call, not be swallowed
	require.Error(t, err)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestDecodeContentUnsupportedEncoding(t *testing.T) {
	_, err := decodeContent("data", "rot13")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
