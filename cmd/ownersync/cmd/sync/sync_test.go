package sync_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/xcp-ng/ownersync/cmd/application"
	synccmd "github.com/xcp-ng/ownersync/cmd/ownersync/cmd/sync"
	"github.com/xcp-ng/ownersync/internal/github"
	"github.com/xcp-ng/ownersync/internal/identity"
	"github.com/xcp-ng/ownersync/pkg/errors"
)

// fakeRemote backs the whole command with in-memory repositories.
type fakeRemote struct {
	repos map[string]github.Repo
	files map[string]*github.FileState

	creates int
	updates int
}

func fileKey(repo, branch, path string) string {
	return repo + "/" + branch + "/" + path
}

func (f *fakeRemote) ListRepos(_ context.Context, _ string) (map[string]github.Repo, error) {
	return f.repos, nil
}

func (f *fakeRemote) Contents(_ context.Context, _, repo, path, ref string) (*github.FileState, error) {
	state, ok := f.files[fileKey(repo, ref, path)]
	if !ok {
		return nil, nil
	}
	copied := *state
	return &copied, nil
}

func (f *fakeRemote) CreateFile(_ context.Context, _, repo, path, branch, _, content string) error {
	f.creates++
	f.files[fileKey(repo, branch, path)] = &github.FileState{Content: content, SHA: "new"}
	return nil
}

func (f *fakeRemote) UpdateFile(_ context.Context, _, repo, path, branch, _, content, sha string) error {
	state, ok := f.files[fileKey(repo, branch, path)]
	if !ok || state.SHA != sha {
		return &errors.APIError{StatusCode: 409, Endpoint: "contents", Message: "sha mismatch"}
	}
	f.updates++
	f.files[fileKey(repo, branch, path)] = &github.FileState{Content: content, SHA: sha + "'"}
	return nil
}

// mockApp satisfies application.Application for command tests.
type mockApp struct {
	settings application.Settings
	remote   application.Remote
}

func (m *mockApp) Logger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func (m *mockApp) Settings() application.Settings { return m.settings }

func (m *mockApp) Remote() (application.Remote, error) { return m.remote, nil }

func (m *mockApp) Identity(context.Context) (identity.Identity, error) {
	return identity.Identity{Name: "Test User", Email: "test@example.com"}, nil
}

func (m *mockApp) Version() string { return "test" }

func newMockApp(t *testing.T, remote application.Remote, registryJSON string) *mockApp {
	t.Helper()

	registryPath := filepath.Join(t.TempDir(), "packages.json")
	if err := os.WriteFile(registryPath, []byte(registryJSON), 0o644); err != nil {
		t.Fatalf("failed to write registry fixture: %v", err)
	}

	return &mockApp{
		settings: application.Settings{
			Org:          "xcp-ng-rpms",
			PlatformTeam: "OS Platform & Release",
			RegistryPath: registryPath,
			Branches:     []string{"master"},
		},
		remote: remote,
	}
}

func TestSyncCommandCreatesMissingFiles(t *testing.T) {
	remote := &fakeRemote{
		repos: map[string]github.Repo{
			"xapi":         {Name: "xapi"},
			"not-packaged": {Name: "not-packaged"},
		},
		files: map[string]*github.FileState{},
	}
	app := newMockApp(t, remote, `{
		"xapi": {"maintainer": "XAPI Team"},
		"no-repo": {"maintainer": "Nobody"}
	}`)

	cmd := synccmd.NewCommand(app)
	cmd.SetArgs([]string{})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if remote.creates != 1 {
		t.Errorf("creates = %d, want 1 (only the intersected repository)", remote.creates)
	}
	state := remote.files[fileKey("xapi", "master", ".github/CODEOWNERS")]
	if state == nil {
		t.Fatal("CODEOWNERS was not created in xapi")
	}
	want := "* @xcp-ng-rpms/xapi-team @xcp-ng-rpms/os-platform-release\n"
	if state.Content != want {
		t.Errorf("content = %q, want %q", state.Content, want)
	}
}

func TestSyncCommandConflictFailsRun(t *testing.T) {
	remote := &fakeRemote{
		repos: map[string]github.Repo{"xapi": {Name: "xapi"}},
		files: map[string]*github.FileState{
			fileKey("xapi", "master", ".github/CODEOWNERS"): {Content: "* @xcp-ng-rpms/old\n", SHA: "sha-1"},
		},
	}
	app := newMockApp(t, remote, `{"xapi": {"maintainer": "XAPI Team"}}`)

	cmd := synccmd.NewCommand(app)
	cmd.SetArgs([]string{})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("sync should fail when divergent content is left in place")
	}
	if remote.updates != 0 {
		t.Errorf("updates = %d, want 0 without --force", remote.updates)
	}
}

func TestSyncCommandForceOverwrites(t *testing.T) {
	remote := &fakeRemote{
		repos: map[string]github.Repo{"xapi": {Name: "xapi"}},
		files: map[string]*github.FileState{
			fileKey("xapi", "master", ".github/CODEOWNERS"): {Content: "* @xcp-ng-rpms/old\n", SHA: "sha-1"},
		},
	}
	app := newMockApp(t, remote, `{"xapi": {"maintainer": "XAPI Team"}}`)

	cmd := synccmd.NewCommand(app)
	cmd.SetArgs([]string{"--force"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("forced sync failed: %v", err)
	}
	if remote.updates != 1 {
		t.Errorf("updates = %d, want 1", remote.updates)
	}
}

func TestSyncCommandOrgOverride(t *testing.T) {
	remote := &fakeRemote{
		repos: map[string]github.Repo{"xapi": {Name: "xapi"}},
		files: map[string]*github.FileState{},
	}
	app := newMockApp(t, remote, `{"xapi": {"maintainer": "XAPI Team"}}`)

	cmd := synccmd.NewCommand(app)
	cmd.SetArgs([]string{"--org", "other-org"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	state := remote.files[fileKey("xapi", "master", ".github/CODEOWNERS")]
	if state == nil {
		t.Fatal("CODEOWNERS was not created")
	}
	want := "* @other-org/xapi-team @other-org/os-platform-release\n"
	if state.Content != want {
		t.Errorf("content = %q, want %q", state.Content, want)
	}
}

func TestSyncCommandDryRunWritesNothing(t *testing.T) {
	remote := &fakeRemote{
		repos: map[string]github.Repo{"xapi": {Name: "xapi"}},
		files: map[string]*github.FileState{},
	}
	app := newMockApp(t, remote, `{"xapi": {"maintainer": "XAPI Team"}}`)

	cmd := synccmd.NewCommand(app)
	cmd.SetArgs([]string{"--dry-run"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("dry run with pending writes should exit unclean")
	}
	if remote.creates != 0 || remote.updates != 0 {
		t.Error("dry run must not write")
	}
}
