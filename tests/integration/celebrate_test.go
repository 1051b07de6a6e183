// Integration tests for the celebrate command against a local fake of
// the GitHub API. The fixture config points api_base_url at the fake
// via the environment, the way CI points it at the real host.
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves the three endpoints the celebration job touches.
// All state is behind the mutex: the binary under test talks to the
// handler from server goroutines.
type fakeGitHub struct {
	srv *httptest.Server

	mu          sync.Mutex
	merged      bool
	author      string
	mergedCount int
	searchQuery string
	comments    []string
	failPulls   bool
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{merged: true, author: "octocat", mergedCount: 3}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGitHub) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/repos/classiq/classiq-library/pulls/7":
		if f.failPulls {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"number": 7, "title": "Add widget", "merged": %t,
			"html_url": "https://github.com/classiq/classiq-library/pull/7",
			"user": {"login": %q}}`, f.merged, f.author)

	case r.Method == http.MethodGet && r.URL.Path == "/search/issues":
		f.searchQuery = r.URL.Query().Get("q")
		fmt.Fprintf(w, `{"total_count": %d}`, f.mergedCount)

	case r.Method == http.MethodPost && r.URL.Path == "/repos/classiq/classiq-library/issues/7/comments":
		var payload struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.comments = append(f.comments, payload.Body)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGitHub) set(mutate func(*fakeGitHub)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mutate(f)
}

func (f *fakeGitHub) Comments() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.comments...)
}

func (f *fakeGitHub) SearchQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchQuery
}

// env returns the variables pointing the binary at the fake.
func (f *fakeGitHub) env(extra ...string) []string {
	return append([]string{
		"LIBRARIAN_GITHUB_API_BASE_URL=" + f.srv.URL,
		"LIBRARIAN_GITHUB_OWNER=classiq",
		"LIBRARIAN_GITHUB_REPO=classiq-library",
	}, extra...)
}

func TestCelebrate_DryRun(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)

	res := lib.RunWith(gh.env(), "--root", lib.Root, "celebrate", "--pr", "7", "--dry-run")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "Thank you @octocat! 🎉 This is your 3rd merged pull request in this repository.\n", res.Stdout)
	assert.Empty(t, gh.Comments(), "dry run must not post")
	assert.Equal(t, "repo:classiq/classiq-library is:pr is:merged author:octocat", gh.SearchQuery())
}

func TestCelebrate_Posts(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)

	res := lib.RunWith(gh.env("GITHUB_TOKEN=test-token"),
		"--root", lib.Root, "celebrate", "--pr", "7")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "Commented on #7: 3 merged pull requests for @octocat.\n", res.Stdout)

	comments := gh.Comments()
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0], "Thank you @octocat!")
	assert.Contains(t, comments[0], "3rd merged pull request")
}

func TestCelebrate_MilestoneFlourish(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)
	gh.set(func(f *fakeGitHub) { f.mergedCount = 1 })

	res := lib.RunWith(gh.env(), "--root", lib.Root, "celebrate", "--pr", "7", "--dry-run")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Contains(t, res.Stdout, "1st merged pull request")
	assert.Contains(t, res.Stdout, "Welcome to the library!")
}

func TestCelebrate_NotMerged(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)
	gh.set(func(f *fakeGitHub) { f.merged = false })

	res := lib.RunWith(gh.env("GITHUB_TOKEN=test-token"),
		"--root", lib.Root, "celebrate", "--pr", "7")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "Pull request #7 is not merged; nothing to celebrate.\n", res.Stdout)
	assert.Empty(t, gh.Comments())
}

func TestCelebrate_MissingToken(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)

	res := lib.RunWith(gh.env(), "--root", lib.Root, "celebrate", "--pr", "7")
	assert.Equal(t, 1, res.ExitCode, "a missing token is the caller's mistake, not an API failure")
	assert.Contains(t, res.Stderr, "no GitHub token available")
	assert.Empty(t, gh.Comments())
}

func TestCelebrate_APIFailure(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)
	gh.set(func(f *fakeGitHub) { f.failPulls = true })

	res := lib.RunWith(gh.env(), "--root", lib.Root, "celebrate", "--pr", "7", "--dry-run")
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, res.Stderr, "fetching pull request 7")
}

func TestCelebrate_MissingRepo(t *testing.T) {
	lib := NewLibrary(t)

	res := lib.Run("celebrate", "--pr", "7")
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "github owner and repo must be set")
}

func TestCelebrate_FlagsOverrideConfig(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)

	// The environment names another repo; the flags win.
	res := lib.RunWith(
		[]string{
			"LIBRARIAN_GITHUB_API_BASE_URL=" + gh.srv.URL,
			"LIBRARIAN_GITHUB_OWNER=someone",
			"LIBRARIAN_GITHUB_REPO=elsewhere",
		},
		"--root", lib.Root, "celebrate", "--pr", "7", "--dry-run",
		"--owner", "classiq", "--repo", "classiq-library",
	)
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Contains(t, res.Stdout, "Thank you @octocat!")
}

func TestCelebrate_JSON(t *testing.T) {
	lib := NewLibrary(t)
	gh := newFakeGitHub(t)

	res := lib.RunWith(gh.env(), "--root", lib.Root, "--json", "celebrate", "--pr", "7", "--dry-run")
	require.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)

	out := ParseJSON[struct {
		PR struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
			Merged bool   `json:"merged"`
		} `json:"pr"`
		MergedCount int    `json:"merged_count"`
		Message     string `json:"message"`
		Posted      bool   `json:"posted"`
	}](t, res.Stdout)
	assert.Equal(t, 7, out.PR.Number)
	assert.True(t, out.PR.Merged)
	assert.Equal(t, 3, out.MergedCount)
	assert.Contains(t, out.Message, "3rd merged pull request")
	assert.False(t, out.Posted)
}
