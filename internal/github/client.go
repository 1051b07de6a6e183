// Package github is a minimal client for the three GitHub endpoints the
// celebration job touches: pull request lookup, merged-PR search
// counts, and issue comments. Calls are rate-limited and carry a
// request timeout; failures surface immediately, the job never retries.
// See docs/ARCHITECTURE.md § GitHub Automation.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/srulre/classiq-library/pkg/types"
)

// TokenEnv is the environment variable the CI job exports.
const TokenEnv = "GITHUB_TOKEN"

const requestTimeout = 15 * time.Second

// Client talks to one repository on one GitHub host.
type Client struct {
	base    string
	owner   string
	repo    string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a client for cfg's repository. An empty token is allowed;
// posting then fails with ErrNoToken.
func New(cfg types.GitHubConfig, token string) *Client {
	base := cfg.APIBaseURL
	if base == "" {
		base = types.DefaultGitHubAPIBaseURL
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 4),
	}
}

// PullRequest is the slice of the API response the job reads.
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Merged  bool   `json:"merged"`
	HTMLURL string `json:"html_url"`
	User    struct {
		Login string `json:"login"`
	} `json:"user"`
}

// GetPullRequest fetches one pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*PullRequest, error) {
	var pr PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", c.owner, c.repo, number)
	if err := c.do(ctx, http.MethodGet, path, nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// MergedPRCount counts the author's merged pull requests in the
// repository via the search API.
func (c *Client) MergedPRCount(ctx context.Context, author string) (int, error) {
	q := fmt.Sprintf("repo:%s/%s is:pr is:merged author:%s", c.owner, c.repo, author)
	path := "/search/issues?per_page=1&q=" + url.QueryEscape(q)
	var out struct {
		TotalCount int `json:"total_count"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.TotalCount, nil
}

// CreateComment posts a comment on the pull request's issue thread.
func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("encoding comment: %w", err)
	}
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", c.owner, c.repo, number)
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling github: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("github %s %s: %s: %s", method, path, res.Status, bytes.TrimSpace(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding github response: %w", err)
	}
	return nil
}
