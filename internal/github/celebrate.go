package github

import (
	"context"
	"fmt"

	"github.com/srulre/classiq-library/internal/log"
	"github.com/srulre/classiq-library/pkg/types"
)

// Celebration is the outcome of one celebration pass. Message is empty
// when the pull request was not merged; Posted is false on dry runs.
type Celebration struct {
	PR          *PullRequest `json:"pr"`
	MergedCount int          `json:"merged_count"`
	Message     string       `json:"message,omitempty"`
	Posted      bool         `json:"posted"`
}

// Celebrate fetches the pull request, counts the author's merged PRs,
// and posts the congratulation comment. Unmerged pull requests are a
// no-op. Dry runs compose the message without posting.
func (c *Client) Celebrate(ctx context.Context, number int, dryRun bool) (*Celebration, error) {
	logger := log.WithComponentFromContext(ctx, "github")

	pr, err := c.GetPullRequest(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request %d: %w", number, err)
	}

	out := &Celebration{PR: pr}
	if !pr.Merged {
		logger.Info().
			Str("event", "pr_not_merged").
			Int("pr", number).
			Msg("pull request not merged, nothing to celebrate")
		return out, nil
	}

	count, err := c.MergedPRCount(ctx, pr.User.Login)
	if err != nil {
		return nil, fmt.Errorf("counting merged pull requests for %s: %w", pr.User.Login, err)
	}
	out.MergedCount = count
	out.Message = Message(pr.User.Login, count)

	if dryRun {
		return out, nil
	}
	if c.token == "" {
		return nil, fmt.Errorf("posting celebration comment: %w", types.ErrNoToken)
	}
	if err := c.CreateComment(ctx, number, out.Message); err != nil {
		return nil, fmt.Errorf("posting celebration comment: %w", err)
	}
	out.Posted = true

	logger.Info().
		Str("event", "celebration_posted").
		Int("pr", number).
		Str("author", pr.User.Login).
		Int("merged_count", count).
		Msg("posted celebration comment")
	return out, nil
}
