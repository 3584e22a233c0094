package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v81/github"
	"golang.org/x/sync/singleflight"

	gh "repopulse/internal/github"
	"repopulse/internal/record"
)

// ErrFetch reports a failure to retrieve the source payload: network faults,
// auth rejection, or an unknown repository. Transient by classification; the
// orchestration core retries it under its retry policy.
var ErrFetch = errors.New("fetch error")

// Fetcher retrieves the raw metadata payload for one repository identifier.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) (record.SourceRecord, error)
}

// GitHubFetcher fetches repository metadata from the GitHub API, returning
// the raw response body so downstream stages see the payload exactly as the
// API produced it.
//
// Concurrent fetches for the same identifier are deduplicated with
// singleflight: overlapping runs of the same repository share one API call.
type GitHubFetcher struct {
	client *gh.Client
	group  singleflight.Group
}

func NewGitHubFetcher(client *gh.Client) (*GitHubFetcher, error) {
	if client == nil {
		return nil, errors.New("github client is nil")
	}
	return &GitHubFetcher{client: client}, nil
}

func (f *GitHubFetcher) Fetch(ctx context.Context, identifier string) (record.SourceRecord, error) {
	owner, name, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	v, err, _ := f.group.Do(identifier, func() (any, error) {
		return f.fetchRepo(ctx, owner, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(record.SourceRecord), nil
}

func (f *GitHubFetcher) fetchRepo(ctx context.Context, owner, name string) (record.SourceRecord, error) {
	req, err := f.client.Client.NewRequest(http.MethodGet, fmt.Sprintf("repos/%s/%s", owner, name), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s/%s: %v", ErrFetch, owner, name, err)
	}

	var raw json.RawMessage
	resp, err := f.client.Client.Do(ctx, req, &raw)
	if err != nil {
		return nil, classifyAPIError(owner, name, resp, err)
	}
	return record.SourceRecord(raw), nil
}

func classifyAPIError(owner, name string, resp *github.Response, err error) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: repository %s/%s not found", ErrFetch, owner, name)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: access to %s/%s denied (status %d): %v", ErrFetch, owner, name, resp.StatusCode, err)
		}
	}
	return fmt.Errorf("%w: fetch %s/%s: %v", ErrFetch, owner, name, err)
}
