package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-trajectory/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}

	return gateway, server
}

var since = time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)

func TestGitHubGateway_SearchCommits(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       []domain.CommitHit
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - maps commit hits",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search/commits", r.URL.Path)
				assert.Equal(t, "author:octocat committer-date:>=2026-10-17", r.URL.Query().Get("q"))
				assert.Equal(t, "committer-date", r.URL.Query().Get("sort"))
				assert.Equal(t, "desc", r.URL.Query().Get("order"))
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"total_count": 2, "items": [
					{"repository": {"name": "repo-a"}, "commit": {"message": "fix: thing\n\nbody", "committer": {"date": "2026-10-18T01:02:03Z"}}},
					{"repository": {"name": "repo-b"}, "commit": {"message": "init", "committer": {"date": "2026-10-17T09:00:00Z"}}}
				]}`)
			},
			expected: []domain.CommitHit{
				{Repository: "repo-a", Message: "fix: thing\n\nbody", CommittedAt: time.Date(2026, 10, 18, 1, 2, 3, 0, time.UTC)},
				{Repository: "repo-b", Message: "init", CommittedAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)},
			},
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"message": "Bad credentials"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to search commits",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()
			hits, err := gateway.SearchCommits(context.Background(), "octocat", since)
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			require.Len(t, hits, len(tc.expected))
			for i := range tc.expected {
				assert.Equal(t, tc.expected[i].Repository, hits[i].Repository)
				assert.Equal(t, tc.expected[i].Message, hits[i].Message)
				assert.True(t, tc.expected[i].CommittedAt.Equal(hits[i].CommittedAt))
			}
		})
	}
}

func TestGitHubGateway_CountCommits(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/commits", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `{"total_count": 42, "items": [{"repository": {"name": "repo-a"}}]}`)
	}))
	defer server.Close()

	count, err := gateway.CountCommits(context.Background(), "octocat", since)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestGitHubGateway_ListRepositories(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("direction"))
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[{"name": "repo-a", "owner": {"login": "octocat"}}, {"name": "tool", "owner": {"login": "acme"}}]`)
	}))
	defer server.Close()

	repos, err := gateway.ListRepositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Repository{
		{Owner: "octocat", Name: "repo-a"},
		{Owner: "acme", Name: "tool"},
	}, repos)
}

func TestGitHubGateway_ListLanguages(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		expected    map[string]int
		expectError bool
	}{
		{name: "happy path", status: http.StatusOK, body: `{"Go": 1200, "Shell": 30}`, expected: map[string]int{"Go": 1200, "Shell": 30}},
		{name: "empty repository", status: http.StatusOK, body: `{}`, expected: map[string]int{}},
		{name: "not found", status: http.StatusNotFound, body: `{"message": "Not Found"}`, expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/octocat/repo-a/languages", r.URL.Path)
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			langs, err := gateway.ListLanguages(context.Background(), domain.Repository{Owner: "octocat", Name: "repo-a"})
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "failed to list languages of octocat/repo-a")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, langs)
		})
	}
}

func TestGitHubGateway_ListEvents(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/events/public", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[{"type": "PushEvent", "repo": {"name": "octocat/repo-a"}, "created_at": "2026-10-18T00:00:00Z"}]`)
	}))
	defer server.Close()

	events, err := gateway.ListEvents(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "PushEvent", events[0].Type)
	assert.Equal(t, "octocat/repo-a", events[0].Repo)
}

func TestGitHubGateway_FetchRepositoryLanguages(t *testing.T) {
	testCases := []struct {
		name           string
		responseBody   string
		expected       []map[string]int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:         "happy path",
			responseBody: `{"data":{"viewer":{"repositories":{"nodes":[{"name":"repo-a","languages":{"edges":[{"size":800,"node":{"name":"Go"}},{"size":200,"node":{"name":"Shell"}}]}},{"name":"repo-b","languages":{"edges":[]}}]}}}}`,
			expected: []map[string]int{
				{"Go": 800, "Shell": 200},
				{},
			},
		},
		{
			name:           "error case",
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query for languages",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "viewer")
				assert.Contains(t, string(body), "languages(first: 100)")
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			langs, err := gateway.FetchRepositoryLanguages(context.Background())
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, langs)
		})
	}
}

func TestNewGitHubGateway(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	fetcher, err := NewGitHubGateway("token", 0, logger)
	require.NoError(t, err)
	assert.IsType(t, &GitHubGateway{}, fetcher)
}
