// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-trajectory/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

const (
	// commitSearchPageSize bounds the single page of commit hits fetched per run.
	commitSearchPageSize = 100
	// RepositoryPageSize is the number of most recently updated repositories considered.
	RepositoryPageSize = 20
	eventPageSize      = 100
	searchDateLayout   = "2006-01-02"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	SearchCommits(ctx context.Context, user string, since time.Time) ([]domain.CommitHit, error)
	CountCommits(ctx context.Context, user string, since time.Time) (int, error)
	ListRepositories(ctx context.Context) ([]domain.Repository, error)
	ListLanguages(ctx context.Context, repo domain.Repository) (map[string]int, error)
	ListEvents(ctx context.Context, user string) ([]domain.Event, error)
	// FetchRepositoryLanguages returns the language byte maps of the viewer's most recently
	// updated repositories with a single GraphQL query.
	FetchRepositoryLanguages(ctx context.Context) ([]map[string]int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        logrus.FieldLogger
}

// viewerLanguagesQuery fetches the languages of the viewer's recently updated repositories.
type viewerLanguagesQuery struct {
	Viewer struct {
		Repositories struct {
			Nodes []struct {
				Name      string
				Languages struct {
					Edges []struct {
						Size int
						Node struct {
							Name string
						}
					}
				} `graphql:"languages(first: 100)"`
			}
		} `graphql:"repositories(first: $first, orderBy: {field: UPDATED_AT, direction: DESC})"`
	}
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// A secondary rate limit that needs a longer sleep than maxWait fails the request.
func NewGitHubGateway(token string, maxWait time.Duration, logger logrus.FieldLogger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(maxWait, func(*github_ratelimit.CallbackContext) {
			logger.WithField("max_wait", maxWait).Warn("Secondary rate limit requires a longer wait than allowed.")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func commitQuery(user string, since time.Time) string {
	// Search only understands day granularity; callers filter precisely afterwards.
	return fmt.Sprintf("author:%s committer-date:>=%s", user, since.UTC().Format(searchDateLayout))
}

// SearchCommits returns the user's commits since the given day, newest committer date first.
func (g *GitHubGateway) SearchCommits(ctx context.Context, user string, since time.Time) ([]domain.CommitHit, error) {
	query := commitQuery(user, since)
	g.logger.WithField("query", query).Debug("Searching recent commits...")
	opts := &github.SearchOptions{
		Sort:        "committer-date",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: commitSearchPageSize},
	}
	result, _, err := g.restClient.Search.Commits(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search commits: %w", err)
	}
	hits := make([]domain.CommitHit, 0, len(result.Commits))
	for _, c := range result.Commits {
		hits = append(hits, domain.CommitHit{
			Repository:  c.GetRepository().GetName(),
			Message:     c.GetCommit().GetMessage(),
			CommittedAt: c.GetCommit().GetCommitter().GetDate().Time,
		})
	}
	g.logger.WithField("hits", len(hits)).Debug("Completed commit search.")
	return hits, nil
}

// CountCommits returns the server-reported number of the user's commits since the given day.
func (g *GitHubGateway) CountCommits(ctx context.Context, user string, since time.Time) (int, error) {
	query := commitQuery(user, since)
	g.logger.WithField("query", query).Debug("Counting commits...")
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Commits(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to count commits: %w", err)
	}
	return result.GetTotal(), nil
}

// ListRepositories returns the authenticated user's most recently updated repositories.
func (g *GitHubGateway) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	g.logger.Debug("Listing repositories...")
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: RepositoryPageSize},
	}
	repos, _, err := g.restClient.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	result := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, domain.Repository{
			Owner: r.GetOwner().GetLogin(),
			Name:  r.GetName(),
		})
	}
	return result, nil
}

// ListLanguages returns the number of bytes per language of a repository.
func (g *GitHubGateway) ListLanguages(ctx context.Context, repo domain.Repository) (map[string]int, error) {
	langs, _, err := g.restClient.Repositories.ListLanguages(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages of %s/%s: %w", repo.Owner, repo.Name, err)
	}
	if langs == nil {
		langs = map[string]int{}
	}
	return langs, nil
}

// ListEvents returns the user's recent public events.
func (g *GitHubGateway) ListEvents(ctx context.Context, user string) ([]domain.Event, error) {
	g.logger.Debug("Listing public events...")
	events, _, err := g.restClient.Activity.ListEventsPerformedByUser(ctx, user, true, &github.ListOptions{PerPage: eventPageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	result := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		result = append(result, domain.Event{
			Type:      ev.GetType(),
			Repo:      ev.GetRepo().GetName(),
			CreatedAt: ev.GetCreatedAt().Time,
		})
	}
	return result, nil
}

// FetchRepositoryLanguages fetches language sizes for the viewer's repositories using GraphQL.
func (g *GitHubGateway) FetchRepositoryLanguages(ctx context.Context) ([]map[string]int, error) {
	g.logger.Debug("Fetching repository languages using GraphQL API...")
	variables := map[string]interface{}{"first": githubv4.Int(RepositoryPageSize)}
	var q viewerLanguagesQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for languages: %w", err)
	}
	result := make([]map[string]int, 0, len(q.Viewer.Repositories.Nodes))
	for _, node := range q.Viewer.Repositories.Nodes {
		langs := make(map[string]int, len(node.Languages.Edges))
		for _, edge := range node.Languages.Edges {
			langs[edge.Node.Name] += edge.Size
		}
		result = append(result, langs)
	}
	g.logger.WithField("repositories", len(result)).Debug("Completed fetching repository languages.")
	return result, nil
}
