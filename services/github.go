package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	githubAPI      = "https://api.github.com"
	githubPageSize = 100
	githubMaxPages = 10
)

// GitHubRepo holds the repository fields the stats need
type GitHubRepo struct {
	Name            string `json:"name"`
	Language        string `json:"language"`
	StargazersCount int    `json:"stargazers_count"`
	Fork            bool   `json:"fork"`
}

type GitHubStats struct {
	Username         string `json:"username"`
	TotalRepos       int    `json:"totalRepos"`
	TotalStars       int    `json:"totalStars"`
	MostUsedLanguage string `json:"mostUsedLanguage"`
}

// GitHubClient reads public repository data, authenticated when a token is configured.
type GitHubClient struct {
	http     *http.Client
	baseURL  string
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewGitHubClient(ctx context.Context, token string, c cache.Cache) *GitHubClient {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		httpClient.Timeout = 15 * time.Second
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &GitHubClient{http: httpClient, baseURL: githubAPI, cache: c, cacheTTL: time.Hour}
}

// Stats returns cached stats for username, fetching from GitHub on a miss.
func (g *GitHubClient) Stats(ctx context.Context, username string) (GitHubStats, error) {
	key := "github:stats:" + username

	var stats GitHubStats
	hit, err := cache.GetJSON(ctx, g.cache, key, &stats)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Ignoring unreadable cache entry")
	}
	if hit {
		return stats, nil
	}

	repos, err := g.Repos(ctx, username)
	if err != nil {
		return GitHubStats{}, err
	}
	stats = ComputeGitHubStats(username, repos)

	if err := cache.SetJSON(ctx, g.cache, key, stats, g.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache GitHub stats")
	}
	return stats, nil
}

// Repos lists every public repository owned by username.
func (g *GitHubClient) Repos(ctx context.Context, username string) ([]GitHubRepo, error) {
	var all []GitHubRepo
	for page := 1; page <= githubMaxPages; page++ {
		endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&page=%d",
			g.baseURL, url.PathEscape(username), githubPageSize, page)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create github request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := g.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("github request: %w", err)
		}

		var repos []GitHubRepo
		err = decodeGitHubResponse(resp, &repos)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		all = append(all, repos...)
		if len(repos) < githubPageSize {
			break
		}
	}
	return all, nil
}

func decodeGitHubResponse(resp *http.Response, dst any) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("github API error (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode github response: %w", err)
	}
	return nil
}

// ComputeGitHubStats totals stars and picks the most frequent language.
// Ties go to the language seen first.
func ComputeGitHubStats(username string, repos []GitHubRepo) GitHubStats {
	stats := GitHubStats{Username: username, TotalRepos: len(repos)}

	counts := make(map[string]int)
	var order []string
	for _, r := range repos {
		stats.TotalStars += r.StargazersCount
		if r.Language == "" {
			continue
		}
		if counts[r.Language] == 0 {
			order = append(order, r.Language)
		}
		counts[r.Language]++
	}

	best := 0
	for _, lang := range order {
		if counts[lang] > best {
			best = counts[lang]
			stats.MostUsedLanguage = lang
		}
	}
	return stats
}
