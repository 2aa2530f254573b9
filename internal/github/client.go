package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/portfolio/internal/logging"
)

var (
	// ErrNotConfigured is returned when a call needs a token that is not set.
	ErrNotConfigured = errors.New("github token not configured")
	// ErrRateLimited is returned when GitHub reports the rate limit is spent.
	ErrRateLimited = errors.New("github rate limit exceeded")
)

const contributionsQuery = `query($login: String!) {
  user(login: $login) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays { date contributionCount weekday color }
        }
      }
    }
  }
}`

// Options configures a Client.
type Options struct {
	Token      string
	User       string
	APIURL     string
	GraphQLURL string
	HTTPClient *http.Client
}

// Client talks to the GitHub REST and GraphQL APIs.
type Client struct {
	http       *http.Client
	token      string
	user       string
	apiURL     string
	graphqlURL string
}

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		http:       hc,
		token:      opts.Token,
		user:       opts.User,
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		graphqlURL: opts.GraphQLURL,
	}
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "portfolio/"+c.user)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and returns the body of a 200 response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkRateLimit(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github %s: unexpected status %s", req.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// checkRateLimit turns an exhausted-rate-limit response into ErrRateLimited
// carrying the reset time.
func checkRateLimit(resp *http.Response) error {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "0" {
		return nil
	}

	reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return ErrRateLimited
	}
	resetAt := time.Unix(reset, 0).UTC()
	logging.Warn("GitHub rate limit hit", zap.Time("reset", resetAt))
	return fmt.Errorf("%w, resets at %s", ErrRateLimited, resetAt.Format(time.RFC3339))
}

// Projects fetches the user's own public, non-archived repositories with a
// language breakdown for each.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	url := fmt.Sprintf("%s/users/%s/repos?type=owner&sort=pushed&per_page=100", c.apiURL, c.user)
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var repos []repoResponse
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("decode repos: %w", err)
	}

	projects := make([]Project, 0, len(repos))
	langURLs := make([]string, 0, len(repos))
	for _, r := range repos {
		if r.Fork || r.Archived {
			continue
		}
		projects = append(projects, toProject(r))
		langURLs = append(langURLs, r.LanguagesURL)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, langURL := range langURLs {
		if langURL == "" {
			continue
		}
		p := &projects[i]
		g.Go(func() error {
			langs, err := c.languages(gctx, langURL)
			if err != nil {
				return err
			}
			p.Languages = langs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) languages(ctx context.Context, url string) (map[string]float64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var bytesByLang map[string]int64
	if err := json.Unmarshal(body, &bytesByLang); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}
	return languageShares(bytesByLang), nil
}

// languageShares converts byte counts into percentages rounded to one
// decimal place.
func languageShares(bytesByLang map[string]int64) map[string]float64 {
	var total int64
	for _, n := range bytesByLang {
		total += n
	}
	out := make(map[string]float64, len(bytesByLang))
	if total == 0 {
		return out
	}
	for lang, n := range bytesByLang {
		out[lang] = math.Round(float64(n)*1000/float64(total)) / 10
	}
	return out
}

func toProject(r repoResponse) Project {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}
	langs := map[string]float64{}
	if r.Language != "" {
		langs[r.Language] = 100
	}
	return Project{
		ID:          r.Name,
		Title:       titleFromName(r.Name),
		Description: r.Description,
		URL:         r.HTMLURL,
		Homepage:    r.Homepage,
		Language:    r.Language,
		Languages:   langs,
		Topics:      topics,
		Stars:       r.StargazersCount,
		Forks:       r.ForksCount,
		UpdatedAt:   r.PushedAt,
	}
}

// titleFromName turns "zach-dev_site" into "Zach Dev Site".
func titleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Contributions fetches the contribution calendar. It needs a token because
// the GraphQL API rejects anonymous calls.
func (c *Client) Contributions(ctx context.Context) (Calendar, error) {
	if c.token == "" {
		return Calendar{}, ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"query":     contributionsQuery,
		"variables": map[string]string{"login": c.user},
	})
	if err != nil {
		return Calendar{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return Calendar{}, err
	}
	body, err := c.do(req)
	if err != nil {
		return Calendar{}, err
	}
	return parseCalendar(body)
}

func parseCalendar(body []byte) (Calendar, error) {
	if !gjson.ValidBytes(body) {
		return Calendar{}, errors.New("github graphql: invalid json")
	}
	if msg := gjson.GetBytes(body, "errors.0.message"); msg.Exists() {
		return Calendar{}, fmt.Errorf("github graphql: %s", msg.String())
	}

	cal := gjson.GetBytes(body, "data.user.contributionsCollection.contributionCalendar")
	if !cal.Exists() {
		return Calendar{}, errors.New("github graphql: contribution calendar missing")
	}

	out := Calendar{
		Total: int(cal.Get("totalContributions").Int()),
		Weeks: []Week{},
		Days:  []Day{},
	}
	cal.Get("weeks").ForEach(func(_, week gjson.Result) bool {
		w := Week{Days: []Day{}}
		week.Get("contributionDays").ForEach(func(_, d gjson.Result) bool {
			day := Day{
				Date:    d.Get("date").String(),
				Count:   int(d.Get("contributionCount").Int()),
				Weekday: int(d.Get("weekday").Int()),
				Color:   d.Get("color").String(),
			}
			w.Days = append(w.Days, day)
			out.Days = append(out.Days, day)
			return true
		})
		out.Weeks = append(out.Weeks, w)
		return true
	})
	return out, nil
}
