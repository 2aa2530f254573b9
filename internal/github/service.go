// Package github proxies the GitHub API for the portfolio's project list
// and contribution graph, reshaping responses into a stable format and
// caching them stale-while-revalidate.
package github

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no project matches.
var ErrNotFound = errors.New("no projects found")

// Source values reported with every response.
const (
	SourceGitHub = "github"
	SourceCache  = "cache"
)

// Fetcher is the upstream the Service caches. *Client implements it.
type Fetcher interface {
	Projects(ctx context.Context) ([]Project, error)
	Contributions(ctx context.Context) (Calendar, error)
}

type ProjectList struct {
	Projects  []Project `json:"projects"`
	FetchedAt time.Time `json:"fetchedAt"`
	Source    string    `json:"source"`
}

type Service struct {
	fetcher       Fetcher
	projects      *swrCache[[]Project]
	contributions *swrCache[Calendar]
	fresh         time.Duration
	stale         time.Duration
}

func NewService(f Fetcher, fresh, stale time.Duration, m *Metrics) *Service {
	if stale < fresh {
		stale = fresh
	}
	return &Service{
		fetcher:       f,
		projects:      newSWRCache[[]Project]("projects", fresh, stale, m),
		contributions: newSWRCache[Calendar]("contributions", fresh, stale, m),
		fresh:         fresh,
		stale:         stale,
	}
}

// CacheWindow returns how long a response is fresh and how much longer a
// stale one may be served.
func (s *Service) CacheWindow() (fresh, revalidate time.Duration) {
	return s.fresh, s.stale - s.fresh
}

// Projects returns the cached project list, optionally filtered to those
// using language.
func (s *Service) Projects(ctx context.Context, language string) (ProjectList, error) {
	all, fetchedAt, fromCache, err := s.projects.get(ctx, "all", s.fetcher.Projects)
	if err != nil {
		return ProjectList{}, err
	}

	projects := filterByLanguage(all, language)
	if len(projects) == 0 {
		return ProjectList{}, ErrNotFound
	}

	return ProjectList{
		Projects:  projects,
		FetchedAt: fetchedAt,
		Source:    source(fromCache),
	}, nil
}

func (s *Service) Contributions(ctx context.Context) (Calendar, error) {
	cal, _, _, err := s.contributions.get(ctx, "calendar", s.fetcher.Contributions)
	return cal, err
}

// Invalidate drops every cached response.
func (s *Service) Invalidate() {
	s.projects.purge()
	s.contributions.purge()
}

func filterByLanguage(projects []Project, language string) []Project {
	if language == "" {
		return projects
	}
	var out []Project
	for _, p := range projects {
		if usesLanguage(p, language) {
			out = append(out, p)
		}
	}
	return out
}

func usesLanguage(p Project, language string) bool {
	if strings.EqualFold(p.Language, language) {
		return true
	}
	for lang := range p.Languages {
		if strings.EqualFold(lang, language) {
			return true
		}
	}
	return false
}

func source(fromCache bool) string {
	if fromCache {
		return SourceCache
	}
	return SourceGitHub
}
