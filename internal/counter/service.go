package counter

import (
	"context"
	"sort"
)

// Counts is the view and unique-visitor tally for one page.
type Counts struct {
	Views       int64 `json:"views"`
	UniqueViews int64 `json:"uniqueViews"`
}

// RecordResult is returned by RecordView.
type RecordResult struct {
	Counts
	IsNewVisitor bool `json:"isNewVisitor"`
}

type PageStats struct {
	PageID string `json:"pageId"`
	Counts
}

// Stats summarises every page the store knows about.
type Stats struct {
	Store            string      `json:"store"`
	TotalViews       int64       `json:"totalViews"`
	TotalUniqueViews int64       `json:"totalUniqueViews"`
	Pages            []PageStats `json:"pages"`
}

// Runner executes a storage operation with durable-first, memory-fallback
// semantics. *Fallback is the production implementation.
type Runner interface {
	Name() string
	Run(ctx context.Context, op string, fn func(Store) error) error
}

// Service implements the view counter.
//
// By default RecordView does a plain read-modify-write: concurrent views of
// the same page can lose increments or both report a new visitor. With
// atomic set it uses the store's atomic increment and set-add instead.
type Service struct {
	runner  Runner
	atomic  bool
	metrics *Metrics
}

func NewService(runner Runner, atomic bool, m *Metrics) *Service {
	return &Service{
		runner:  runner,
		atomic:  atomic,
		metrics: m,
	}
}

// StoreName reports which durable store backs the service.
func (s *Service) StoreName() string {
	return s.runner.Name()
}

func (s *Service) GetCounts(ctx context.Context, page string) (Counts, error) {
	if page == "" {
		return Counts{}, ErrInvalidRequest
	}

	var c Counts
	err := s.runner.Run(ctx, "get", func(st Store) error {
		views, err := st.Views(ctx, page)
		if err != nil {
			return err
		}
		unique, err := st.VisitorCount(ctx, page)
		if err != nil {
			return err
		}
		c = Counts{Views: views, UniqueViews: unique}
		return nil
	})
	return c, err
}

// RecordView counts one view of page by the visitor identified by addr and
// clientID.
func (s *Service) RecordView(ctx context.Context, page, addr, clientID string) (RecordResult, error) {
	if page == "" {
		return RecordResult{}, ErrInvalidRequest
	}

	id := VisitorID(addr, clientID)
	record := s.recordSequential
	if s.atomic {
		record = s.recordAtomic
	}

	var res RecordResult
	err := s.runner.Run(ctx, "record", func(st Store) error {
		r, err := record(ctx, st, page, id)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return RecordResult{}, err
	}

	s.metrics.recordView(res.IsNewVisitor)
	return res, nil
}

func (s *Service) recordSequential(ctx context.Context, st Store, page, id string) (RecordResult, error) {
	// Both reads happen before any write so a failed read leaves the store
	// untouched and the fallback rerun is the only place the view lands.
	views, err := st.Views(ctx, page)
	if err != nil {
		return RecordResult{}, err
	}
	ids, err := st.Visitors(ctx, page)
	if err != nil {
		return RecordResult{}, err
	}

	views++
	isNew := !containsID(ids, id)
	if isNew {
		ids = append(ids, id)
	}

	if err := st.SetViews(ctx, page, views); err != nil {
		return RecordResult{}, err
	}
	if isNew {
		if err := st.SetVisitors(ctx, page, ids); err != nil {
			return RecordResult{}, err
		}
	}

	return RecordResult{
		Counts:       Counts{Views: views, UniqueViews: int64(len(ids))},
		IsNewVisitor: isNew,
	}, nil
}

func (s *Service) recordAtomic(ctx context.Context, st Store, page, id string) (RecordResult, error) {
	views, err := st.IncrViews(ctx, page)
	if err != nil {
		return RecordResult{}, err
	}
	added, unique, err := st.AddVisitor(ctx, page, id)
	if err != nil {
		return RecordResult{}, err
	}
	return RecordResult{
		Counts:       Counts{Views: views, UniqueViews: unique},
		IsNewVisitor: added,
	}, nil
}

// ResetPage removes all counts for page. Resetting an unknown page is not
// an error.
func (s *Service) ResetPage(ctx context.Context, page string) error {
	if page == "" {
		return ErrInvalidRequest
	}
	return s.runner.Run(ctx, "reset", func(st Store) error {
		return st.DeletePage(ctx, page)
	})
}

func (s *Service) ResetAll(ctx context.Context) error {
	return s.runner.Run(ctx, "reset_all", func(st Store) error {
		return st.DeleteAll(ctx)
	})
}

// Stats lists every known page, busiest first.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := s.runner.Run(ctx, "stats", func(st Store) error {
		pages, err := st.Pages(ctx)
		if err != nil {
			return err
		}
		stats := Stats{Store: st.Name(), Pages: make([]PageStats, 0, len(pages))}
		for _, p := range pages {
			views, err := st.Views(ctx, p)
			if err != nil {
				return err
			}
			unique, err := st.VisitorCount(ctx, p)
			if err != nil {
				return err
			}
			stats.Pages = append(stats.Pages, PageStats{PageID: p, Counts: Counts{Views: views, UniqueViews: unique}})
			stats.TotalViews += views
			stats.TotalUniqueViews += unique
		}
		out = stats
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	sort.SliceStable(out.Pages, func(i, j int) bool {
		return out.Pages[i].Views > out.Pages[j].Views
	})
	return out, nil
}
