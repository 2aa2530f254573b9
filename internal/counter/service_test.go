package counter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func newMemoryService(atomic bool) *Service {
	return NewService(NewFallback(nil, NewMemoryStore(), BreakerSettings{}, nil), atomic, nil)
}

func TestRecordViewScenario(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		t.Run(fmt.Sprintf("atomic=%v", atomic), func(t *testing.T) {
			ctx := context.Background()
			svc := newMemoryService(atomic)

			steps := []struct {
				addr, ua string
				want     RecordResult
			}{
				{"1.1.1.1", "A", RecordResult{Counts{1, 1}, true}},
				{"1.1.1.1", "A", RecordResult{Counts{2, 1}, false}},
				{"2.2.2.2", "B", RecordResult{Counts{3, 2}, true}},
			}
			for i, s := range steps {
				got, err := svc.RecordView(ctx, "home", s.addr, s.ua)
				if err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
				if got != s.want {
					t.Errorf("step %d: got %+v, want %+v", i, got, s.want)
				}
			}

			c, err := svc.GetCounts(ctx, "home")
			if err != nil {
				t.Fatal(err)
			}
			if c != (Counts{Views: 3, UniqueViews: 2}) {
				t.Errorf("GetCounts = %+v", c)
			}
		})
	}
}

func TestGetCountsUnknownPage(t *testing.T) {
	c, err := newMemoryService(false).GetCounts(context.Background(), "nowhere")
	if err != nil {
		t.Fatal(err)
	}
	if c.Views != 0 || c.UniqueViews != 0 {
		t.Errorf("expected zero counts, got %+v", c)
	}
}

func TestMissingPageID(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	svc := NewService(NewFallback(nil, st, BreakerSettings{}, nil), false, nil)

	if _, err := svc.GetCounts(ctx, ""); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("GetCounts: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.RecordView(ctx, "", "1.1.1.1", "A"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("RecordView: expected ErrInvalidRequest, got %v", err)
	}
	if err := svc.ResetPage(ctx, ""); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("ResetPage: expected ErrInvalidRequest, got %v", err)
	}

	pages, _ := st.Pages(ctx)
	if len(pages) != 0 {
		t.Errorf("invalid requests must not mutate, found pages %v", pages)
	}
}

func TestSequentialViewsAreExact(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService(false)

	const n = 25
	for i := 0; i < n; i++ {
		if _, err := svc.RecordView(ctx, "blog", "9.9.9.9", fmt.Sprintf("ua-%d", i%5)); err != nil {
			t.Fatal(err)
		}
	}
	c, _ := svc.GetCounts(ctx, "blog")
	if c.Views != n {
		t.Errorf("expected %d views, got %d", n, c.Views)
	}
	if c.UniqueViews != 5 {
		t.Errorf("expected 5 unique visitors, got %d", c.UniqueViews)
	}
}

func TestResetPage(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService(false)
	svc.RecordView(ctx, "home", "1.1.1.1", "A")
	svc.RecordView(ctx, "about", "1.1.1.1", "A")

	if err := svc.ResetPage(ctx, "home"); err != nil {
		t.Fatal(err)
	}
	c, _ := svc.GetCounts(ctx, "home")
	if c != (Counts{}) {
		t.Errorf("expected home reset, got %+v", c)
	}
	c, _ = svc.GetCounts(ctx, "about")
	if c.Views != 1 {
		t.Errorf("reset must not touch other pages, about = %+v", c)
	}

	// A visitor seen before the reset is new again afterwards.
	res, _ := svc.RecordView(ctx, "home", "1.1.1.1", "A")
	if !res.IsNewVisitor || res.Views != 1 {
		t.Errorf("expected fresh count after reset, got %+v", res)
	}

	if err := svc.ResetPage(ctx, "nonexistent"); err != nil {
		t.Errorf("resetting an unknown page should succeed, got %v", err)
	}
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService(false)
	pages := []string{"home", "about", "projects"}
	for _, p := range pages {
		svc.RecordView(ctx, p, "1.1.1.1", "A")
	}

	if err := svc.ResetAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetAll(ctx); err != nil {
		t.Fatal(err)
	}
	for _, p := range pages {
		c, _ := svc.GetCounts(ctx, p)
		if c != (Counts{}) {
			t.Errorf("%s: expected zero counts, got %+v", p, c)
		}
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService(false)
	svc.RecordView(ctx, "home", "1.1.1.1", "A")
	svc.RecordView(ctx, "projects", "1.1.1.1", "A")
	svc.RecordView(ctx, "projects", "2.2.2.2", "B")
	svc.RecordView(ctx, "projects", "2.2.2.2", "B")

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Store != "memory" {
		t.Errorf("expected memory store, got %s", st.Store)
	}
	if st.TotalViews != 4 || st.TotalUniqueViews != 3 {
		t.Errorf("unexpected totals %+v", st)
	}
	if len(st.Pages) != 2 || st.Pages[0].PageID != "projects" {
		t.Errorf("expected projects first, got %+v", st.Pages)
	}
}

func TestUniqueNeverExceedsViews(t *testing.T) {
	ctx := context.Background()
	for _, atomic := range []bool{false, true} {
		svc := newMemoryService(atomic)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				svc.RecordView(ctx, "home", fmt.Sprintf("10.0.0.%d", i%7), "A")
			}(i)
		}
		wg.Wait()

		c, _ := svc.GetCounts(ctx, "home")
		if c.UniqueViews > c.Views {
			t.Errorf("atomic=%v: unique %d exceeds views %d", atomic, c.UniqueViews, c.Views)
		}
		if atomic && (c.Views != 50 || c.UniqueViews != 7) {
			t.Errorf("atomic mode must count exactly, got %+v", c)
		}
		if !atomic && (c.Views < 1 || c.Views > 50) {
			t.Errorf("sequential mode views out of range: %+v", c)
		}
	}
}

// gatedStore holds every Views read until `parties` readers have arrived,
// forcing concurrent read-modify-write cycles to interleave.
type gatedStore struct {
	*MemoryStore
	arrived sync.WaitGroup
}

func newGatedStore(parties int) *gatedStore {
	g := &gatedStore{MemoryStore: NewMemoryStore()}
	g.arrived.Add(parties)
	return g
}

func (g *gatedStore) Views(ctx context.Context, page string) (int64, error) {
	n, err := g.MemoryStore.Views(ctx, page)
	g.arrived.Done()
	g.arrived.Wait()
	return n, err
}

func TestConcurrentRecordViewLosesUpdates(t *testing.T) {
	ctx := context.Background()
	st := newGatedStore(2)
	svc := NewService(NewFallback(nil, st, BreakerSettings{}, nil), false, nil)

	var wg sync.WaitGroup
	results := make([]RecordResult, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.RecordView(ctx, "home", "1.1.1.1", "A")
		}(i)
	}
	wg.Wait()

	// Both requests read 0 before either wrote, so one increment is lost.
	n, _ := st.MemoryStore.Views(ctx, "home")
	if n != 1 {
		t.Errorf("expected the non-atomic path to lose an update, got %d views", n)
	}
	if results[0].Views != 1 || results[1].Views != 1 {
		t.Errorf("both callers should see 1 view, got %+v", results)
	}
}

func TestAtomicRecordViewKeepsUpdates(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	svc := NewService(NewFallback(nil, st, BreakerSettings{}, nil), true, nil)

	var wg sync.WaitGroup
	newVisitors := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := svc.RecordView(ctx, "home", "1.1.1.1", "A")
			newVisitors <- res.IsNewVisitor
		}()
	}
	wg.Wait()
	close(newVisitors)

	n, _ := st.Views(ctx, "home")
	if n != 2 {
		t.Errorf("expected 2 views, got %d", n)
	}
	var firsts int
	for isNew := range newVisitors {
		if isNew {
			firsts++
		}
	}
	if firsts != 1 {
		t.Errorf("expected exactly one new-visitor signal, got %d", firsts)
	}
}
