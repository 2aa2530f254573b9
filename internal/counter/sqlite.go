package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS page_views (
	page_id    TEXT PRIMARY KEY,
	views      INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS page_visitors (
	page_id    TEXT NOT NULL,
	visitor_id TEXT NOT NULL,  -- hashed, never the raw address
	first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (page_id, visitor_id)
);`

// SQLiteStore keeps counts in a local SQLite file. Suited to single-host
// deployments where no hosted key-value store is available.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time keeps SQLITE_BUSY out of the request path.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create counter tables: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Views(ctx context.Context, page string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT views FROM page_views WHERE page_id = ?`, page).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite get views: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) SetViews(ctx context.Context, page string, n int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_views (page_id, views) VALUES (?, ?)
		ON CONFLICT(page_id) DO UPDATE SET views = excluded.views, updated_at = CURRENT_TIMESTAMP
	`, page, n)
	if err != nil {
		return fmt.Errorf("sqlite set views: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Visitors(ctx context.Context, page string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT visitor_id FROM page_visitors
		WHERE page_id = ?
		ORDER BY first_seen, visitor_id
	`, page)
	if err != nil {
		return nil, fmt.Errorf("sqlite get visitors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite scan visitor: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) SetVisitors(ctx context.Context, page string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM page_visitors WHERE page_id = ?`, page); err != nil {
		return fmt.Errorf("sqlite clear visitors: %w", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO page_visitors (page_id, visitor_id) VALUES (?, ?)`, page, id); err != nil {
			return fmt.Errorf("sqlite insert visitor: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) VisitorCount(ctx context.Context, page string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM page_visitors WHERE page_id = ?`, page).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite count visitors: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) IncrViews(ctx context.Context, page string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO page_views (page_id, views) VALUES (?, 1)
		ON CONFLICT(page_id) DO UPDATE SET views = views + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING views
	`, page).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite incr views: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) AddVisitor(ctx context.Context, page, id string) (bool, int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO page_visitors (page_id, visitor_id) VALUES (?, ?)`, page, id)
	if err != nil {
		return false, 0, fmt.Errorf("sqlite add visitor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("sqlite add visitor: %w", err)
	}
	n, err := s.VisitorCount(ctx, page)
	if err != nil {
		return false, 0, err
	}
	return affected == 1, n, nil
}

func (s *SQLiteStore) Pages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_id FROM page_views
		UNION
		SELECT page_id FROM page_visitors
		ORDER BY page_id
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite list pages: %w", err)
	}
	defer rows.Close()

	var pages []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("sqlite scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *SQLiteStore) DeletePage(ctx context.Context, page string) error {
	return s.exec(ctx, "delete page",
		stmt{`DELETE FROM page_views WHERE page_id = ?`, []any{page}},
		stmt{`DELETE FROM page_visitors WHERE page_id = ?`, []any{page}},
	)
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	return s.exec(ctx, "delete all",
		stmt{`DELETE FROM page_views`, nil},
		stmt{`DELETE FROM page_visitors`, nil},
	)
}

type stmt struct {
	query string
	args  []any
}

func (s *SQLiteStore) exec(ctx context.Context, what string, stmts ...stmt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite %s: %w", what, err)
	}
	defer tx.Rollback()

	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
			return fmt.Errorf("sqlite %s: %w", what, err)
		}
	}
	return tx.Commit()
}
