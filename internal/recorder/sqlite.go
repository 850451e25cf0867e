package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"TickerSentinel/internal/model"
	"TickerSentinel/pkg/logger"
)

// SQLiteRecorder persists prediction history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets report queries read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			run_id      TEXT PRIMARY KEY,
			ticker      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			label       TEXT NOT NULL,
			score       REAL,
			avg_price   REAL,
			last_price  REAL,
			bar_count   INTEGER,
			headlines   INTEGER,
			status      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_ticker_ts ON predictions(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS headline_scores (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES predictions(run_id),
			published   INTEGER,
			headline    TEXT,
			source      TEXT,
			neg         REAL,
			neu         REAL,
			pos         REAL,
			compound    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_headline_scores_run ON headline_scores(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPrediction(rec *PredictionRecord, headlines []model.AnnotatedHeadline) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := rec.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO predictions
		(run_id, ticker, timestamp, label, score, avg_price, last_price, bar_count, headlines, status)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		runID, rec.Ticker, created.Unix(), rec.Label.String(), rec.Score,
		rec.AvgPrice, rec.LastPrice, rec.BarCount, rec.Headlines, rec.Status,
	); err != nil {
		return "", fmt.Errorf("insert prediction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO headline_scores
		(run_id, published, headline, source, neg, neu, pos, compound)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("prepare headline insert: %w", err)
	}
	defer stmt.Close()
	for _, h := range headlines {
		if _, err := stmt.Exec(runID, h.Date.Unix(), h.Headline, h.Source,
			h.Negative, h.Neutral, h.Positive, h.Compound); err != nil {
			return "", fmt.Errorf("insert headline score: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	rec.RunID = runID
	rec.CreatedAt = created
	return runID, nil
}

func (r *SQLiteRecorder) RecentPredictions(ticker string, n int) ([]PredictionRecord, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := r.db.Query(`SELECT p.run_id, p.ticker, p.timestamp, p.label, p.score,
			p.avg_price, p.last_price, p.bar_count, p.headlines, p.status
		FROM predictions p
		WHERE p.ticker = ?
		ORDER BY p.timestamp DESC, p.rowid DESC
		LIMIT ?`, ticker, n)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionRecord
	for rows.Next() {
		var (
			rec   PredictionRecord
			ts    int64
			label string
		)
		if err := rows.Scan(&rec.RunID, &rec.Ticker, &ts, &label, &rec.Score,
			&rec.AvgPrice, &rec.LastPrice, &rec.BarCount, &rec.Headlines, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		rec.CreatedAt = time.Unix(ts, 0)
		if rec.Label, err = model.ParseTrendLabel(label); err != nil {
			return nil, fmt.Errorf("run %s: %w", rec.RunID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RunHeadlines returns the stored headline vectors of the run ref names, in
// the order they were recorded.
func (r *SQLiteRecorder) RunHeadlines(ref string) (string, []HeadlineScore, error) {
	runID, err := r.resolveRun(ref)
	if err != nil {
		return "", nil, err
	}
	rows, err := r.db.Query(`SELECT published, headline, source, neg, neu, pos, compound
		FROM headline_scores WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return "", nil, fmt.Errorf("query headline scores: %w", err)
	}
	defer rows.Close()

	var out []HeadlineScore
	for rows.Next() {
		var (
			hs HeadlineScore
			ts int64
		)
		if err := rows.Scan(&ts, &hs.Headline, &hs.Source, &hs.Negative, &hs.Neutral, &hs.Positive, &hs.Compound); err != nil {
			return "", nil, fmt.Errorf("scan headline score: %w", err)
		}
		hs.Date = time.Unix(ts, 0).UTC()
		out = append(out, hs)
	}
	return runID, out, rows.Err()
}

// resolveRun prefers an exact run ID and falls back to a unique prefix.
func (r *SQLiteRecorder) resolveRun(ref string) (string, error) {
	if ref == "" {
		return "", ErrRunNotFound
	}
	var runID string
	err := r.db.QueryRow(`SELECT run_id FROM predictions WHERE run_id = ?`, ref).Scan(&runID)
	if err == nil {
		return runID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup run: %w", err)
	}

	rows, err := r.db.Query(`SELECT run_id FROM predictions WHERE run_id LIKE ? ESCAPE '\' LIMIT 2`,
		likeEscaper.Replace(ref)+"%")
	if err != nil {
		return "", fmt.Errorf("lookup run: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		if err := rows.Scan(&runID); err != nil {
			return "", fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, runID)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("lookup run: %w", err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, ref)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousRun, ref)
	}
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
