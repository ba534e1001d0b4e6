package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"PriceOracle/internal/model"
)

// SQLiteRecorder persists prediction history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Entry
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logrus.Entry) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the refresh job writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &SQLiteRecorder{db: db, log: log.WithField("component", "recorder"), now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at      INTEGER NOT NULL,
			as_of            INTEGER,
			symbol           TEXT NOT NULL,
			days             INTEGER,
			current_price    REAL,
			expected_price   REAL,
			predicted_change REAL,
			rsi              REAL,
			ma_7             REAL,
			ma_25            REAL,
			ma_50            REAL,
			volatility       REAL,
			trend_strength   REAL,
			signal           TEXT,
			action           TEXT,
			confidence       REAL,
			support          REAL,
			resistance       REAL,
			accuracy         REAL,
			rmse             REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_symbol_ts ON predictions(symbol, recorded_at)`,

		`CREATE TABLE IF NOT EXISTS symbols (
			code       TEXT PRIMARY KEY,
			name       TEXT,
			pair       TEXT,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPrediction(ctx context.Context, p *model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ind, v := p.Indicators, p.Verdict
	_, err := r.db.ExecContext(ctx, `INSERT INTO predictions
		(recorded_at, as_of, symbol, days, current_price, expected_price, predicted_change,
		 rsi, ma_7, ma_25, ma_50, volatility, trend_strength,
		 signal, action, confidence, support, resistance, accuracy, rmse)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), p.AsOf.Unix(), p.Symbol, p.Days, p.CurrentPrice, p.ExpectedPrice, v.PredictedTrend,
		ind.RSI, ind.MAShort, ind.MAMedium, ind.MALong, ind.Volatility, ind.TrendStrength,
		string(v.Signal), string(v.Action), v.Confidence, v.Support, v.Resistance,
		p.Metrics.Accuracy, p.Metrics.RMSE,
	)
	return err
}

func (r *SQLiteRecorder) UpsertSymbols(ctx context.Context, symbols []model.SymbolInfo) error {
	if len(symbols) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := r.now().Unix()
	for _, s := range symbols {
		if _, err := tx.ExecContext(ctx, `INSERT INTO symbols (code, name, pair, updated_at)
			VALUES (?,?,?,?)
			ON CONFLICT(code) DO UPDATE SET name = excluded.name, pair = excluded.pair, updated_at = excluded.updated_at`,
			s.Code, s.Name, s.Pair, now,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", s.Code, err)
		}
	}
	return tx.Commit()
}

// LatestSignals returns the newest recorded verdict per symbol.
func (r *SQLiteRecorder) LatestSignals(ctx context.Context) (map[string]SignalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.symbol, p.signal, p.current_price, p.confidence, p.recorded_at
		FROM predictions p
		JOIN (SELECT symbol, MAX(id) AS id FROM predictions GROUP BY symbol) latest ON latest.id = p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]SignalRecord)
	for rows.Next() {
		var rec SignalRecord
		var sig string
		if err := rows.Scan(&rec.Symbol, &sig, &rec.Price, &rec.Confidence, &rec.RecordedAt); err != nil {
			return nil, err
		}
		rec.Signal = model.Signal(sig)
		out[rec.Symbol] = rec
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
