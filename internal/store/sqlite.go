// Package store persists finished simulations in SQLite and caches recent results in memory.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"ecg-synth/internal/model"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Run is one persisted simulation.
type Run struct {
	ID        string
	CreatedAt time.Time
	Preset    string
	Config    model.SimulationConfig
	Result    *model.SimulationResult
}

// RunInfo is the listing view of a run; it omits the sample data.
type RunInfo struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Preset         string    `json:"preset"`
	SamplingRateHz int       `json:"sampling_rate_hz"`
	BeatCount      int       `json:"beat_count"`
	Samples        int       `json:"samples"`
}

// RunStore manages the SQLite connection and schema.
type RunStore struct {
	db *sql.DB
}

// Open initializes the SQLite database at path.
// It enables WAL mode so the API can read while a run is being written.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &RunStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		preset TEXT NOT NULL,
		config_json JSON NOT NULL,
		meta_json JSON NOT NULL,
		beats_json JSON NOT NULL,
		sampling_rate_hz INTEGER NOT NULL,
		beat_count INTEGER NOT NULL,

		-- little-endian float64 samples; time is rebuilt from the sampling rate
		signal BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// Save inserts run. An empty ID gets a new UUID and a zero CreatedAt gets the current time;
// the stored run is returned.
func (s *RunStore) Save(ctx context.Context, run Run) (Run, error) {
	if run.Result == nil {
		return Run{}, errors.New("run has no result")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	cfgJSON, err := json.Marshal(run.Config)
	if err != nil {
		return Run{}, fmt.Errorf("marshal config: %w", err)
	}
	metaJSON, err := json.Marshal(run.Result.Meta)
	if err != nil {
		return Run{}, fmt.Errorf("marshal meta: %w", err)
	}
	beats := run.Result.Beats
	if beats == nil {
		beats = []model.BeatEvent{}
	}
	beatsJSON, err := json.Marshal(beats)
	if err != nil {
		return Run{}, fmt.Errorf("marshal beats: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, preset, config_json, meta_json, beats_json, sampling_rate_hz, beat_count, signal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, run.Preset, string(cfgJSON), string(metaJSON), string(beatsJSON),
		run.Result.Meta.SamplingRateHz, len(run.Result.Beats), encodeSignal(run.Result.Signal))
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// Get loads a run with its full result.
func (s *RunStore) Get(ctx context.Context, id string) (Run, error) {
	var (
		run                          Run
		cfgJSON, metaJSON, beatsJSON string
		fs                           int
		blob                         []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, preset, config_json, meta_json, beats_json, sampling_rate_hz, signal
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.CreatedAt, &run.Preset, &cfgJSON, &metaJSON, &beatsJSON, &fs, &blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("decode config: %w", err)
	}
	res := &model.SimulationResult{}
	if err := json.Unmarshal([]byte(metaJSON), &res.Meta); err != nil {
		return Run{}, fmt.Errorf("decode meta: %w", err)
	}
	if err := json.Unmarshal([]byte(beatsJSON), &res.Beats); err != nil {
		return Run{}, fmt.Errorf("decode beats: %w", err)
	}
	res.Signal, err = decodeSignal(blob)
	if err != nil {
		return Run{}, err
	}
	res.Time = make([]float64, len(res.Signal))
	for i := range res.Time {
		res.Time[i] = float64(i) / float64(fs)
	}
	run.Result = res
	return run, nil
}

// List returns the most recent runs first. A non-positive limit means 50.
func (s *RunStore) List(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, preset, sampling_rate_hz, beat_count, length(signal) / 8
		FROM runs ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	out := []RunInfo{}
	for rows.Next() {
		var ri RunInfo
		if err := rows.Scan(&ri.ID, &ri.CreatedAt, &ri.Preset, &ri.SamplingRateHz, &ri.BeatCount, &ri.Samples); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, ri)
	}
	return out, rows.Err()
}

func encodeSignal(sig []float64) []byte {
	buf := make([]byte, 8*len(sig))
	for i, v := range sig {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeSignal(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("corrupt signal blob: %d bytes", len(buf))
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out, nil
}
