// Package backup streams line-delimited JSON snapshots of the database: a
// meta record followed by one record per row. Snapshots move between the
// sqlite and postgres backends, so both export and import run on database/sql
// with driver-specific SQL kept to placeholders and conflict clauses.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/lib/pq"           // ensure postgres driver available
	_ "github.com/mattn/go-sqlite3" // ensure sqlite driver available
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
)

var errNoTablesSelected = errors.New("backup: no tables selected")

// table describes one backed-up table. Registry order is import order, so
// referenced tables come before their referrers.
type table struct {
	name      string
	columns   []string
	orderBy   string
	increment string // autoincrement column to resync on postgres, if any
}

var tableRegistry = []table{
	{
		name:    "users",
		columns: []string{"id", "username", "mode", "created_at", "updated_at"},
		orderBy: "id",
	},
	{
		name:      "cards",
		columns:   []string{"id", "image_ref", "created_at"},
		orderBy:   "id",
		increment: "id",
	},
	{
		name:    "card_progress",
		columns: []string{"user_id", "card_id", "level", "next_review_at", "created_at", "updated_at"},
		orderBy: "user_id, card_id",
	},
}

// ProgressReporter receives per-table progress callbacks during export.
type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

type Service struct {
	driver    string
	dsn       string
	batchSize int
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service bound to the provided database driver and DSN.
func NewService(driver, dsn string, opts ...Option) (*Service, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	if driver == "" {
		return nil, errors.New("backup: driver is required")
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("backup: DSN is required")
	}

	svc := &Service{
		driver:    driver,
		dsn:       dsn,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided table names.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables []string
}

// WithImportTables restricts import to the provided table names.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	Tables     []string        `json:"tables"`
	RowCounts  map[string]int  `json:"row_counts"`
	Payload    json.RawMessage `json:"payload"`
}

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := selectTables(cfg.tables)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	counts := make(map[string]int, len(tables))
	for _, tbl := range tables {
		count, err := countTableRows(ctx, db, tbl.name)
		if err != nil {
			return fmt.Errorf("count table %s: %w", tbl.name, err)
		}
		counts[tbl.name] = count
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := time.Now().UTC()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		Tables:     tableNames(tables),
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, tbl := range tables {
		reporter.StartTable(tbl.name, counts[tbl.name])
		if err := s.exportTable(ctx, db, tbl, reporter, writer); err != nil {
			return err
		}
		reporter.FinishTable(tbl.name)
	}
	return writer.Flush()
}

func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := selectTables(cfg.tables)
	if err != nil {
		return err
	}
	tableFilter := make(map[string]table, len(tables))
	for _, tbl := range tables {
		tableFilter[tbl.name] = tbl
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	br := bufio.NewReader(r)
	var (
		metaSeen bool
		meta     rawRecord
		maxIDs   = make(map[string]int64)
	)

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}

			switch rec.Type {
			case "meta":
				metaSeen = true
				meta = rec
			default:
				tbl, ok := tableFilter[rec.Type]
				if !ok {
					// Skip records for tables not requested.
					break
				}
				if len(rec.Payload) == 0 {
					return fmt.Errorf("backup: missing payload for table %s", rec.Type)
				}
				if err := s.importRow(ctx, tx, tbl, rec.Payload, maxIDs); err != nil {
					return err
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	commit = true

	return s.syncSequences(ctx, db, maxIDs)
}

func (s *Service) exportTable(ctx context.Context, db *sql.DB, tbl table, reporter ProgressReporter, w io.Writer) error {
	batch := s.batchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	for offset := 0; ; offset += batch {
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT %d OFFSET %d",
			strings.Join(tbl.columns, ", "),
			tbl.name,
			tbl.orderBy,
			batch,
			offset,
		)
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query %s: %w", tbl.name, err)
		}

		rowCount := 0
		for rows.Next() {
			values := make([]any, len(tbl.columns))
			dest := make([]any, len(tbl.columns))
			for i := range dest {
				dest[i] = &values[i]
			}
			if err := rows.Scan(dest...); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: %w", tbl.name, err)
			}
			payload := make(map[string]any, len(tbl.columns))
			for i, name := range tbl.columns {
				payload[name] = exportValue(values[i])
			}
			if err := writeRecord(w, record{Type: tbl.name, Payload: payload}); err != nil {
				rows.Close()
				return err
			}
			reporter.Increment(tbl.name, 1)
			rowCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate %s: %w", tbl.name, err)
		}
		rows.Close()
		if rowCount < batch {
			break
		}
	}
	return nil
}

func (s *Service) importRow(ctx context.Context, tx *sql.Tx, tbl table, payload json.RawMessage, maxIDs map[string]int64) error {
	values, err := decodePayload(payload)
	if err != nil {
		return fmt.Errorf("decode payload for %s: %w", tbl.name, err)
	}
	if len(values) == 0 {
		return nil
	}

	cols := make([]string, 0, len(tbl.columns))
	args := make([]any, 0, len(tbl.columns))
	for _, col := range tbl.columns {
		val, ok := values[col]
		if !ok {
			continue
		}
		cols = append(cols, col)
		args = append(args, val)
	}
	if len(cols) == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		tbl.name,
		strings.Join(cols, ", "),
		strings.Join(buildPlaceholders(s.driver, len(cols)), ", "),
	)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", tbl.name, err)
	}

	if tbl.increment != "" {
		if id, ok := values[tbl.increment].(int64); ok && id > maxIDs[tbl.name] {
			maxIDs[tbl.name] = id
		}
	}
	return nil
}

// syncSequences bumps postgres sequences past the highest imported id so
// future inserts don't collide. Sqlite keeps its own rowid counter.
func (s *Service) syncSequences(ctx context.Context, db *sql.DB, maxIDs map[string]int64) error {
	if s.driver != "postgres" {
		return nil
	}
	for _, tbl := range tableRegistry {
		if tbl.increment == "" {
			continue
		}
		max, ok := maxIDs[tbl.name]
		if !ok || max <= 0 {
			continue
		}
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', '%s'), $1, true)", tbl.name, tbl.increment)
		if _, err := db.ExecContext(ctx, query, max); err != nil {
			return fmt.Errorf("sync sequence for %s: %w", tbl.name, err)
		}
	}
	return nil
}

func (s *Service) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if s.driver == "sqlite3" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}
	return db, nil
}

func selectTables(requested []string) ([]table, error) {
	if len(requested) == 0 {
		return tableRegistry, nil
	}
	set := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		n := strings.TrimSpace(strings.ToLower(name))
		if n == "" {
			continue
		}
		if !knownTable(n) {
			return nil, fmt.Errorf("backup: unsupported table %q", name)
		}
		set[n] = struct{}{}
	}
	if len(set) == 0 {
		return nil, errNoTablesSelected
	}
	tbls := make([]table, 0, len(set))
	for _, tbl := range tableRegistry {
		if _, ok := set[tbl.name]; ok {
			tbls = append(tbls, tbl)
		}
	}
	return tbls, nil
}

func knownTable(name string) bool {
	for _, tbl := range tableRegistry {
		if tbl.name == name {
			return true
		}
	}
	return false
}

func tableNames(tables []table) []string {
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.name
	}
	return names
}

func countTableRows(ctx context.Context, db *sql.DB, name string) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", name)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// exportValue normalises driver-specific scan results into JSON-stable forms.
func exportValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

// decodePayload keeps integer ids exact by decoding numbers as json.Number
// and downcasting to int64 where possible.
func decodePayload(payload json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	for key, val := range raw {
		if num, ok := val.(json.Number); ok {
			if i, err := num.Int64(); err == nil {
				raw[key] = i
			} else if f, err := num.Float64(); err == nil {
				raw[key] = f
			}
		}
	}
	return raw, nil
}

func buildPlaceholders(driver string, n int) []string {
	placeholders := make([]string, n)
	for i := range placeholders {
		if driver == "postgres" {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return placeholders
}
