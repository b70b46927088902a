package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"genoscope-hq/callisto/pkg/config"
	"genoscope-hq/callisto/pkg/evidence"
)

// SchemaVersion is bumped on any schema change.
const SchemaVersion = 1

// schema creates the evidence table and its indexes. JSON columns hold the
// residue and flag lists.
const schema = `
CREATE TABLE IF NOT EXISTS evidence (
	id            TEXT PRIMARY KEY,
	recorded_time INTEGER NOT NULL,
	corpus_name   TEXT NOT NULL,
	gene          TEXT NOT NULL DEFAULT '',
	drug          TEXT NOT NULL,
	drug_class    TEXT NOT NULL DEFAULT '',
	rule_source   TEXT NOT NULL,
	calls_text    TEXT NOT NULL,
	kind          TEXT NOT NULL,
	score         INTEGER NOT NULL DEFAULT 0,
	resistant     INTEGER NOT NULL DEFAULT 0,
	residues      TEXT NOT NULL DEFAULT '[]',
	flags         TEXT NOT NULL DEFAULT '[]',
	duration_ns   INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_evidence_recorded_time ON evidence(recorded_time);
CREATE INDEX IF NOT EXISTS idx_evidence_drug ON evidence(drug);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

const insertRecord = `
INSERT INTO evidence (
	id, recorded_time, corpus_name, gene, drug, drug_class, rule_source,
	calls_text, kind, score, resistant, residues, flags, duration_ns, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SQLiteStorage implements evidence.Storage on a SQLite database file using
// the pure-Go driver, so the binary builds without cgo.
type SQLiteStorage struct {
	db     *sql.DB
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteStorage opens (or creates) the database at cfg.Path, enables WAL
// mode, and prepares the schema.
func NewSQLiteStorage(cfg config.SQLiteConfig) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		logger: slog.Default().With("component", "evidence.storage.sqlite"),
	}
	if err := s.initialize(cfg); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("sqlite evidence storage initialized",
		"path", cfg.Path,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize(cfg config.SQLiteConfig) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return evidence.NewStorageError("sqlite", "enable_wal", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	insert, err := s.db.Prepare(insertRecord)
	if err != nil {
		return evidence.NewStorageError("sqlite", "prepare_insert", err)
	}
	s.insert = insert
	return nil
}

// Store implements evidence.Storage.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.Record) error {
	residues, err := json.Marshal(record.Residues)
	if err != nil {
		return evidence.NewStorageError("sqlite", "marshal_residues", err)
	}
	flags, err := json.Marshal(record.Flags)
	if err != nil {
		return evidence.NewStorageError("sqlite", "marshal_flags", err)
	}

	_, err = s.insert.ExecContext(ctx,
		record.ID,
		record.RecordedTime.UnixNano(),
		record.CorpusName,
		record.Gene,
		record.Drug,
		record.DrugClass,
		record.RuleSource,
		record.CallsText,
		record.Kind,
		record.Score,
		boolToInt(record.Resistant),
		string(residues),
		string(flags),
		record.Duration.Nanoseconds(),
		record.Error,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query implements evidence.Storage.
func (s *SQLiteStorage) Query(ctx context.Context, q *evidence.Query) ([]*evidence.Record, error) {
	where, args := buildWhere(q)
	query := `SELECT id, recorded_time, corpus_name, gene, drug, drug_class, rule_source,
		calls_text, kind, score, resistant, residues, flags, duration_ns, error
		FROM evidence` + where + " ORDER BY recorded_time DESC"
	if q != nil && q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
		if q.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", q.Offset)
		}
	} else if q != nil && q.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []*evidence.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count implements evidence.Storage.
func (s *SQLiteStorage) Count(ctx context.Context, q *evidence.Query) (int64, error) {
	where, args := buildWhere(q)
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evidence"+where, args...).Scan(&n)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// Delete implements evidence.Storage.
func (s *SQLiteStorage) Delete(ctx context.Context, q *evidence.Query) (int64, error) {
	where, args := buildWhere(q)
	res, err := s.db.ExecContext(ctx, "DELETE FROM evidence"+where, args...)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// DeleteOldest implements evidence.Storage.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM evidence WHERE id IN (SELECT id FROM evidence ORDER BY recorded_time ASC LIMIT ?)", n)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete_oldest", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete_oldest", err)
	}
	return deleted, nil
}

// Close implements evidence.Storage.
func (s *SQLiteStorage) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}

// buildWhere translates query filters into a WHERE clause and its arguments.
func buildWhere(q *evidence.Query) (string, []any) {
	if q == nil {
		return "", nil
	}
	var conds []string
	var args []any
	if q.StartTime != nil {
		conds = append(conds, "recorded_time >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conds = append(conds, "recorded_time <= ?")
		args = append(args, q.EndTime.UnixNano())
	}
	if q.Drug != "" {
		conds = append(conds, "drug = ?")
		args = append(args, q.Drug)
	}
	if q.DrugClass != "" {
		conds = append(conds, "drug_class = ?")
		args = append(args, q.DrugClass)
	}
	if q.CorpusName != "" {
		conds = append(conds, "corpus_name = ?")
		args = append(args, q.CorpusName)
	}
	if q.Resistant != nil {
		conds = append(conds, "resistant = ?")
		args = append(args, boolToInt(*q.Resistant))
	}
	if q.MinScore != nil {
		conds = append(conds, "score >= ?")
		args = append(args, *q.MinScore)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRecord(rows *sql.Rows) (*evidence.Record, error) {
	var r evidence.Record
	var recordedNs, durationNs int64
	var resistant int
	var residues, flags string
	err := rows.Scan(
		&r.ID, &recordedNs, &r.CorpusName, &r.Gene, &r.Drug, &r.DrugClass,
		&r.RuleSource, &r.CallsText, &r.Kind, &r.Score, &resistant,
		&residues, &flags, &durationNs, &r.Error,
	)
	if err != nil {
		return nil, err
	}
	r.RecordedTime = time.Unix(0, recordedNs)
	r.Resistant = resistant != 0
	r.Duration = time.Duration(durationNs)
	if err := json.Unmarshal([]byte(residues), &r.Residues); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(flags), &r.Flags); err != nil {
		return nil, err
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
