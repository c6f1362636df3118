package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/logger"
)

// Entry is one catalogued synthesized type.
type Entry struct {
	Seq          int64          `json:"seq"`
	RunID        string         `json:"run_id"`
	KeyHash      string         `json:"key_hash"`
	TypeName     ir.TypeRef     `json:"type_name"`
	Base         ir.TypeRef     `json:"base"`
	Backend      string         `json:"backend"`
	Key          ir.Key         `json:"key"`
	Constructors [][]ir.TypeRef `json:"constructors"`
}

// Synthesized implements synth.Observer.
func (s *Store) Synthesized(rec ir.SynthesisRecord) error {
	_, err := s.Record(context.Background(), rec)
	return err
}

// Record inserts rec and its members. A key hash already present is left
// untouched and reported with inserted=false.
func (s *Store) Record(ctx context.Context, rec ir.SynthesisRecord) (inserted bool, err error) {
	keyJSON, err := rec.Key.Canonical()
	if err != nil {
		return false, errors.Wrap(err, "record: canonical key")
	}
	ctorJSON, err := json.Marshal(rec.Constructors)
	if err != nil {
		return false, errors.Wrap(err, "record: constructors")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "record: begin tx")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO synthesized_types
		(key_hash, seq, run_id, type_name, base_type, backend, key_json, constructors)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM synthesized_types), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_hash) DO NOTHING
	`,
		rec.KeyHash,
		s.runID,
		string(rec.TypeName),
		string(rec.Key.Base),
		rec.Key.Backend,
		string(keyJSON),
		string(ctorJSON),
	)
	if err != nil {
		return false, errors.Wrap(err, "record: insert type")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "record: rows affected")
	}
	if rows == 0 {
		return false, nil
	}

	for i, m := range rec.Members {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO members (key_hash, position, signature, origin, declared_in)
			VALUES (?, ?, ?, ?, ?)
		`, rec.KeyHash, i, m.Signature, m.Origin, string(m.DeclaredIn)); err != nil {
			return false, errors.Wrapf(err, "record: insert member %s", m.Signature)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "record: commit")
	}
	logger.Named("store").Debugw("catalogued type", "name", rec.TypeName, "hash", rec.KeyHash)
	return true, nil
}

const entryColumns = `seq, run_id, key_hash, type_name, base_type, backend, key_json, constructors`

// List returns every entry ordered by seq.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM synthesized_types
		ORDER BY seq ASC, key_hash COLLATE BINARY ASC
	`)
}

// ListByBase returns the entries synthesized from base, ordered by seq.
func (s *Store) ListByBase(ctx context.Context, base ir.TypeRef) ([]Entry, error) {
	return s.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM synthesized_types
		WHERE base_type = ?
		ORDER BY seq ASC, key_hash COLLATE BINARY ASC
	`, string(base))
}

// Overriding returns the entries whose tables override sig.
func (s *Store) Overriding(ctx context.Context, sig ir.MethodSignature) ([]Entry, error) {
	return s.queryEntries(ctx, `
		SELECT t.seq, t.run_id, t.key_hash, t.type_name, t.base_type, t.backend, t.key_json, t.constructors
		FROM synthesized_types t
		JOIN members m ON m.key_hash = t.key_hash
		WHERE m.signature = ? AND m.origin = 'override'
		ORDER BY t.seq ASC, t.key_hash COLLATE BINARY ASC
	`, sig.String())
}

// Get returns one entry. Returns an error wrapping sql.ErrNoRows if absent.
func (s *Store) Get(ctx context.Context, hash string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM synthesized_types
		WHERE key_hash = ?
	`, hash)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "get %s", hash)
	}
	return e, nil
}

// Members returns the dispatch table recorded for hash, in table order.
// Returns an empty slice (not nil) for unknown hashes.
func (s *Store) Members(ctx context.Context, hash string) ([]ir.MemberRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT signature, origin, declared_in
		FROM members
		WHERE key_hash = ?
		ORDER BY position ASC
	`, hash)
	if err != nil {
		return nil, errors.Wrap(err, "query members")
	}
	defer rows.Close()

	members := []ir.MemberRecord{}
	for rows.Next() {
		var m ir.MemberRecord
		var declared string
		if err := rows.Scan(&m.Signature, &m.Origin, &declared); err != nil {
			return nil, errors.Wrap(err, "scan member")
		}
		m.DeclaredIn = ir.TypeRef(declared)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate members")
	}
	return members, nil
}

// Count returns the number of catalogued types.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM synthesized_types`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count types")
	}
	return n, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query types")
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate types")
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var typeName, base, keyJSON, ctorJSON string
	if err := row.Scan(&e.Seq, &e.RunID, &e.KeyHash, &typeName, &base, &e.Backend, &keyJSON, &ctorJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, errors.Wrap(err, "scan type")
	}
	e.TypeName = ir.TypeRef(typeName)
	e.Base = ir.TypeRef(base)

	key, err := ir.ParseKey([]byte(keyJSON))
	if err != nil {
		return Entry{}, errors.Wrapf(err, "decode key of %s", e.KeyHash)
	}
	e.Key = key
	if err := json.Unmarshal([]byte(ctorJSON), &e.Constructors); err != nil {
		return Entry{}, errors.Wrapf(err, "decode constructors of %s", e.KeyHash)
	}
	return e, nil
}
