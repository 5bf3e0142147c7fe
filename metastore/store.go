// Package metastore persists seed records in the SQLite metadata database so
// a snapshot can be rebuilt without the original seed files.
package metastore

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/schemalens/db"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/seed"
	"github.com/teranos/schemalens/sym"
)

// recordTables lists every seed table, in the order ImportRecords clears them.
var recordTables = []string{
	"intent_query_bindings",
	"intent_perspective_weights",
	"intent_concept_weights",
	"intents",
	"perspective_concept_weights",
	"perspectives",
	"concept_field_bindings",
	"concepts",
	"schema_edges",
	"schema_nodes",
}

// ImportInfo describes the most recent import.
type ImportInfo struct {
	ID            int64     `json:"id"`
	Digest        string    `json:"digest"`
	FormatVersion string    `json:"format_version,omitempty"`
	Source        string    `json:"source,omitempty"`
	ImportedAt    time.Time `json:"imported_at"`
}

// Stats summarises what the store holds.
type Stats struct {
	Counts     map[string]int `json:"counts"`
	LastImport *ImportInfo    `json:"last_import,omitempty"`
}

// SQLStore stores one seed record set; each import replaces the previous one.
type SQLStore struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewSQLStore wraps a migrated database handle.
func NewSQLStore(db *sql.DB, log *zap.SugaredLogger) *SQLStore {
	return &SQLStore{db: db, log: logger.OrNop(log).Named("metastore")}
}

// Describe identifies the store as a snapshot source.
func (s *SQLStore) Describe() string {
	return "metastore"
}

// ImportRecords replaces the stored record set with recs in one transaction.
// Either every record lands or the previous set stays intact.
func (s *SQLStore) ImportRecords(ctx context.Context, recs *seed.Records, source string) (*ImportInfo, error) {
	if recs == nil {
		return nil, errors.New("nil records")
	}

	start := time.Now()
	digest := recs.Digest()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(db.Classify(err), "begin import")
	}
	defer tx.Rollback()

	for _, table := range recordTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, errors.Wrapf(err, "clear %s", table)
		}
	}

	if err := insertRecords(ctx, tx, recs); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO seed_imports (digest, format_version, source) VALUES (?, ?, ?)",
		digest, recs.FormatVersion, source)
	if err != nil {
		return nil, errors.Wrap(err, "record import")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "read import id")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(db.Classify(err), "commit import")
	}

	s.log.Infow("Imported seed records",
		"symbol", sym.DB,
		logger.FieldDigest, digest,
		logger.FieldPath, source,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	return &ImportInfo{
		ID:            id,
		Digest:        digest,
		FormatVersion: recs.FormatVersion,
		Source:        source,
		ImportedAt:    start.UTC(),
	}, nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, recs *seed.Records) error {
	for _, n := range recs.Nodes {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_nodes (table_name, table_type, description) VALUES (?, ?, ?)",
			n.TableName, n.TableType, n.Description); err != nil {
			return errors.Wrapf(err, "insert node %s", n.TableName)
		}
	}
	for _, e := range recs.Edges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schema_edges (
				from_table, to_table, relationship_type, join_column, weight,
				join_column_description, natural_language_alias, example, context
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.FromTable, e.ToTable, e.RelationshipType, e.JoinColumn, e.Weight,
			e.JoinColumnDescription, e.NaturalLanguageAlias, e.Example, e.Context); err != nil {
			return errors.Wrapf(err, "insert edge %s->%s", e.FromTable, e.ToTable)
		}
	}
	for _, c := range recs.Concepts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO concepts (id, name, concept_type, domain, description, parent_concept_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.ConceptType, c.Domain, c.Description, c.ParentConceptID); err != nil {
			return errors.Wrapf(err, "insert concept %s", c.Name)
		}
	}
	for _, b := range recs.ConceptBindings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO concept_field_bindings (table_name, field_name, concept_id, is_primary_meaning, context_hint)
			VALUES (?, ?, ?, ?, ?)`,
			b.TableName, b.FieldName, b.ConceptID, b.IsPrimaryMeaning, b.ContextHint); err != nil {
			return errors.Wrapf(err, "insert binding %s.%s", b.TableName, b.FieldName)
		}
	}
	for _, p := range recs.Perspectives {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO perspectives (id, name, stakeholder_role, priority_focus) VALUES (?, ?, ?, ?)",
			p.ID, p.Name, p.StakeholderRole, p.PriorityFocus); err != nil {
			return errors.Wrapf(err, "insert perspective %s", p.Name)
		}
	}
	for _, w := range recs.PerspectiveWeights {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO perspective_concept_weights (perspective_id, concept_id, relationship_type, priority_weight)
			VALUES (?, ?, ?, ?)`,
			w.PerspectiveID, w.ConceptID, w.RelationshipType, w.PriorityWeight); err != nil {
			return errors.Wrap(err, "insert perspective weight")
		}
	}
	for _, in := range recs.Intents {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO intents (id, name, category, description, example_question)
			VALUES (?, ?, ?, ?, ?)`,
			in.ID, in.Name, in.Category, in.Description, in.ExampleQuestion); err != nil {
			return errors.Wrapf(err, "insert intent %s", in.Name)
		}
	}
	for _, w := range recs.IntentConceptWeights {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO intent_concept_weights (intent_id, concept_id, weight) VALUES (?, ?, ?)",
			w.IntentID, w.ConceptID, w.Weight); err != nil {
			return errors.Wrap(err, "insert intent concept weight")
		}
	}
	for _, w := range recs.IntentPerspectiveWeights {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO intent_perspective_weights (intent_id, perspective_id, weight) VALUES (?, ?, ?)",
			w.IntentID, w.PerspectiveID, w.Weight); err != nil {
			return errors.Wrap(err, "insert intent perspective weight")
		}
	}
	for _, q := range recs.IntentQueryBindings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO intent_query_bindings (intent_id, query_category, query_name, notes)
			VALUES (?, ?, ?, ?)`,
			q.IntentID, q.QueryCategory, q.QueryName, q.Notes); err != nil {
			return errors.Wrap(err, "insert intent query binding")
		}
	}
	return nil
}
