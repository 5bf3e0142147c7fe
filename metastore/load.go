package metastore

import (
	"context"
	"database/sql"

	"github.com/teranos/schemalens/db"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/seed"
)

// LoadRecords reads the stored record set back in import order.
// An empty store yields empty Records, not an error.
func (s *SQLStore) LoadRecords(ctx context.Context) (*seed.Records, error) {
	recs := &seed.Records{}

	var formatVersion sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT format_version FROM seed_imports ORDER BY id DESC LIMIT 1").Scan(&formatVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(db.Classify(err), "read last import")
	}
	recs.FormatVersion = formatVersion.String

	err = s.scan(ctx, "SELECT table_name, table_type, description FROM schema_nodes ORDER BY seq",
		func(rows *sql.Rows) error {
			var n seed.SchemaNode
			if err := rows.Scan(&n.TableName, &n.TableType, &n.Description); err != nil {
				return err
			}
			recs.Nodes = append(recs.Nodes, n)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, `
		SELECT from_table, to_table, relationship_type, join_column, weight,
		       join_column_description, natural_language_alias, example, context
		FROM schema_edges ORDER BY seq`,
		func(rows *sql.Rows) error {
			var e seed.SchemaEdge
			if err := rows.Scan(&e.FromTable, &e.ToTable, &e.RelationshipType, &e.JoinColumn, &e.Weight,
				&e.JoinColumnDescription, &e.NaturalLanguageAlias, &e.Example, &e.Context); err != nil {
				return err
			}
			recs.Edges = append(recs.Edges, e)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, `
		SELECT id, name, concept_type, domain, description, parent_concept_id
		FROM concepts ORDER BY seq`,
		func(rows *sql.Rows) error {
			var c seed.Concept
			var parent sql.NullInt64
			if err := rows.Scan(&c.ID, &c.Name, &c.ConceptType, &c.Domain, &c.Description, &parent); err != nil {
				return err
			}
			if parent.Valid {
				p := parent.Int64
				c.ParentConceptID = &p
			}
			recs.Concepts = append(recs.Concepts, c)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, `
		SELECT table_name, field_name, concept_id, is_primary_meaning, context_hint
		FROM concept_field_bindings ORDER BY seq`,
		func(rows *sql.Rows) error {
			var b seed.ConceptFieldBinding
			if err := rows.Scan(&b.TableName, &b.FieldName, &b.ConceptID, &b.IsPrimaryMeaning, &b.ContextHint); err != nil {
				return err
			}
			recs.ConceptBindings = append(recs.ConceptBindings, b)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, "SELECT id, name, stakeholder_role, priority_focus FROM perspectives ORDER BY seq",
		func(rows *sql.Rows) error {
			var p seed.Perspective
			if err := rows.Scan(&p.ID, &p.Name, &p.StakeholderRole, &p.PriorityFocus); err != nil {
				return err
			}
			recs.Perspectives = append(recs.Perspectives, p)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, `
		SELECT perspective_id, concept_id, relationship_type, priority_weight
		FROM perspective_concept_weights ORDER BY seq`,
		func(rows *sql.Rows) error {
			var w seed.PerspectiveConceptWeight
			if err := rows.Scan(&w.PerspectiveID, &w.ConceptID, &w.RelationshipType, &w.PriorityWeight); err != nil {
				return err
			}
			recs.PerspectiveWeights = append(recs.PerspectiveWeights, w)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, "SELECT id, name, category, description, example_question FROM intents ORDER BY seq",
		func(rows *sql.Rows) error {
			var in seed.Intent
			if err := rows.Scan(&in.ID, &in.Name, &in.Category, &in.Description, &in.ExampleQuestion); err != nil {
				return err
			}
			recs.Intents = append(recs.Intents, in)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, "SELECT intent_id, concept_id, weight FROM intent_concept_weights ORDER BY seq",
		func(rows *sql.Rows) error {
			var w seed.IntentConceptWeight
			if err := rows.Scan(&w.IntentID, &w.ConceptID, &w.Weight); err != nil {
				return err
			}
			recs.IntentConceptWeights = append(recs.IntentConceptWeights, w)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, "SELECT intent_id, perspective_id, weight FROM intent_perspective_weights ORDER BY seq",
		func(rows *sql.Rows) error {
			var w seed.IntentPerspectiveWeight
			if err := rows.Scan(&w.IntentID, &w.PerspectiveID, &w.Weight); err != nil {
				return err
			}
			recs.IntentPerspectiveWeights = append(recs.IntentPerspectiveWeights, w)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = s.scan(ctx, "SELECT intent_id, query_category, query_name, notes FROM intent_query_bindings ORDER BY seq",
		func(rows *sql.Rows) error {
			var q seed.IntentQueryBinding
			if err := rows.Scan(&q.IntentID, &q.QueryCategory, &q.QueryName, &q.Notes); err != nil {
				return err
			}
			recs.IntentQueryBindings = append(recs.IntentQueryBindings, q)
			return nil
		})
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// scan runs query and hands every row to fn.
func (s *SQLStore) scan(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return errors.Wrap(db.Classify(err), "query seed records")
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return errors.Wrap(err, "scan seed record")
		}
	}
	return errors.Wrap(rows.Err(), "iterate seed records")
}

// Stats counts stored records and reports the last import.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Counts: make(map[string]int, len(recordTables))}
	for _, table := range recordTables {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, errors.Wrapf(db.Classify(err), "count %s", table)
		}
		stats.Counts[table] = n
	}

	var info ImportInfo
	var formatVersion, source sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, digest, format_version, source, imported_at
		FROM seed_imports ORDER BY id DESC LIMIT 1`).
		Scan(&info.ID, &info.Digest, &formatVersion, &source, &info.ImportedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, errors.Wrap(db.Classify(err), "read last import")
	default:
		info.FormatVersion = formatVersion.String
		info.Source = source.String
		stats.LastImport = &info
	}
	return stats, nil
}
