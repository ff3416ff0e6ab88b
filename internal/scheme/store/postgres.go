package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"sarkar/internal/platform/postgres"
	"sarkar/internal/scheme/models"
	"sarkar/pkg/platform/tx"
)

const dateLayout = "2006-01-02"

const schemeColumns = `id, scheme_name, ministry, scheme_category, level, state, description,
	tags, deadline, application_link, application_mode, benefits, is_active,
	target_group, eligibility_rules`

// PostgresStore persists the catalog in the schemes table. Rows come back in
// whatever order Postgres returns them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListActiveSchemes(ctx context.Context) ([]models.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE is_active = TRUE`
	schemes, err := s.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active schemes: %w", err)
	}
	return schemes, nil
}

// ListActiveSchemesWithDeadline relies on the (is_active, deadline) index.
func (s *PostgresStore) ListActiveSchemesWithDeadline(ctx context.Context) ([]models.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE is_active = TRUE AND deadline IS NOT NULL`
	schemes, err := s.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active schemes with deadline: %w", err)
	}
	return schemes, nil
}

// Upsert writes the batch in one transaction, or joins the caller's.
func (s *PostgresStore) Upsert(ctx context.Context, schemes []models.Scheme) error {
	return tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		for _, sc := range schemes {
			rules, err := json.Marshal(sc.EligibilityRules)
			if err != nil {
				return fmt.Errorf("encode rules for %s: %w", sc.ID, err)
			}
			var deadline sql.NullString
			if sc.Deadline != nil {
				deadline = sql.NullString{String: *sc.Deadline, Valid: true}
			}
			_, err = sqlTx.ExecContext(ctx, upsertSchemeQuery,
				sc.ID, sc.SchemeName, sc.Ministry, sc.SchemeCategory, sc.Level, sc.State, sc.Description,
				pq.Array(nonNil(sc.Tags)), deadline, sc.ApplicationLink, sc.ApplicationMode, sc.Benefits, sc.IsActive,
				pq.Array(nonNil(sc.TargetGroup)), string(rules),
			)
			if err != nil {
				return fmt.Errorf("upsert scheme %s: %w", sc.ID, postgres.ClassifyError(err))
			}
		}
		return nil
	})
}

const upsertSchemeQuery = `
	INSERT INTO schemes (` + schemeColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
		scheme_name = EXCLUDED.scheme_name,
		ministry = EXCLUDED.ministry,
		scheme_category = EXCLUDED.scheme_category,
		level = EXCLUDED.level,
		state = EXCLUDED.state,
		description = EXCLUDED.description,
		tags = EXCLUDED.tags,
		deadline = EXCLUDED.deadline,
		application_link = EXCLUDED.application_link,
		application_mode = EXCLUDED.application_mode,
		benefits = EXCLUDED.benefits,
		is_active = EXCLUDED.is_active,
		target_group = EXCLUDED.target_group,
		eligibility_rules = EXCLUDED.eligibility_rules,
		updated_at = now()
`

func (s *PostgresStore) query(ctx context.Context, query string) ([]models.Scheme, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, postgres.ClassifyError(err)
	}
	defer rows.Close()

	var schemes []models.Scheme
	for rows.Next() {
		sc, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.ClassifyError(err)
	}
	return schemes, nil
}

func scanScheme(rows *sql.Rows) (models.Scheme, error) {
	var (
		sc          models.Scheme
		tags        pq.StringArray
		targetGroup pq.StringArray
		deadline    sql.NullTime
		rules       []byte
	)
	err := rows.Scan(&sc.ID, &sc.SchemeName, &sc.Ministry, &sc.SchemeCategory, &sc.Level, &sc.State,
		&sc.Description, &tags, &deadline, &sc.ApplicationLink, &sc.ApplicationMode, &sc.Benefits,
		&sc.IsActive, &targetGroup, &rules)
	if err != nil {
		return models.Scheme{}, fmt.Errorf("scan scheme: %w", err)
	}
	sc.Tags = []string(tags)
	sc.TargetGroup = []string(targetGroup)
	if deadline.Valid {
		d := deadline.Time.UTC().Format(dateLayout)
		sc.Deadline = &d
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &sc.EligibilityRules); err != nil {
			return models.Scheme{}, fmt.Errorf("decode rules for %s: %w", sc.ID, err)
		}
	}
	return sc, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
