package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"sarkar/internal/platform/postgres"
	"sarkar/internal/profile/models"
	"sarkar/pkg/platform/sentinel"
)

const userColumns = `user_id, primary_profile, family_members, device_tokens, deadline_notifications, created_at`

// PostgresStore persists user documents in the users table. JSON columns are
// sent as text because lib/pq encodes []byte as bytea.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*models.UserDocument, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	doc, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", postgres.ClassifyError(err))
	}
	return doc, nil
}

func (s *PostgresStore) SetPrimaryProfile(ctx context.Context, userID string, profile models.Profile) error {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	query := `
		INSERT INTO users (user_id, primary_profile, deadline_notifications)
		VALUES ($1, $2::jsonb, '{}'::jsonb)
		ON CONFLICT (user_id) DO UPDATE SET
			primary_profile = EXCLUDED.primary_profile,
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, userID, string(encoded)); err != nil {
		return fmt.Errorf("set primary profile: %w", postgres.ClassifyError(err))
	}
	return nil
}

func (s *PostgresStore) AddFamilyMember(ctx context.Context, userID string, member models.FamilyMember) error {
	encoded, err := json.Marshal(member)
	if err != nil {
		return fmt.Errorf("encode family member: %w", err)
	}
	query := `
		INSERT INTO users (user_id, family_members, deadline_notifications)
		VALUES ($1, jsonb_build_array($2::jsonb), '{}'::jsonb)
		ON CONFLICT (user_id) DO UPDATE SET
			family_members = users.family_members || jsonb_build_array($2::jsonb),
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, userID, string(encoded)); err != nil {
		return fmt.Errorf("add family member: %w", postgres.ClassifyError(err))
	}
	return nil
}

func (s *PostgresStore) RemoveFamilyMember(ctx context.Context, userID, memberID string) (bool, error) {
	query := `
		UPDATE users SET
			family_members = COALESCE(
				(SELECT jsonb_agg(m) FROM jsonb_array_elements(family_members) AS m WHERE m->>'id' <> $2),
				'[]'::jsonb),
			updated_at = now()
		WHERE user_id = $1
			AND family_members @> jsonb_build_array(jsonb_build_object('id', $2::text))
	`
	res, err := s.db.ExecContext(ctx, query, userID, memberID)
	if err != nil {
		return false, fmt.Errorf("remove family member: %w", postgres.ClassifyError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove family member: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) SetDeviceTokens(ctx context.Context, userID string, tokens []string) error {
	if tokens == nil {
		tokens = []string{}
	}
	query := `
		INSERT INTO users (user_id, device_tokens, deadline_notifications)
		VALUES ($1, $2, '{}'::jsonb)
		ON CONFLICT (user_id) DO UPDATE SET
			device_tokens = EXCLUDED.device_tokens,
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, userID, pq.Array(tokens)); err != nil {
		return fmt.Errorf("set device tokens: %w", postgres.ClassifyError(err))
	}
	return nil
}

func (s *PostgresStore) SetNotificationRecord(ctx context.Context, userID string, record models.NotificationRecord) error {
	if record == nil {
		record = models.NotificationRecord{}
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode notification record: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET deadline_notifications = $2::jsonb, updated_at = now() WHERE user_id = $1`,
		userID, string(encoded))
	if err != nil {
		return fmt.Errorf("set notification record: %w", postgres.ClassifyError(err))
	}
	return requireRow(res)
}

// MarkNotified adds one entry without rewriting the rest of the record.
func (s *PostgresStore) MarkNotified(ctx context.Context, userID, schemeID string, at time.Time) error {
	query := `
		UPDATE users SET
			deadline_notifications = COALESCE(deadline_notifications, '{}'::jsonb)
				|| jsonb_build_object($2::text, $3::timestamptz),
			updated_at = now()
		WHERE user_id = $1
	`
	res, err := s.db.ExecContext(ctx, query, userID, schemeID, at.UTC())
	if err != nil {
		return fmt.Errorf("mark notified: %w", postgres.ClassifyError(err))
	}
	return requireRow(res)
}

func (s *PostgresStore) ListAllUsers(ctx context.Context) ([]*models.UserDocument, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", postgres.ClassifyError(err))
	}
	defer rows.Close()

	var docs []*models.UserDocument
	for rows.Next() {
		doc, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return docs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.UserDocument, error) {
	var (
		doc           models.UserDocument
		primary       []byte
		family        []byte
		tokens        pq.StringArray
		notifications []byte
	)
	if err := row.Scan(&doc.UserID, &primary, &family, &tokens, &notifications, &doc.CreatedAt); err != nil {
		return nil, err
	}
	if len(primary) > 0 {
		var p models.Profile
		if err := json.Unmarshal(primary, &p); err != nil {
			return nil, fmt.Errorf("decode primary profile: %w", err)
		}
		doc.PrimaryProfile = &p
	}
	doc.FamilyMembers = []models.FamilyMember{}
	if len(family) > 0 {
		if err := json.Unmarshal(family, &doc.FamilyMembers); err != nil {
			return nil, fmt.Errorf("decode family members: %w", err)
		}
	}
	doc.DeviceTokens = []string(tokens)
	if len(notifications) > 0 {
		if err := json.Unmarshal(notifications, &doc.DeadlineNotifications); err != nil {
			return nil, fmt.Errorf("decode notification record: %w", err)
		}
	}
	return &doc, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
