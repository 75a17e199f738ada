package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundlift/mailroom/internal/domain"
)

// EmailLogStore implements domain.EmailLogStore using PostgreSQL.
// Status transitions are enforced in SQL: MarkSent and MarkFailed only touch
// rows still in PENDING, so an entry can never revert or flip between
// SENT and FAILED.
type EmailLogStore struct {
	db *pgxpool.Pool
}

// Compile-time check to ensure EmailLogStore implements domain.EmailLogStore.
var _ domain.EmailLogStore = (*EmailLogStore)(nil)

// NewEmailLogStore creates a new EmailLogStore instance.
func NewEmailLogStore(db *pgxpool.Pool) *EmailLogStore {
	return &EmailLogStore{db: db}
}

// CreatePending inserts a new delivery log entry in PENDING status.
func (s *EmailLogStore) CreatePending(ctx context.Context, params domain.CreateLogParams) (uuid.UUID, error) {
	variables := params.Variables
	if variables == nil {
		variables = map[string]string{}
	}
	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal variables: %w", err)
	}

	id := uuid.New()
	_, err = s.db.Exec(ctx, `
		INSERT INTO email_logs (id, to_addr, cc, bcc, template_id, variables, status, user_id, event_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))`,
		id, params.To, params.Cc, params.Bcc, params.TemplateID, varsJSON,
		string(domain.StatusPending), params.UserID, params.EventID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert delivery log entry: %w", err)
	}

	return id, nil
}

// MarkSent transitions a PENDING entry to SENT with the provider message id.
func (s *EmailLogStore) MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error {
	return s.transition(ctx, id, domain.StatusSent, `
		UPDATE email_logs
		SET status = 'SENT', provider_message_id = $2, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'`,
		providerMessageID,
	)
}

// MarkFailed transitions a PENDING entry to FAILED with the error message.
func (s *EmailLogStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return s.transition(ctx, id, domain.StatusFailed, `
		UPDATE email_logs
		SET status = 'FAILED', error_message = $2, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'`,
		errorMessage,
	)
}

// transition runs a status update and distinguishes "no such entry" from
// "entry already left PENDING" when nothing was updated.
func (s *EmailLogStore) transition(ctx context.Context, id uuid.UUID, target domain.EmailStatus, query, arg string) error {
	tag, err := s.db.Exec(ctx, query, id, arg)
	if err != nil {
		return fmt.Errorf("failed to update delivery log entry: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = s.db.QueryRow(ctx, `SELECT status FROM email_logs WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("emaillog.transition", "delivery log entry", id.String())
	}
	if err != nil {
		return fmt.Errorf("failed to load delivery log entry: %w", err)
	}
	return domain.Conflict("emaillog.transition",
		fmt.Sprintf("entry %s is %s, cannot transition to %s", id, current, target))
}

const logColumns = `
	id, to_addr, COALESCE(cc, ''), COALESCE(bcc, ''), template_id, variables,
	status, COALESCE(provider_message_id, ''), COALESCE(error_message, ''),
	COALESCE(user_id, ''), COALESCE(event_id, ''), created_at, updated_at`

// Get returns a single delivery log entry.
func (s *EmailLogStore) Get(ctx context.Context, id uuid.UUID) (*domain.EmailLog, error) {
	row := s.db.QueryRow(ctx, `SELECT`+logColumns+` FROM email_logs WHERE id = $1`, id)

	entry, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("emaillog.get", "delivery log entry", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery log entry: %w", err)
	}
	return entry, nil
}

// List returns entries matching the filter, newest first, plus the total
// matching count for offset pagination.
func (s *EmailLogStore) List(ctx context.Context, filter domain.LogFilter) ([]domain.EmailLog, int64, error) {
	filter = filter.Normalize()

	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.TemplateID != "" {
		add("template_id = $%d", filter.TemplateID)
	}
	if filter.EventID != "" {
		add("event_id = $%d", filter.EventID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM email_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count delivery log entries: %w", err)
	}

	query := fmt.Sprintf(`SELECT%s FROM email_logs%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		logColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list delivery log entries: %w", err)
	}
	defer rows.Close()

	var items []domain.EmailLog
	for rows.Next() {
		entry, err := scanLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan delivery log entry: %w", err)
		}
		items = append(items, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read delivery log entries: %w", err)
	}

	return items, total, nil
}

func scanLog(row pgx.Row) (*domain.EmailLog, error) {
	var (
		entry    domain.EmailLog
		status   string
		varsJSON []byte
	)
	err := row.Scan(
		&entry.ID, &entry.To, &entry.Cc, &entry.Bcc, &entry.TemplateID, &varsJSON,
		&status, &entry.ProviderMessageID, &entry.ErrorMessage,
		&entry.UserID, &entry.EventID, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Status = domain.EmailStatus(status)
	if len(varsJSON) > 0 {
		if err := json.Unmarshal(varsJSON, &entry.Variables); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
		}
	}
	return &entry, nil
}
