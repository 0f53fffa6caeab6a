package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// pgxQuerier is the subset of *pgxpool.Pool the repository needs.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	form, err := json.Marshal(req.Form)
	if err != nil {
		return nil, fmt.Errorf("leads: marshal form: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO booking_leads (id, site_id, session_id, program, option_label, form, deep_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id.String(),
		req.SiteID,
		req.SessionID,
		req.Form.Program,
		req.Option,
		form,
		req.DeepLink,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return &Lead{
		ID:        id.String(),
		SiteID:    req.SiteID,
		SessionID: req.SessionID,
		Form:      req.Form,
		Option:    req.Option,
		DeepLink:  req.DeepLink,
		CreatedAt: createdAt,
	}, nil
}

// GetByID fetches a lead scoped to the site. An id that is not a UUID
// cannot name a lead and is reported as not found.
func (r *PostgresRepository) GetByID(ctx context.Context, siteID, id string) (*Lead, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrLeadNotFound
	}
	query := `
		SELECT id, site_id, session_id, option_label, form, deep_link, created_at
		FROM booking_leads
		WHERE id = $1 AND site_id = $2
	`
	lead, err := scanLead(r.db.QueryRow(ctx, query, leadID.String(), siteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// ListBySite pages through a site's leads, newest first.
func (r *PostgresRepository) ListBySite(ctx context.Context, siteID string, filter ListLeadsFilter) ([]*Lead, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	query := `
		SELECT id, site_id, session_id, option_label, form, deep_link, created_at
		FROM booking_leads
		WHERE site_id = $1 AND ($2 = '' OR program = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, siteID, filter.Program, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead Lead
		form []byte
	)
	if err := row.Scan(
		&lead.ID,
		&lead.SiteID,
		&lead.SessionID,
		&lead.Option,
		&form,
		&lead.DeepLink,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(form, &lead.Form); err != nil {
		return nil, fmt.Errorf("leads: decode form: %w", err)
	}
	return &lead, nil
}
