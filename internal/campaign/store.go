package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HerbHall/campaigndesk/internal/store"
	"github.com/google/uuid"
)

// Compile-time interface guard.
var _ store.Component = (*Store)(nil)

// Store provides database operations for campaign records.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a Store backed by db. Run its migrations before use.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Name() string { return "campaign" }

func (s *Store) Migrations() []store.Migration { return migrations() }

// matches reports whether any field contains q, ignoring case. SQLite's
// LIKE folds ASCII only, so accented names are matched here instead.
func matches(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// kindClause appends an equality filter on column when kind is set.
func kindClause(query, column, kind string, args []any) (string, []any) {
	if kind == "" {
		return query, args
	}
	return query + " WHERE " + column + " = ?", append(args, kind)
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Campaigns --

// ListCampaigns returns campaigns ordered by start date. The query matches
// name and description; Kind filters by status.
func (s *Store) ListCampaigns(ctx context.Context, f Filter) ([]Campaign, error) {
	q, args := kindClause(`
		SELECT id, name, description, start_date, end_date, status, budget, target_audience, created_at
		FROM campaign_campaigns`, "status", f.Kind, nil)
	rows, err := s.db.QueryContext(ctx, q+" ORDER BY start_date, name", args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := []Campaign{}
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate,
			&c.Status, &c.Budget, &c.TargetAudience, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		if matches(f.Query, c.Name, c.Description) {
			out = append(out, c)
		}
	}
	return out, rows.Err()
}

// GetCampaign returns a campaign by ID.
func (s *Store) GetCampaign(ctx context.Context, id string) (*Campaign, error) {
	var c Campaign
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, start_date, end_date, status, budget, target_audience, created_at
		FROM campaign_campaigns WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate,
		&c.Status, &c.Budget, &c.TargetAudience, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

// CreateCampaign validates c, assigns its ID and inserts it.
func (s *Store) CreateCampaign(ctx context.Context, c *Campaign) error {
	if err := c.validate(); err != nil {
		return err
	}
	c.ID = uuid.New().String()
	c.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaign_campaigns (id, name, description, start_date, end_date, status, budget, target_audience, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.StartDate, c.EndDate, c.Status, c.Budget, c.TargetAudience, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// DeleteCampaign removes a campaign.
func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "campaign_campaigns", id)
}

// -- Contacts --

// ListContacts returns contacts ordered by name. The query matches name,
// email and location; Kind filters by level.
func (s *Store) ListContacts(ctx context.Context, f Filter) ([]Contact, error) {
	q, args := kindClause(`
		SELECT id, name, email, phone, location, level, created_at
		FROM campaign_contacts`, "level", f.Kind, nil)
	rows, err := s.db.QueryContext(ctx, q+" ORDER BY name", args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.Level, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if matches(f.Query, c.Name, c.Email, c.Location) {
			out = append(out, c)
		}
	}
	return out, rows.Err()
}

// GetContact returns a contact by ID.
func (s *Store) GetContact(ctx context.Context, id string) (*Contact, error) {
	var c Contact
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, location, level, created_at
		FROM campaign_contacts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.Level, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &c, nil
}

// CreateContact validates c, assigns its ID and inserts it.
func (s *Store) CreateContact(ctx context.Context, c *Contact) error {
	if err := c.validate(); err != nil {
		return err
	}
	c.ID = uuid.New().String()
	c.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaign_contacts (id, name, email, phone, location, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.Location, c.Level, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// DeleteContact removes a contact.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "campaign_contacts", id)
}

// -- Events --

// ListEvents returns events in date order. The query matches title and
// location; Kind filters by event type.
func (s *Store) ListEvents(ctx context.Context, f Filter) ([]Event, error) {
	q, args := kindClause(`
		SELECT id, title, date, time, location, type, created_at
		FROM campaign_events`, "type", f.Kind, nil)
	rows, err := s.db.QueryContext(ctx, q+" ORDER BY date, time", args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location, &e.Type, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if matches(f.Query, e.Title, e.Location) {
			out = append(out, e)
		}
	}
	return out, rows.Err()
}

// GetEvent returns an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*Event, error) {
	var e Event
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, date, time, location, type, created_at
		FROM campaign_events WHERE id = ?`, id,
	).Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location, &e.Type, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// CreateEvent validates e, assigns its ID and inserts it.
func (s *Store) CreateEvent(ctx context.Context, e *Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	e.ID = uuid.New().String()
	e.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaign_events (id, title, date, time, location, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Date, e.Time, e.Location, e.Type, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "campaign_events", id)
}

// -- Saved responses --

// SaveResponse stores a generated briefing.
func (s *Store) SaveResponse(ctx context.Context, r *SavedResponse) error {
	if err := r.validate(); err != nil {
		return err
	}
	r.ID = uuid.New().String()
	r.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaign_responses (id, mode, situation, response, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Mode, r.Situation, r.Response, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// ListResponses returns saved briefings, newest first.
func (s *Store) ListResponses(ctx context.Context) ([]SavedResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, situation, response, created_at
		FROM campaign_responses ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	out := []SavedResponse{}
	for rows.Next() {
		var r SavedResponse
		if err := rows.Scan(&r.ID, &r.Mode, &r.Situation, &r.Response, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteResponse removes a saved briefing.
func (s *Store) DeleteResponse(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "campaign_responses", id)
}
