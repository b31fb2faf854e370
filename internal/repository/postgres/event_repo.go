package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"afisha/internal/domain"
)

const eventColumns = `e.id, e.title, e.annotation, e.description, e.category_id,
		l.id, l.lat, l.lon,
		e.event_date, e.created_on, e.published_on, e.paid, e.participant_limit,
		e.request_moderation, e.state, e.initiator_id`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// Create inserts the location row and the event row in one transaction and
// assigns both ids.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	locQuery := `
		INSERT INTO locations (lat, lon)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, locQuery, e.Location.Lat, e.Location.Lon).Scan(&e.Location.ID); err != nil {
		return err
	}

	eventQuery := `
		INSERT INTO events (title, annotation, description, category_id, location_id,
			event_date, created_on, paid, participant_limit, request_moderation, state, initiator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, eventQuery,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.Location.ID,
		e.EventDate, e.CreatedOn, e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State), e.InitiatorID,
	).Scan(&e.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN locations l ON l.id = e.location_id
		WHERE e.id = $1
	`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN locations l ON l.id = e.location_id
		WHERE e.id = ANY($1)
		ORDER BY e.id
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	locQuery := `UPDATE locations SET lat = $1, lon = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, locQuery, e.Location.Lat, e.Location.Lon, e.Location.ID); err != nil {
		return err
	}

	eventQuery := `
		UPDATE events
		SET title = $1, annotation = $2, description = $3, category_id = $4,
			event_date = $5, published_on = $6, paid = $7, participant_limit = $8,
			request_moderation = $9, state = $10
		WHERE id = $11
	`
	result, err := tx.ExecContext(ctx, eventQuery,
		e.Title, e.Annotation, e.Description, e.CategoryID,
		e.EventDate, e.PublishedOn, e.Paid, e.ParticipantLimit,
		e.RequestModeration, string(e.State), e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PageParams) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN locations l ON l.id = e.location_id
		WHERE e.initiator_id = $1
		ORDER BY e.created_on DESC
	`, eventColumns)
	query += pageClause(page)
	rows, err := r.DB.QueryContext(ctx, query, initiatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) Search(ctx context.Context, params domain.EventSearchParams) ([]*domain.Event, error) {
	where := []string{}
	args := []interface{}{}
	n := 1
	if len(params.States) > 0 {
		states := make([]string, len(params.States))
		for i, s := range params.States {
			states[i] = string(s)
		}
		where = append(where, fmt.Sprintf("e.state = ANY($%d)", n))
		args = append(args, pq.Array(states))
		n++
	}
	if len(params.CategoryIDs) > 0 {
		where = append(where, fmt.Sprintf("e.category_id = ANY($%d)", n))
		args = append(args, pq.Array(params.CategoryIDs))
		n++
	}
	if len(params.InitiatorIDs) > 0 {
		where = append(where, fmt.Sprintf("e.initiator_id = ANY($%d)", n))
		args = append(args, pq.Array(params.InitiatorIDs))
		n++
	}
	if params.RangeStart != nil {
		where = append(where, fmt.Sprintf("e.event_date >= $%d", n))
		args = append(args, *params.RangeStart)
		n++
	}
	if params.RangeEnd != nil {
		where = append(where, fmt.Sprintf("e.event_date <= $%d", n))
		args = append(args, *params.RangeEnd)
		n++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN locations l ON l.id = e.location_id
	`, eventColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.id"
	query += pageClause(params.Page)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func pageClause(page domain.PageParams) string {
	clause := ""
	if limit := page.Limit(); limit >= 0 {
		clause += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset := page.Offset(); offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", offset)
	}
	return clause
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var publishedOn sql.NullTime
	var state string
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID,
		&e.Location.ID, &e.Location.Lat, &e.Location.Lon,
		&e.EventDate, &e.CreatedOn, &publishedOn, &e.Paid, &e.ParticipantLimit,
		&e.RequestModeration, &state, &e.InitiatorID,
	)
	if err != nil {
		return nil, err
	}
	if publishedOn.Valid {
		e.PublishedOn = &publishedOn.Time
	}
	e.State = domain.EventState(state)
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
