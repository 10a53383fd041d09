package rundown

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	List(ctx context.Context, planId int) ([]Entry, error)
	Get(ctx context.Context, planId int, entryId int) (Entry, error)
	Create(ctx context.Context, entry Entry) (Entry, error)
	// Update leaves the calendar event id untouched.
	Update(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, planId int, entryId int) (bool, error)
	SetCalendarEventId(ctx context.Context, planId int, entryId int, eventId string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const entryColumns = `id, plan_id, day, start_time, end_time, title, location, notes, calendar_event_id`

func (r *RepositoryImpl) List(ctx context.Context, planId int) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM rundown WHERE plan_id = $1 ORDER BY day, start_time, id`, planId)
	if err != nil {
		err := fmt.Errorf("could not query rundown: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, 16)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, planId int, entryId int) (Entry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM rundown WHERE plan_id = $1 AND id = $2`, planId, entryId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get rundown entry %d: %w", entryId, err)
		log.Error(err)
		return Entry{}, err
	}
	return entry, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, e Entry) (Entry, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO rundown (plan_id, day, start_time, end_time, title, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		e.PlanId, e.Day, e.StartTime, e.EndTime, e.Title, e.Location, e.Notes).Scan(&e.Id)
	if err != nil {
		err := fmt.Errorf("could not create rundown entry: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return e, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, e Entry) (Entry, error) {
	err := r.db.QueryRow(ctx, `UPDATE rundown SET day = $1, start_time = $2, end_time = $3, title = $4, location = $5, notes = $6
		WHERE plan_id = $7 AND id = $8 RETURNING calendar_event_id`,
		e.Day, e.StartTime, e.EndTime, e.Title, e.Location, e.Notes, e.PlanId, e.Id).Scan(&e.CalendarEventId)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not update rundown entry %d: %w", e.Id, err)
		log.Error(err)
		return Entry{}, err
	}
	return e, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, planId int, entryId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM rundown WHERE plan_id = $1 AND id = $2`, planId, entryId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) SetCalendarEventId(ctx context.Context, planId int, entryId int, eventId string) error {
	_, err := r.db.Exec(ctx, `UPDATE rundown SET calendar_event_id = $1 WHERE plan_id = $2 AND id = $3`, eventId, planId, entryId)
	if err != nil {
		err := fmt.Errorf("could not store calendar event of rundown entry %d: %w", entryId, err)
		log.Error(err)
		return err
	}
	return nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.Id, &e.PlanId, &e.Day, &e.StartTime, &e.EndTime, &e.Title, &e.Location, &e.Notes, &e.CalendarEventId)
	return e, err
}
