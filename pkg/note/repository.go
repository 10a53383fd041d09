package note

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	List(ctx context.Context, planId int) ([]Note, error)
	Create(ctx context.Context, note Note) (Note, error)
	Update(ctx context.Context, note Note) (Note, error)
	Delete(ctx context.Context, planId int, noteId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context, planId int) ([]Note, error) {
	rows, err := r.db.Query(ctx, `SELECT id, plan_id, title, content, updated FROM note WHERE plan_id = $1 ORDER BY updated DESC, id DESC`, planId)
	if err != nil {
		err := fmt.Errorf("could not query notes: %w", err)
		log.Error(err)
		return nil, err
	}
	notes, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Note])
	if err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}
	return notes, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, n Note) (Note, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO note (plan_id, title, content, updated) VALUES ($1, $2, $3, $4) RETURNING id`,
		n.PlanId, n.Title, n.Content, n.Updated).Scan(&n.Id)
	if err != nil {
		err := fmt.Errorf("could not create note: %w", err)
		log.Error(err)
		return Note{}, err
	}
	return n, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, n Note) (Note, error) {
	tag, err := r.db.Exec(ctx, `UPDATE note SET title = $1, content = $2, updated = $3 WHERE plan_id = $4 AND id = $5`,
		n.Title, n.Content, n.Updated, n.PlanId, n.Id)
	if err != nil {
		err := fmt.Errorf("could not update note %d: %w", n.Id, err)
		log.Error(err)
		return Note{}, err
	}
	if tag.RowsAffected() == 0 {
		return Note{}, ErrNoteNotFound
	}
	return n, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, planId int, noteId int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM note WHERE plan_id = $1 AND id = $2`, planId, noteId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

