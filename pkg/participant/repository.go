package participant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkas/tripkas/internal/database"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListParticipants(ctx context.Context, planId int) ([]Participant, error)
	GetParticipant(ctx context.Context, planId int, participantId int) (Participant, error)
	CreateParticipant(ctx context.Context, participant Participant) (Participant, error)
	UpdateParticipant(ctx context.Context, participant Participant) (Participant, error)
	DeleteParticipant(ctx context.Context, planId int, participantId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListParticipants(ctx context.Context, planId int) ([]Participant, error) {
	rows, err := r.db.Query(ctx, `SELECT id, plan_id, name, user_id FROM participant WHERE plan_id = $1 ORDER BY id`, planId)
	if err != nil {
		err := fmt.Errorf("could not query participants: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	participants := make([]Participant, 0, 8)
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.Id, &p.PlanId, &p.Name, &p.UserId); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return participants, nil
}

func (r *RepositoryImpl) GetParticipant(ctx context.Context, planId int, participantId int) (Participant, error) {
	var p Participant
	err := r.db.QueryRow(ctx, `SELECT id, plan_id, name, user_id FROM participant WHERE plan_id = $1 AND id = $2`,
		planId, participantId).Scan(&p.Id, &p.PlanId, &p.Name, &p.UserId)
	if errors.Is(err, pgx.ErrNoRows) {
		return Participant{}, ErrParticipantNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get participant %d: %w", participantId, err)
		log.Error(err)
		return Participant{}, err
	}
	return p, nil
}

func (r *RepositoryImpl) CreateParticipant(ctx context.Context, p Participant) (Participant, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO participant (plan_id, name, user_id) VALUES ($1, $2, $3) RETURNING id`,
		p.PlanId, p.Name, p.UserId).Scan(&p.Id)
	if err != nil {
		err := fmt.Errorf("could not create participant: %w", err)
		log.Error(err)
		return Participant{}, err
	}
	return p, nil
}

func (r *RepositoryImpl) UpdateParticipant(ctx context.Context, p Participant) (Participant, error) {
	result, err := r.db.Exec(ctx, `UPDATE participant SET name = $1, user_id = $2 WHERE plan_id = $3 AND id = $4`,
		p.Name, p.UserId, p.PlanId, p.Id)
	if err != nil {
		err := fmt.Errorf("could not update participant %d: %w", p.Id, err)
		log.Error(err)
		return Participant{}, err
	}
	if result.RowsAffected() == 0 {
		return Participant{}, ErrParticipantNotFound
	}
	return p, nil
}

// DeleteParticipant removes the participant with their contributions and split bill shares.
// Collectors and split bill payers are protected by foreign keys and reported as ErrParticipantInUse.
func (r *RepositoryImpl) DeleteParticipant(ctx context.Context, planId int, participantId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM participant WHERE plan_id = $1 AND id = $2`, planId, participantId)
	if database.IsForeignKeyViolation(err) {
		return false, ErrParticipantInUse
	}
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
