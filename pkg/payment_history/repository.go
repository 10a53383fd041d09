package payment_history

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkas/tripkas/internal/database"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Insert stores rec using q, which is the transaction of the mutation being recorded.
	Insert(ctx context.Context, q database.Querier, rec Record) (Record, error)
	List(ctx context.Context, planId int, filter Filter) ([]Record, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Insert(ctx context.Context, q database.Querier, rec Record) (Record, error) {
	query := `INSERT INTO payment_history (plan_id, contribution_id, participant_id, kind, method,
			  previous_amount, new_amount, change_amount, note, created)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRow(ctx, query,
		rec.PlanId,
		rec.ContributionId,
		rec.ParticipantId,
		rec.Kind,
		rec.Method,
		rec.PreviousAmount,
		rec.NewAmount,
		rec.ChangeAmount,
		rec.Note,
		rec.Created,
	).Scan(&rec.Id)
	if err != nil {
		err := fmt.Errorf("could not insert payment history: %w", err)
		log.Error(err)
		return Record{}, err
	}
	return rec, nil
}

// List returns the plan's records, newest first.
func (r *RepositoryImpl) List(ctx context.Context, planId int, filter Filter) ([]Record, error) {
	conditions := []string{"plan_id = $1"}
	args := []any{planId}
	if filter.ContributionId != nil {
		args = append(args, *filter.ContributionId)
		conditions = append(conditions, fmt.Sprintf("contribution_id = $%d", len(args)))
	}
	if filter.ParticipantId != nil {
		args = append(args, *filter.ParticipantId)
		conditions = append(conditions, fmt.Sprintf("participant_id = $%d", len(args)))
	}
	query := `SELECT id, plan_id, contribution_id, participant_id, kind, method, previous_amount, new_amount,
			  change_amount, note, created
			  FROM payment_history WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY created DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query payment history: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0, 16)
	for rows.Next() {
		var rec Record
		err := rows.Scan(&rec.Id, &rec.PlanId, &rec.ContributionId, &rec.ParticipantId, &rec.Kind, &rec.Method,
			&rec.PreviousAmount, &rec.NewAmount, &rec.ChangeAmount, &rec.Note, &rec.Created)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return records, nil
}
