package contribution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/database"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// WithTransaction runs fn in one transaction. tx is handed out so audit records can be
	// written in the same transaction as the mutation.
	WithTransaction(ctx context.Context, fn func(repo Repository, tx database.Querier) error) error
	List(ctx context.Context, planId int, filter Filter) ([]Contribution, error)
	// Get locks the row when called inside WithTransaction.
	Get(ctx context.Context, planId int, contributionId int) (Contribution, error)
	Update(ctx context.Context, c Contribution) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) getQueryer() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository, tx database.Querier) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&RepositoryImpl{db: r.db, tx: tx}, tx)
	})
}

const contributionColumns = `id, plan_id, expense_item_id, participant_id, amount, paid, is_paid, max_pay`

func (r *RepositoryImpl) List(ctx context.Context, planId int, filter Filter) ([]Contribution, error) {
	conditions := []string{"plan_id = $1"}
	args := []any{planId}
	if filter.ExpenseItemId != nil {
		args = append(args, *filter.ExpenseItemId)
		conditions = append(conditions, fmt.Sprintf("expense_item_id = $%d", len(args)))
	}
	if filter.ParticipantId != nil {
		args = append(args, *filter.ParticipantId)
		conditions = append(conditions, fmt.Sprintf("participant_id = $%d", len(args)))
	}
	query := `SELECT ` + contributionColumns + ` FROM contribution WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY expense_item_id, participant_id`

	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query contributions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	contributions := make([]Contribution, 0, 32)
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return contributions, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, planId int, contributionId int) (Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contribution WHERE plan_id = $1 AND id = $2`
	if r.tx != nil {
		query += ` FOR UPDATE`
	}
	c, err := scanContribution(r.getQueryer().QueryRow(ctx, query, planId, contributionId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contribution{}, ErrContributionNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get contribution %d: %w", contributionId, err)
		log.Error(err)
		return Contribution{}, err
	}
	return c, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, c Contribution) error {
	result, err := r.getQueryer().Exec(ctx,
		`UPDATE contribution SET amount = $1, paid = $2, is_paid = $3, max_pay = $4 WHERE plan_id = $5 AND id = $6`,
		c.Amount, c.Paid, c.IsPaid, nullDecimal(c.MaxPay), c.PlanId, c.Id)
	if err != nil {
		err := fmt.Errorf("could not update contribution %d: %w", c.Id, err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrContributionNotFound
	}
	return nil
}

func scanContribution(row pgx.Row) (Contribution, error) {
	var c Contribution
	var maxPay decimal.NullDecimal
	err := row.Scan(&c.Id, &c.PlanId, &c.ExpenseItemId, &c.ParticipantId, &c.Amount, &c.Paid, &c.IsPaid, &maxPay)
	if maxPay.Valid {
		c.MaxPay = &maxPay.Decimal
	}
	return c, err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
