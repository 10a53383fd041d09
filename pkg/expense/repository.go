package expense

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
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	ListCategories(ctx context.Context, planId int) ([]Category, error)
	GetCategory(ctx context.Context, planId int, categoryId int) (Category, error)
	CreateCategory(ctx context.Context, category Category) (Category, error)
	DeleteCategory(ctx context.Context, planId int, categoryId int) (bool, error)
	ListItems(ctx context.Context, planId int) ([]Item, error)
	GetItem(ctx context.Context, planId int, itemId int) (Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, planId int, itemId int) (bool, error)
	listShares(ctx context.Context, itemId int) ([]share, error)
	insertShare(ctx context.Context, planId int, itemId int, s share) error
	updateShare(ctx context.Context, s share) error
	deleteShares(ctx context.Context, ids []int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// getQueryer returns the transaction when running inside WithTransaction.
func (r *RepositoryImpl) getQueryer() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&RepositoryImpl{db: r.db, tx: tx})
	})
}

func (r *RepositoryImpl) ListCategories(ctx context.Context, planId int) ([]Category, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT id, plan_id, name FROM expense_category WHERE plan_id = $1 ORDER BY name, id`, planId)
	if err != nil {
		err := fmt.Errorf("could not query expense categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0, 8)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Id, &c.PlanId, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *RepositoryImpl) GetCategory(ctx context.Context, planId int, categoryId int) (Category, error) {
	var c Category
	err := r.getQueryer().QueryRow(ctx, `SELECT id, plan_id, name FROM expense_category WHERE plan_id = $1 AND id = $2`,
		planId, categoryId).Scan(&c.Id, &c.PlanId, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("could not get expense category %d: %w", categoryId, err)
	}
	return c, nil
}

func (r *RepositoryImpl) CreateCategory(ctx context.Context, c Category) (Category, error) {
	err := r.getQueryer().QueryRow(ctx, `INSERT INTO expense_category (plan_id, name) VALUES ($1, $2) RETURNING id`,
		c.PlanId, c.Name).Scan(&c.Id)
	if err != nil {
		err := fmt.Errorf("could not create expense category: %w", err)
		log.Error(err)
		return Category{}, err
	}
	return c, nil
}

// DeleteCategory removes the category. Items keep existing without a category.
func (r *RepositoryImpl) DeleteCategory(ctx context.Context, planId int, categoryId int) (bool, error) {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM expense_category WHERE plan_id = $1 AND id = $2`, planId, categoryId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

const itemColumns = `i.id, i.plan_id, i.category_id, i.name, i.price, i.quantity, i.total, i.collector_id,
	COALESCE(ARRAY(SELECT c.participant_id FROM contribution c WHERE c.expense_item_id = i.id ORDER BY c.participant_id), '{}')`

func (r *RepositoryImpl) ListItems(ctx context.Context, planId int) ([]Item, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT `+itemColumns+` FROM expense_item i WHERE i.plan_id = $1 ORDER BY i.id`, planId)
	if err != nil {
		err := fmt.Errorf("could not query expense items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0, 16)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *RepositoryImpl) GetItem(ctx context.Context, planId int, itemId int) (Item, error) {
	item, err := scanItem(r.getQueryer().QueryRow(ctx,
		`SELECT `+itemColumns+` FROM expense_item i WHERE i.plan_id = $1 AND i.id = $2`, planId, itemId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrExpenseItemNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get expense item %d: %w", itemId, err)
		log.Error(err)
		return Item{}, err
	}
	return item, nil
}

func (r *RepositoryImpl) CreateItem(ctx context.Context, item Item) (Item, error) {
	query := `INSERT INTO expense_item (plan_id, category_id, name, price, quantity, total, collector_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.getQueryer().QueryRow(ctx, query,
		item.PlanId, item.CategoryId, item.Name, item.Price, item.Quantity, item.Total, item.CollectorId,
	).Scan(&item.Id)
	if err != nil {
		err := fmt.Errorf("could not create expense item: %w", err)
		log.Error(err)
		return Item{}, err
	}
	return item, nil
}

func (r *RepositoryImpl) UpdateItem(ctx context.Context, item Item) error {
	query := `UPDATE expense_item SET category_id = $1, name = $2, price = $3, quantity = $4, total = $5, collector_id = $6
			  WHERE plan_id = $7 AND id = $8`
	result, err := r.getQueryer().Exec(ctx, query,
		item.CategoryId, item.Name, item.Price, item.Quantity, item.Total, item.CollectorId, item.PlanId, item.Id)
	if err != nil {
		err := fmt.Errorf("could not update expense item %d: %w", item.Id, err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrExpenseItemNotFound
	}
	return nil
}

// DeleteItem removes the item together with its contributions.
func (r *RepositoryImpl) DeleteItem(ctx context.Context, planId int, itemId int) (bool, error) {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM expense_item WHERE plan_id = $1 AND id = $2`, planId, itemId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) listShares(ctx context.Context, itemId int) ([]share, error) {
	rows, err := r.getQueryer().Query(ctx,
		`SELECT id, participant_id, amount, paid FROM contribution WHERE expense_item_id = $1 ORDER BY participant_id FOR UPDATE`, itemId)
	if err != nil {
		return nil, fmt.Errorf("could not query contributions of item %d: %w", itemId, err)
	}
	defer rows.Close()

	shares := make([]share, 0, 8)
	for rows.Next() {
		var s share
		if err := rows.Scan(&s.Id, &s.ParticipantId, &s.Amount, &s.Paid); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func (r *RepositoryImpl) insertShare(ctx context.Context, planId int, itemId int, s share) error {
	_, err := r.getQueryer().Exec(ctx,
		`INSERT INTO contribution (plan_id, expense_item_id, participant_id, amount, paid, is_paid) VALUES ($1, $2, $3, $4, $5, $6)`,
		planId, itemId, s.ParticipantId, s.Amount, s.Paid, s.Paid.GreaterThanOrEqual(s.Amount))
	if err != nil {
		err := fmt.Errorf("could not create contribution: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) updateShare(ctx context.Context, s share) error {
	_, err := r.getQueryer().Exec(ctx, `UPDATE contribution SET amount = $1, is_paid = $2 WHERE id = $3`,
		s.Amount, s.Paid.GreaterThanOrEqual(s.Amount), s.Id)
	if err != nil {
		err := fmt.Errorf("could not update contribution %d: %w", s.Id, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) deleteShares(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM contribution WHERE id = ANY($1)`, ids); err != nil {
		err := fmt.Errorf("could not delete contributions: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.Id, &item.PlanId, &item.CategoryId, &item.Name, &item.Price, &item.Quantity, &item.Total,
		&item.CollectorId, &item.ParticipantIds)
	return item, err
}
