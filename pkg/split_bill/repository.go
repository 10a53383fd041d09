package split_bill

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
	List(ctx context.Context, planId int) ([]SplitBill, error)
	Get(ctx context.Context, planId int, billId int) (SplitBill, error)
	// Create stores the bill with its items and payments.
	Create(ctx context.Context, bill SplitBill) (SplitBill, error)
	// Update rewrites the bill header and replaces its items and payments.
	Update(ctx context.Context, bill SplitBill) error
	Delete(ctx context.Context, planId int, billId int) (bool, error)
	UpdatePayment(ctx context.Context, billId int, payment Payment) error
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

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&RepositoryImpl{db: r.db, tx: tx})
	})
}

const billColumns = `id, plan_id, title, payer_id, tax_percent, service_percent, rounding_increment,
	subtotal, tax, service, raw_total, rounded_total, rounding_diff, created`

func (r *RepositoryImpl) List(ctx context.Context, planId int) ([]SplitBill, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT `+billColumns+` FROM split_bill WHERE plan_id = $1 ORDER BY created DESC, id DESC`, planId)
	if err != nil {
		err := fmt.Errorf("could not query split bills: %w", err)
		log.Error(err)
		return nil, err
	}
	bills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SplitBill, error) {
		return scanBill(row)
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}

	ids := make([]int, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.Id)
	}
	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	payments, err := r.listPayments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].Items = items[bills[i].Id]
		bills[i].Payments = payments[bills[i].Id]
	}
	return bills, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, planId int, billId int) (SplitBill, error) {
	bill, err := scanBill(r.getQueryer().QueryRow(ctx,
		`SELECT `+billColumns+` FROM split_bill WHERE plan_id = $1 AND id = $2`, planId, billId))
	if errors.Is(err, pgx.ErrNoRows) {
		return SplitBill{}, ErrSplitBillNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get split bill %d: %w", billId, err)
		log.Error(err)
		return SplitBill{}, err
	}

	items, err := r.listItems(ctx, []int{billId})
	if err != nil {
		return SplitBill{}, err
	}
	payments, err := r.listPayments(ctx, []int{billId})
	if err != nil {
		return SplitBill{}, err
	}
	bill.Items = items[billId]
	bill.Payments = payments[billId]
	return bill, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, bill SplitBill) (SplitBill, error) {
	query := `INSERT INTO split_bill (plan_id, title, payer_id, tax_percent, service_percent, rounding_increment,
                        subtotal, tax, service, raw_total, rounded_total, rounding_diff)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created`
	err := r.getQueryer().QueryRow(ctx, query,
		bill.PlanId, bill.Title, bill.PayerId, bill.TaxPercent, bill.ServicePercent, bill.RoundingIncrement,
		bill.Subtotal, bill.Tax, bill.Service, bill.RawTotal, bill.RoundedTotal, bill.RoundingDiff,
	).Scan(&bill.Id, &bill.Created)
	if err != nil {
		err := fmt.Errorf("could not create split bill: %w", err)
		log.Error(err)
		return SplitBill{}, err
	}
	if err := r.insertLines(ctx, bill); err != nil {
		return SplitBill{}, err
	}
	return bill, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, bill SplitBill) error {
	query := `UPDATE split_bill SET title = $1, payer_id = $2, tax_percent = $3, service_percent = $4, rounding_increment = $5,
                      subtotal = $6, tax = $7, service = $8, raw_total = $9, rounded_total = $10, rounding_diff = $11
			  WHERE plan_id = $12 AND id = $13`
	result, err := r.getQueryer().Exec(ctx, query,
		bill.Title, bill.PayerId, bill.TaxPercent, bill.ServicePercent, bill.RoundingIncrement,
		bill.Subtotal, bill.Tax, bill.Service, bill.RawTotal, bill.RoundedTotal, bill.RoundingDiff,
		bill.PlanId, bill.Id)
	if err != nil {
		err := fmt.Errorf("could not update split bill %d: %w", bill.Id, err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSplitBillNotFound
	}

	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM split_bill_item WHERE split_bill_id = $1`, bill.Id); err != nil {
		err := fmt.Errorf("could not delete items of split bill %d: %w", bill.Id, err)
		log.Error(err)
		return err
	}
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM split_payment WHERE split_bill_id = $1`, bill.Id); err != nil {
		err := fmt.Errorf("could not delete payments of split bill %d: %w", bill.Id, err)
		log.Error(err)
		return err
	}
	return r.insertLines(ctx, bill)
}

func (r *RepositoryImpl) Delete(ctx context.Context, planId int, billId int) (bool, error) {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM split_bill WHERE plan_id = $1 AND id = $2`, planId, billId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdatePayment(ctx context.Context, billId int, payment Payment) error {
	result, err := r.getQueryer().Exec(ctx,
		`UPDATE split_payment SET paid_amount = $1, is_paid = $2 WHERE split_bill_id = $3 AND participant_id = $4`,
		payment.PaidAmount, payment.IsPaid, billId, payment.ParticipantId)
	if err != nil {
		err := fmt.Errorf("could not update payment of split bill %d: %w", billId, err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *RepositoryImpl) insertLines(ctx context.Context, bill SplitBill) error {
	for position, item := range bill.Items {
		var itemId int
		err := r.getQueryer().QueryRow(ctx,
			`INSERT INTO split_bill_item (split_bill_id, position, name, price, quantity) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			bill.Id, position, item.Name, item.Price, item.Quantity).Scan(&itemId)
		if err != nil {
			err := fmt.Errorf("could not create split bill item: %w", err)
			log.Error(err)
			return err
		}
		for _, participantId := range distinct(item.ParticipantIds) {
			_, err := r.getQueryer().Exec(ctx,
				`INSERT INTO split_bill_item_participant (split_bill_item_id, participant_id) VALUES ($1, $2)`, itemId, participantId)
			if err != nil {
				err := fmt.Errorf("could not link participant %d to split bill item: %w", participantId, err)
				log.Error(err)
				return err
			}
		}
	}

	for _, p := range bill.Payments {
		_, err := r.getQueryer().Exec(ctx,
			`INSERT INTO split_payment (split_bill_id, plan_id, participant_id, subtotal_share, share_amount, paid_amount, is_paid)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			bill.Id, bill.PlanId, p.ParticipantId, p.SubtotalShare, p.ShareAmount, p.PaidAmount, p.IsPaid)
		if err != nil {
			err := fmt.Errorf("could not create split payment: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *RepositoryImpl) listItems(ctx context.Context, billIds []int) (map[int][]Item, error) {
	rows, err := r.getQueryer().Query(ctx, `
		SELECT i.split_bill_id, i.name, i.price, i.quantity,
		       COALESCE(ARRAY(SELECT p.participant_id FROM split_bill_item_participant p
		                      WHERE p.split_bill_item_id = i.id ORDER BY p.participant_id), '{}')
		FROM split_bill_item i
		WHERE i.split_bill_id = ANY($1)
		ORDER BY i.split_bill_id, i.position`, billIds)
	if err != nil {
		err := fmt.Errorf("could not query split bill items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make(map[int][]Item, len(billIds))
	for rows.Next() {
		var billId int
		var item Item
		if err := rows.Scan(&billId, &item.Name, &item.Price, &item.Quantity, &item.ParticipantIds); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		items[billId] = append(items[billId], item)
	}
	return items, rows.Err()
}

func (r *RepositoryImpl) listPayments(ctx context.Context, billIds []int) (map[int][]Payment, error) {
	rows, err := r.getQueryer().Query(ctx, `
		SELECT split_bill_id, participant_id, subtotal_share, share_amount, paid_amount, is_paid
		FROM split_payment
		WHERE split_bill_id = ANY($1)
		ORDER BY split_bill_id, participant_id`, billIds)
	if err != nil {
		err := fmt.Errorf("could not query split payments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	payments := make(map[int][]Payment, len(billIds))
	for rows.Next() {
		var billId int
		var p Payment
		if err := rows.Scan(&billId, &p.ParticipantId, &p.SubtotalShare, &p.ShareAmount, &p.PaidAmount, &p.IsPaid); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		payments[billId] = append(payments[billId], p)
	}
	return payments, rows.Err()
}

func scanBill(row pgx.Row) (SplitBill, error) {
	var b SplitBill
	err := row.Scan(&b.Id, &b.PlanId, &b.Title, &b.PayerId, &b.TaxPercent, &b.ServicePercent, &b.RoundingIncrement,
		&b.Subtotal, &b.Tax, &b.Service, &b.RawTotal, &b.RoundedTotal, &b.RoundingDiff, &b.Created)
	return b, err
}
