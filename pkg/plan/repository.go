package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	CreatePlan(ctx context.Context, plan Plan, passwordHash *string) (Plan, error)
	GetPlan(ctx context.Context, planId int) (Plan, error)
	GetPlanBySlug(ctx context.Context, slug string) (Plan, error)
	GetPasswordHash(ctx context.Context, planId int) (string, error)
	ListPlans(ctx context.Context, userId int) ([]Plan, error)
	CountOwnedPlans(ctx context.Context, userId int) (int, error)
	UpdatePlan(ctx context.Context, plan Plan) (Plan, error)
	UpdateSharing(ctx context.Context, planId int, isPublic bool, passwordHash *string) (Plan, error)
	DeletePlan(ctx context.Context, planId int) (bool, error)
	GetCollaborator(ctx context.Context, planId int, userId int) (Collaborator, error)
	ListCollaborators(ctx context.Context, planId int) ([]Collaborator, error)
	StoreCollaborator(ctx context.Context, collaborator Collaborator) error
	DeleteCollaborator(ctx context.Context, planId int, userId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const planColumns = `p.id, p.owner_id, p.title, p.destination, p.start_date, p.end_date, p.is_public,
	p.share_slug::text, p.password_hash IS NOT NULL, p.created`

func (r *RepositoryImpl) CreatePlan(ctx context.Context, plan Plan, passwordHash *string) (Plan, error) {
	query := `INSERT INTO holiday_plan AS p (owner_id, title, destination, start_date, end_date, is_public, share_slug, password_hash)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING ` + planColumns
	created, err := scanPlan(r.db.QueryRow(ctx, query,
		plan.OwnerId,
		plan.Title,
		plan.Destination,
		plan.StartDate,
		plan.EndDate,
		plan.IsPublic,
		plan.ShareSlug,
		passwordHash,
	))
	if err != nil {
		err := fmt.Errorf("could not create plan: %w", err)
		log.Error(err)
		return Plan{}, err
	}
	return created, nil
}

func (r *RepositoryImpl) GetPlan(ctx context.Context, planId int) (Plan, error) {
	query := `SELECT ` + planColumns + ` FROM holiday_plan p WHERE p.id = $1`
	plan, err := scanPlan(r.db.QueryRow(ctx, query, planId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get plan %d: %w", planId, err)
		log.Error(err)
		return Plan{}, err
	}
	return plan, nil
}

func (r *RepositoryImpl) GetPlanBySlug(ctx context.Context, slug string) (Plan, error) {
	query := `SELECT ` + planColumns + ` FROM holiday_plan p WHERE p.share_slug::text = $1`
	plan, err := scanPlan(r.db.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get plan by slug: %w", err)
		log.Error(err)
		return Plan{}, err
	}
	return plan, nil
}

func (r *RepositoryImpl) GetPasswordHash(ctx context.Context, planId int) (string, error) {
	var hash *string
	err := r.db.QueryRow(ctx, `SELECT password_hash FROM holiday_plan WHERE id = $1`, planId).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrPlanNotFound
	}
	if err != nil {
		return "", fmt.Errorf("could not get password hash of plan %d: %w", planId, err)
	}
	if hash == nil {
		return "", nil
	}
	return *hash, nil
}

// ListPlans returns the plans the user owns or collaborates on, newest first.
func (r *RepositoryImpl) ListPlans(ctx context.Context, userId int) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM holiday_plan p
			  WHERE p.owner_id = $1
			     OR EXISTS (SELECT 1 FROM plan_collaborator c WHERE c.plan_id = p.id AND c.user_id = $1)
			  ORDER BY p.created DESC, p.id DESC`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query plans: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	plans := make([]Plan, 0, 8)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return plans, nil
}

func (r *RepositoryImpl) CountOwnedPlans(ctx context.Context, userId int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM holiday_plan WHERE owner_id = $1`, userId).Scan(&count)
	if err != nil {
		err := fmt.Errorf("could not count plans: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) UpdatePlan(ctx context.Context, plan Plan) (Plan, error) {
	query := `UPDATE holiday_plan AS p SET title = $1, destination = $2, start_date = $3, end_date = $4
			  WHERE p.id = $5 RETURNING ` + planColumns
	updated, err := scanPlan(r.db.QueryRow(ctx, query, plan.Title, plan.Destination, plan.StartDate, plan.EndDate, plan.Id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not update plan %d: %w", plan.Id, err)
		log.Error(err)
		return Plan{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) UpdateSharing(ctx context.Context, planId int, isPublic bool, passwordHash *string) (Plan, error) {
	query := `UPDATE holiday_plan AS p SET is_public = $1, password_hash = $2 WHERE p.id = $3 RETURNING ` + planColumns
	updated, err := scanPlan(r.db.QueryRow(ctx, query, isPublic, passwordHash, planId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not update sharing of plan %d: %w", planId, err)
		log.Error(err)
		return Plan{}, err
	}
	return updated, nil
}

// DeletePlan removes the plan. Every dependent row goes with it through ON DELETE CASCADE.
func (r *RepositoryImpl) DeletePlan(ctx context.Context, planId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM holiday_plan WHERE id = $1`, planId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) GetCollaborator(ctx context.Context, planId int, userId int) (Collaborator, error) {
	c := Collaborator{PlanId: planId, UserId: userId}
	err := r.db.QueryRow(ctx, `SELECT role FROM plan_collaborator WHERE plan_id = $1 AND user_id = $2`, planId, userId).
		Scan(&c.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return Collaborator{}, ErrCollaboratorNotFound
	}
	if err != nil {
		return Collaborator{}, fmt.Errorf("could not get collaborator: %w", err)
	}
	return c, nil
}

func (r *RepositoryImpl) ListCollaborators(ctx context.Context, planId int) ([]Collaborator, error) {
	rows, err := r.db.Query(ctx, `SELECT plan_id, user_id, role FROM plan_collaborator WHERE plan_id = $1 ORDER BY user_id`, planId)
	if err != nil {
		err := fmt.Errorf("could not query collaborators: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	collaborators := make([]Collaborator, 0, 4)
	for rows.Next() {
		var c Collaborator
		if err := rows.Scan(&c.PlanId, &c.UserId, &c.Role); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		collaborators = append(collaborators, c)
	}
	return collaborators, rows.Err()
}

func (r *RepositoryImpl) StoreCollaborator(ctx context.Context, c Collaborator) error {
	query := `INSERT INTO plan_collaborator (plan_id, user_id, role) VALUES ($1, $2, $3)
			  ON CONFLICT (plan_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	if _, err := r.db.Exec(ctx, query, c.PlanId, c.UserId, c.Role); err != nil {
		err := fmt.Errorf("could not store collaborator: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteCollaborator(ctx context.Context, planId int, userId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM plan_collaborator WHERE plan_id = $1 AND user_id = $2`, planId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func scanPlan(row pgx.Row) (Plan, error) {
	var p Plan
	err := row.Scan(&p.Id, &p.OwnerId, &p.Title, &p.Destination, &p.StartDate, &p.EndDate, &p.IsPublic,
		&p.ShareSlug, &p.HasPassword, &p.Created)
	return p, err
}
