package pipeline

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errCustomerNotFound = apperr.NotFound("Customer not found")
	errStageNotFound    = apperr.Validation("Pipeline stage does not exist")
)

type Repo struct{ DB *pgxpool.Pool }

const selectCustomerStage = `
	SELECT c.id, c.name, c.contact_info, c.notes, cp.pipeline_id, p.section_name
	FROM customers c
	LEFT JOIN customer_pipeline cp ON c.id = cp.customer_id
	LEFT JOIN pipeline p ON cp.pipeline_id = p.id`

func scanCustomerStage(row pgx.Row) (CustomerStage, error) {
	var cs CustomerStage
	err := row.Scan(&cs.ID, &cs.Name, &cs.ContactInfo, &cs.Notes, &cs.PipelineID, &cs.SectionName)
	return cs, err
}

func stageByID(ctx context.Context, q pgx.Tx, id int) (Stage, error) {
	s := Stage{ID: id}
	err := q.QueryRow(ctx, `SELECT section_name FROM pipeline WHERE id=$1`, id).Scan(&s.SectionName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stage{}, errStageNotFound
	}
	return s, err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (r *Repo) ListStages(ctx context.Context) ([]Stage, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, section_name FROM pipeline ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Stage{}
	for rows.Next() {
		var s Stage
		if err := rows.Scan(&s.ID, &s.SectionName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) ListCustomers(ctx context.Context) ([]CustomerStage, error) {
	rows, err := r.DB.Query(ctx, selectCustomerStage+` ORDER BY c.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CustomerStage{}
	for rows.Next() {
		cs, err := scanCustomerStage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *Repo) GetCustomer(ctx context.Context, id int) (CustomerStage, error) {
	cs, err := scanCustomerStage(r.DB.QueryRow(ctx, selectCustomerStage+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return CustomerStage{}, errCustomerNotFound
	}
	return cs, err
}

// CreateCustomer inserts the customer and, when StageID is set, its stage
// assignment in one transaction.
func (r *Repo) CreateCustomer(ctx context.Context, in NewCustomer) (CustomerStage, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return CustomerStage{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stage Stage
	if in.StageID != nil {
		if stage, err = stageByID(ctx, tx, *in.StageID); err != nil {
			return CustomerStage{}, err
		}
	}

	var cs CustomerStage
	err = tx.QueryRow(ctx, `
		INSERT INTO customers (name, contact_info)
		VALUES ($1, $2)
		RETURNING id, name, contact_info, notes
	`, in.Name, in.ContactInfo).Scan(&cs.ID, &cs.Name, &cs.ContactInfo, &cs.Notes)
	if err != nil {
		return CustomerStage{}, err
	}

	if in.StageID != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO customer_pipeline (customer_id, pipeline_id)
			VALUES ($1, $2)`, cs.ID, stage.ID); err != nil {
			if isForeignKeyViolation(err) {
				return CustomerStage{}, errStageNotFound
			}
			return CustomerStage{}, err
		}
		cs.PipelineID = &stage.ID
		cs.SectionName = &stage.SectionName
	}

	if err := tx.Commit(ctx); err != nil {
		return CustomerStage{}, err
	}
	return cs, nil
}

func (r *Repo) UpdateCustomer(ctx context.Context, id int, in CustomerUpdate) (Customer, error) {
	var c Customer
	err := r.DB.QueryRow(ctx, `
		UPDATE customers
		SET name = $1, contact_info = $2, notes = $3
		WHERE id = $4
		RETURNING id, name, contact_info, notes
	`, in.Name, in.ContactInfo, in.Notes, id).Scan(&c.ID, &c.Name, &c.ContactInfo, &c.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, errCustomerNotFound
	}
	return c, err
}

// MoveCustomer replaces the customer's stage assignment. The customer row is
// locked first so concurrent moves of the same customer serialize, and the
// delete and insert commit together.
func (r *Repo) MoveCustomer(ctx context.Context, id, stageID int) (Move, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Move{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked int
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE id=$1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return Move{}, errCustomerNotFound
	}
	if err != nil {
		return Move{}, err
	}

	stage, err := stageByID(ctx, tx, stageID)
	if err != nil {
		return Move{}, err
	}

	var from *int
	err = tx.QueryRow(ctx, `DELETE FROM customer_pipeline WHERE customer_id=$1 RETURNING pipeline_id`, id).Scan(&from)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Move{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO customer_pipeline (customer_id, pipeline_id)
		VALUES ($1, $2)`, id, stage.ID); err != nil {
		if isForeignKeyViolation(err) {
			return Move{}, errStageNotFound
		}
		return Move{}, err
	}

	cs, err := scanCustomerStage(tx.QueryRow(ctx, selectCustomerStage+` WHERE c.id = $1`, id))
	if err != nil {
		return Move{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Move{}, err
	}
	return Move{Customer: cs, Stage: stage, FromStageID: from}, nil
}

// DeleteCustomer removes the customer. Its stage assignment goes with it
// through ON DELETE CASCADE.
func (r *Repo) DeleteCustomer(ctx context.Context, id int) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errCustomerNotFound
	}
	return nil
}

var _ Store = (*Repo)(nil)
