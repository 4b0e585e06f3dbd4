package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/models"
)

const returnColumns = `
	id, branch, customer_name, product_code, product_name, category,
	quantity, unit, price_bill, price_sell, amount,
	ref_no, ncr_number, problem_type, root_cause, reason, notes,
	status, condition, disposition,
	disposition_route, seller_name, contact_phone, internal_use_detail,
	claim_company, claim_coordinator, claim_phone,
	date, date_requested, date_received, date_graded, date_documented, date_completed,
	action_reject, action_reject_sort, action_scrap,
	created_at, updated_at`

type ReturnRepository struct {
	DB *pgxpool.Pool
}

func NewReturnRepository(db *pgxpool.Pool) *ReturnRepository {
	return &ReturnRepository{DB: db}
}

func scanReturn(row pgx.Row) (*models.ReturnRecord, error) {
	rec := &models.ReturnRecord{}
	err := row.Scan(
		&rec.ID, &rec.Branch, &rec.CustomerName, &rec.ProductCode, &rec.ProductName, &rec.Category,
		&rec.Quantity, &rec.Unit, &rec.PriceBill, &rec.PriceSell, &rec.Amount,
		&rec.RefNo, &rec.NCRNumber, &rec.ProblemType, &rec.RootCause, &rec.Reason, &rec.Notes,
		&rec.Status, &rec.Condition, &rec.Disposition,
		&rec.DispositionRoute, &rec.SellerName, &rec.ContactPhone, &rec.InternalUseDetail,
		&rec.ClaimCompany, &rec.ClaimCoordinator, &rec.ClaimPhone,
		&rec.Date, &rec.DateRequested, &rec.DateReceived, &rec.DateGraded, &rec.DateDocumented, &rec.DateCompleted,
		&rec.ActionReject, &rec.ActionRejectSort, &rec.ActionScrap,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List retrieves the full return record collection. No ordering beyond
// what the database delivers is guaranteed to callers.
func (r *ReturnRepository) List(ctx context.Context) ([]*models.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM return_records`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list return records", err)
	}
	defer rows.Close()

	var records []*models.ReturnRecord
	for rows.Next() {
		rec, err := scanReturn(rows)
		if err != nil {
			return nil, wrapErr("scan return record", err)
		}
		records = append(records, rec)
	}
	return records, wrapErr("list return records", rows.Err())
}

// ListByStatus filters by workflow status, and additionally by
// disposition when one is given (used by the graded view).
func (r *ReturnRepository) ListByStatus(ctx context.Context, status models.ReturnStatus, disposition models.Disposition) ([]*models.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM return_records WHERE status = $1`
	args := []any{status}
	if disposition != "" {
		query += ` AND disposition = $2`
		args = append(args, disposition)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list return records by status", err)
	}
	defer rows.Close()

	var records []*models.ReturnRecord
	for rows.Next() {
		rec, err := scanReturn(rows)
		if err != nil {
			return nil, wrapErr("scan return record", err)
		}
		records = append(records, rec)
	}
	return records, wrapErr("list return records by status", rows.Err())
}

// Get retrieves a single return record by id.
func (r *ReturnRepository) Get(ctx context.Context, id string) (*models.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM return_records WHERE id = $1`

	rec, err := scanReturn(r.DB.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get return record", err)
	}
	return rec, nil
}

// Insert persists a newly created return record.
func (r *ReturnRepository) Insert(ctx context.Context, rec *models.ReturnRecord) error {
	query := `
		INSERT INTO return_records (
			id, branch, customer_name, product_code, product_name, category,
			quantity, unit, price_bill, price_sell, amount,
			ref_no, ncr_number, problem_type, root_cause, reason, notes,
			status, condition, disposition,
			date, date_requested,
			action_reject, action_reject_sort, action_scrap
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20,
			$21, $22,
			$23, $24, $25
		)
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRow(ctx, query,
		rec.ID, rec.Branch, rec.CustomerName, rec.ProductCode, rec.ProductName, rec.Category,
		rec.Quantity, rec.Unit, rec.PriceBill, rec.PriceSell, rec.Amount,
		rec.RefNo, rec.NCRNumber, rec.ProblemType, rec.RootCause, rec.Reason, rec.Notes,
		rec.Status, rec.Condition, rec.Disposition,
		rec.Date, rec.DateRequested,
		rec.ActionReject, rec.ActionRejectSort, rec.ActionScrap,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	return wrapErr("insert return record", err)
}

// UpdateFields applies a partial update. Columns absent from the field
// map keep their stored value; all named fields are written in one
// statement so other readers never see a half-applied transition.
func (r *ReturnRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	// Deterministic column order keeps the statement stable for the
	// query planner and for logs.
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, fields[col])
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE return_records SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	tag, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr("update return record", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr("update return record", pgx.ErrNoRows)
	}
	return nil
}
