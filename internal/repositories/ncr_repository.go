package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"returns-backend/internal/models"
)

const ncrColumns = `
	id, ncr_no, date, to_dept, copy_to, founder, po_no,
	item, problem, problem_detail, action, cause,
	qa_accept, qa_reject, qa_reason, status,
	created_at, updated_at`

type NCRRepository struct {
	DB *pgxpool.Pool
}

func NewNCRRepository(db *pgxpool.Pool) *NCRRepository {
	return &NCRRepository{DB: db}
}

// legacyNCRItem is the flattened camelCase shape written by the old
// tracker. Rows still carrying it are normalized once, on read.
type legacyNCRItem struct {
	Branch              string          `json:"branch"`
	RefNo               string          `json:"refNo"`
	NeoRefNo            string          `json:"neoRefNo"`
	ProductCode         string          `json:"productCode"`
	ProductName         string          `json:"productName"`
	Customer            string          `json:"customer"`
	DestinationCustomer string          `json:"destinationCustomer"`
	Quantity            int             `json:"quantity"`
	Unit                string          `json:"unit"`
	PriceBill           decimal.Decimal `json:"priceBill"`
	ExpiryDate          string          `json:"expiryDate"`
	CostBill            decimal.Decimal `json:"costBill"`
	CostReal            decimal.Decimal `json:"costReal"`
	ProblemSource       string          `json:"problemSource"`
}

// normalizeItem decodes an item document in either the canonical
// snake_case shape or the legacy flattened camelCase shape. Business
// logic above this point only ever sees the canonical NCRItem.
// Detection keys on camelCase-only markers; shared keys like "customer"
// appear in both shapes and say nothing about which one this is.
func normalizeItem(raw []byte, item *models.NCRItem) error {
	if len(raw) == 0 {
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return err
	}
	_, hasProductCode := keys["productCode"]
	_, hasRefNo := keys["refNo"]
	if !hasProductCode && !hasRefNo {
		return json.Unmarshal(raw, item)
	}

	var legacy legacyNCRItem
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return err
	}
	*item = models.NCRItem{
		Branch:              legacy.Branch,
		RefNo:               legacy.RefNo,
		NeoRefNo:            legacy.NeoRefNo,
		ProductCode:         legacy.ProductCode,
		ProductName:         legacy.ProductName,
		Customer:            legacy.Customer,
		DestinationCustomer: legacy.DestinationCustomer,
		Quantity:            legacy.Quantity,
		Unit:                legacy.Unit,
		PriceBill:           legacy.PriceBill,
		ExpiryDate:          legacy.ExpiryDate,
		CostBill:            legacy.CostBill,
		CostReal:            legacy.CostReal,
		ProblemSource:       legacy.ProblemSource,
	}
	return nil
}

func scanNCR(row pgx.Row) (*models.NCRReport, error) {
	rep := &models.NCRReport{}
	var itemRaw, problemRaw, actionRaw, causeRaw []byte

	err := row.Scan(
		&rep.ID, &rep.NCRNo, &rep.Date, &rep.ToDept, &rep.CopyTo, &rep.Founder, &rep.PONo,
		&itemRaw, &problemRaw, &rep.ProblemDetail, &actionRaw, &causeRaw,
		&rep.QAAccept, &rep.QAReject, &rep.QAReason, &rep.Status,
		&rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := normalizeItem(itemRaw, &rep.Item); err != nil {
		return nil, fmt.Errorf("decode ncr item: %w", err)
	}
	if len(problemRaw) > 0 {
		if err := json.Unmarshal(problemRaw, &rep.Problem); err != nil {
			return nil, fmt.Errorf("decode ncr problem flags: %w", err)
		}
	}
	if len(actionRaw) > 0 {
		if err := json.Unmarshal(actionRaw, &rep.Action); err != nil {
			return nil, fmt.Errorf("decode ncr action flags: %w", err)
		}
	}
	if len(causeRaw) > 0 {
		if err := json.Unmarshal(causeRaw, &rep.Cause); err != nil {
			return nil, fmt.Errorf("decode ncr cause flags: %w", err)
		}
	}
	return rep, nil
}

// List retrieves all NCR reports.
func (r *NCRRepository) List(ctx context.Context) ([]*models.NCRReport, error) {
	query := `SELECT ` + ncrColumns + ` FROM ncr_reports`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list ncr reports", err)
	}
	defer rows.Close()

	var reports []*models.NCRReport
	for rows.Next() {
		rep, err := scanNCR(rows)
		if err != nil {
			return nil, wrapErr("scan ncr report", err)
		}
		reports = append(reports, rep)
	}
	return reports, wrapErr("list ncr reports", rows.Err())
}

// Get retrieves one NCR report by id.
func (r *NCRRepository) Get(ctx context.Context, id string) (*models.NCRReport, error) {
	query := `SELECT ` + ncrColumns + ` FROM ncr_reports WHERE id = $1`

	rep, err := scanNCR(r.DB.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get ncr report", err)
	}
	return rep, nil
}

// Insert persists a new NCR report.
func (r *NCRRepository) Insert(ctx context.Context, rep *models.NCRReport) error {
	itemRaw, err := json.Marshal(rep.Item)
	if err != nil {
		return fmt.Errorf("encode ncr item: %w", err)
	}
	problemRaw, err := json.Marshal(rep.Problem)
	if err != nil {
		return fmt.Errorf("encode ncr problem flags: %w", err)
	}
	actionRaw, err := json.Marshal(rep.Action)
	if err != nil {
		return fmt.Errorf("encode ncr action flags: %w", err)
	}
	causeRaw, err := json.Marshal(rep.Cause)
	if err != nil {
		return fmt.Errorf("encode ncr cause flags: %w", err)
	}

	query := `
		INSERT INTO ncr_reports (
			id, ncr_no, date, to_dept, copy_to, founder, po_no,
			item, problem, problem_detail, action, cause,
			qa_accept, qa_reject, qa_reason, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16
		)
		RETURNING created_at, updated_at
	`

	err = r.DB.QueryRow(ctx, query,
		rep.ID, rep.NCRNo, rep.Date, rep.ToDept, rep.CopyTo, rep.Founder, rep.PONo,
		itemRaw, problemRaw, rep.ProblemDetail, actionRaw, causeRaw,
		rep.QAAccept, rep.QAReject, rep.QAReason, rep.Status,
	).Scan(&rep.CreatedAt, &rep.UpdatedAt)
	return wrapErr("insert ncr report", err)
}

// UpdateFields merges a partial field set into the stored report.
// JSONB group values must already be marshaled by the caller.
func (r *NCRRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

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
		"UPDATE ncr_reports SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	tag, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr("update ncr report", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr("update ncr report", pgx.ErrNoRows)
	}
	return nil
}

// Delete hard-removes an NCR report. Irreversible.
func (r *NCRRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM ncr_reports WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete ncr report", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr("delete ncr report", pgx.ErrNoRows)
	}
	return nil
}
