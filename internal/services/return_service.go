package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
	"returns-backend/internal/timeutil"
)

// vatRate is the Thai standard VAT applied when a document batch is
// flagged as VAT-inclusive.
var vatRate = decimal.RequireFromString("0.07")

const returnsCollection = "returns"

// ReturnService drives return records through the workflow
// Requested -> Received -> Graded -> Documented -> Completed. Every
// transition stamps its stage date (ICT calendar date) exactly once.
type ReturnService struct {
	Returns  store.ReturnStore
	Notifier Notifier

	now func() time.Time
}

func NewReturnService(returns store.ReturnStore, notifier Notifier) *ReturnService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ReturnService{
		Returns:  returns,
		Notifier: notifier,
		now:      timeutil.Now,
	}
}

func (s *ReturnService) today() string {
	return s.now().In(timeutil.ICT).Format(timeutil.DateLayout)
}

// newReturnID builds a record id like RT-2026-04821. Uniqueness is
// enforced by the store's primary key; a collision surfaces as an
// insert error and the caller retries the submission.
func (s *ReturnService) newReturnID() string {
	return fmt.Sprintf("RT-%d-%05d", s.now().Year(), rand.Intn(100000))
}

// Create registers a new return request. Amount is fixed here as
// quantity x priceBill and never recomputed, so later price changes
// cannot alter historical records.
func (s *ReturnService) Create(ctx context.Context, req *models.CreateReturnRequest) (*models.ReturnRecord, error) {
	if req.Branch == "" {
		return nil, validationErrorf("branch is required")
	}
	if req.RefNo == "" {
		return nil, validationErrorf("ref_no is required")
	}
	if req.CustomerName == "" {
		return nil, validationErrorf("customer_name is required")
	}
	if req.ProductCode == "" {
		return nil, validationErrorf("product_code is required")
	}
	if req.ProductName == "" {
		return nil, validationErrorf("product_name is required")
	}
	if req.Quantity <= 0 {
		return nil, validationErrorf("quantity must be positive")
	}
	if req.PriceBill.IsNegative() {
		return nil, validationErrorf("price_bill must not be negative")
	}

	date := req.Date
	if date == "" {
		date = s.today()
	} else if _, err := timeutil.ParseInICT(timeutil.DateLayout, date); err != nil {
		return nil, validationErrorf("date must be YYYY-MM-DD, got %q", req.Date)
	}

	rec := &models.ReturnRecord{
		ID:           s.newReturnID(),
		Branch:       req.Branch,
		CustomerName: req.CustomerName,
		ProductCode:  req.ProductCode,
		ProductName:  req.ProductName,
		Category:     req.Category,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		PriceBill:    req.PriceBill,
		PriceSell:    req.PriceSell,
		Amount:       req.PriceBill.Mul(decimal.NewFromInt(int64(req.Quantity))),
		RefNo:        req.RefNo,
		NCRNumber:    req.NCRNumber,
		ProblemType:  req.ProblemType,
		RootCause:    req.RootCause,
		Reason:       req.Reason,
		Notes:        req.Notes,

		Status:      models.StatusRequested,
		Condition:   models.ConditionUnknown,
		Disposition: models.DispositionPending,

		Date:          date,
		DateRequested: date,

		ActionReject:     req.ActionReject,
		ActionRejectSort: req.ActionRejectSort,
		ActionScrap:      req.ActionScrap,
	}

	if err := s.Returns.Insert(ctx, rec); err != nil {
		return nil, err
	}

	log.Printf("[Returns] Created %s (%s, qty %d)", rec.ID, rec.Branch, rec.Quantity)
	s.Notifier.Publish(returnsCollection)
	return rec, nil
}

// Receive marks a requested item as physically arrived at the warehouse.
func (s *ReturnService) Receive(ctx context.Context, id string) (*models.ReturnRecord, error) {
	rec, err := s.Returns.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusRequested {
		return nil, validationErrorf("return %s is %s, only requested items can be received", id, rec.Status)
	}

	today := s.today()
	err = s.Returns.UpdateFields(ctx, id, map[string]any{
		"status":        models.StatusReceived,
		"date_received": today,
	})
	if err != nil {
		return nil, err
	}

	rec.Status = models.StatusReceived
	rec.DateReceived = &today
	s.Notifier.Publish(returnsCollection)
	return rec, nil
}

// Grade records the QC inspection outcome. The transition is refused
// until a meaningful condition and a decided disposition are supplied;
// route metadata for dispositions other than the chosen one is cleared
// so a re-grade never leaks stale contact details.
func (s *ReturnService) Grade(ctx context.Context, id string, req *models.GradeReturnRequest) (*models.ReturnRecord, error) {
	rec, err := s.Returns.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusReceived {
		return nil, validationErrorf("return %s is %s, only received items can be graded", id, rec.Status)
	}
	if !req.Condition.Known() {
		return nil, validationErrorf("condition must be set before grading")
	}
	if !req.Disposition.Valid() || req.Disposition == models.DispositionPending {
		return nil, validationErrorf("disposition must be decided before grading, got %q", req.Disposition)
	}

	today := s.today()
	fields := map[string]any{
		"status":      models.StatusGraded,
		"condition":   req.Condition,
		"disposition": req.Disposition,
		"date_graded": today,

		"disposition_route":   "",
		"seller_name":         "",
		"contact_phone":       "",
		"internal_use_detail": "",
		"claim_company":       "",
		"claim_coordinator":   "",
		"claim_phone":         "",
	}
	if req.Notes != "" {
		fields["notes"] = req.Notes
	}

	switch req.Disposition {
	case models.DispositionRTV:
		if req.DispositionRoute == "" {
			return nil, validationErrorf("rtv disposition requires disposition_route")
		}
		fields["disposition_route"] = req.DispositionRoute
	case models.DispositionRestock:
		// Seller contact is recommended, not required.
		fields["seller_name"] = req.SellerName
		fields["contact_phone"] = req.ContactPhone
	case models.DispositionInternalUse:
		if req.InternalUseDetail == "" {
			return nil, validationErrorf("internal_use disposition requires internal_use_detail")
		}
		fields["internal_use_detail"] = req.InternalUseDetail
	case models.DispositionClaim:
		if req.ClaimCompany == "" {
			return nil, validationErrorf("claim disposition requires claim_company")
		}
		fields["claim_company"] = req.ClaimCompany
		fields["claim_coordinator"] = req.ClaimCoordinator
		fields["claim_phone"] = req.ClaimPhone
	}

	if err := s.Returns.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	log.Printf("[Returns] Graded %s as %s/%s", id, req.Condition, req.Disposition)
	s.Notifier.Publish(returnsCollection)
	return s.Returns.Get(ctx, id)
}

// DocumentBatch moves a set of graded records sharing one disposition to
// Documented and computes the document totals. Validation covers the
// whole batch up front; persistence is then per record, so a failure on
// one record does not roll back earlier ones. The result reports how
// many records committed and which ids failed.
func (s *ReturnService) DocumentBatch(ctx context.Context, req *models.DocumentBatchRequest) (*models.DocumentBatchResult, error) {
	if len(req.IDs) == 0 {
		return nil, validationErrorf("ids must not be empty")
	}
	if !req.Disposition.Valid() || req.Disposition == models.DispositionPending {
		return nil, validationErrorf("document batch requires a decided disposition, got %q", req.Disposition)
	}

	records := make([]*models.ReturnRecord, 0, len(req.IDs))
	for _, id := range req.IDs {
		rec, err := s.Returns.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec.Status != models.StatusGraded {
			return nil, validationErrorf("return %s is %s, only graded items can be documented", id, rec.Status)
		}
		if rec.Disposition != req.Disposition {
			return nil, validationErrorf("return %s has disposition %s, batch is %s", id, rec.Disposition, req.Disposition)
		}
		records = append(records, rec)
	}

	subtotal := decimal.Zero
	for _, rec := range records {
		subtotal = subtotal.Add(rec.Amount)
	}
	vat := decimal.Zero
	if req.IncludeVAT {
		vat = subtotal.Mul(vatRate).Round(2)
	}

	result := &models.DocumentBatchResult{
		Subtotal: subtotal,
		VAT:      vat,
		Net:      subtotal.Add(vat),
	}

	today := s.today()
	for _, rec := range records {
		err := s.Returns.UpdateFields(ctx, rec.ID, map[string]any{
			"status":          models.StatusDocumented,
			"date_documented": today,
		})
		if err != nil {
			log.Printf("[Returns] Document batch: %s failed: %v", rec.ID, err)
			result.FailedIDs = append(result.FailedIDs, rec.ID)
			continue
		}
		result.Documented++
	}

	log.Printf("[Returns] Documented %d/%d records (%s, net %s)",
		result.Documented, len(records), req.Disposition, result.Net)
	s.Notifier.Publish(returnsCollection)
	return result, nil
}

// Complete closes out a documented record.
func (s *ReturnService) Complete(ctx context.Context, id string) (*models.ReturnRecord, error) {
	rec, err := s.Returns.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusDocumented {
		return nil, validationErrorf("return %s is %s, only documented items can be completed", id, rec.Status)
	}

	today := s.today()
	err = s.Returns.UpdateFields(ctx, id, map[string]any{
		"status":         models.StatusCompleted,
		"date_completed": today,
	})
	if err != nil {
		return nil, err
	}

	rec.Status = models.StatusCompleted
	rec.DateCompleted = &today
	s.Notifier.Publish(returnsCollection)
	return rec, nil
}

// List returns all records, optionally filtered by status (and by
// disposition within the graded view).
func (s *ReturnService) List(ctx context.Context, status models.ReturnStatus, disposition models.Disposition) ([]*models.ReturnRecord, error) {
	if status == "" {
		return s.Returns.List(ctx)
	}
	if !status.Valid() {
		return nil, validationErrorf("unknown status %q", status)
	}
	if disposition != "" && !disposition.Valid() {
		return nil, validationErrorf("unknown disposition %q", disposition)
	}
	return s.Returns.ListByStatus(ctx, status, disposition)
}

// Get fetches one record.
func (s *ReturnService) Get(ctx context.Context, id string) (*models.ReturnRecord, error) {
	return s.Returns.Get(ctx, id)
}
