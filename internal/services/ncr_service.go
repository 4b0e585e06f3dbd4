package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
	"returns-backend/internal/timeutil"
)

const ncrCollection = "ncr"

// NCRService owns the NCR report lifecycle: Open on creation, Closed
// once QA records a verdict. Reports are keyed by their allocated NCR
// number.
type NCRService struct {
	NCRs     store.NCRStore
	Notifier Notifier

	now func() time.Time
}

func NewNCRService(ncrs store.NCRStore, notifier Notifier) *NCRService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &NCRService{
		NCRs:     ncrs,
		Notifier: notifier,
		now:      timeutil.Now,
	}
}

// Create persists a new report under its allocated number. The number
// must come from the allocator; creation never mints one.
func (s *NCRService) Create(ctx context.Context, req *models.CreateNCRRequest) (*models.NCRReport, error) {
	if req.NCRNo == "" {
		return nil, validationErrorf("ncr_no is required; allocate a number first")
	}

	date := req.Date
	if date == "" {
		date = s.now().In(timeutil.ICT).Format(timeutil.DateLayout)
	} else if _, err := timeutil.ParseInICT(timeutil.DateLayout, date); err != nil {
		return nil, validationErrorf("date must be YYYY-MM-DD, got %q", req.Date)
	}

	rep := &models.NCRReport{
		ID:      req.NCRNo,
		NCRNo:   req.NCRNo,
		Date:    date,
		ToDept:  req.ToDept,
		CopyTo:  req.CopyTo,
		Founder: req.Founder,
		PONo:    req.PONo,

		Item:          req.Item,
		Problem:       req.Problem,
		ProblemDetail: req.ProblemDetail,
		Action:        req.Action,
		Cause:         req.Cause,

		Status: models.NCROpen,
	}

	if err := s.NCRs.Insert(ctx, rep); err != nil {
		return nil, err
	}

	log.Printf("[NCR] Created %s (%s)", rep.NCRNo, rep.Item.ProductCode)
	s.Notifier.Publish(ncrCollection)
	return rep, nil
}

// List returns all reports.
func (s *NCRService) List(ctx context.Context) ([]*models.NCRReport, error) {
	return s.NCRs.List(ctx)
}

// Get fetches one report.
func (s *NCRService) Get(ctx context.Context, id string) (*models.NCRReport, error) {
	return s.NCRs.Get(ctx, id)
}

// Update merges the non-nil sections of req into the stored report.
// Untouched fields keep their value; there is no cross-field
// revalidation on partial updates.
func (s *NCRService) Update(ctx context.Context, id string, req *models.UpdateNCRRequest) (*models.NCRReport, error) {
	fields := map[string]any{}

	if req.Date != nil {
		if _, err := timeutil.ParseInICT(timeutil.DateLayout, *req.Date); err != nil {
			return nil, validationErrorf("date must be YYYY-MM-DD, got %q", *req.Date)
		}
		fields["date"] = *req.Date
	}
	if req.ToDept != nil {
		fields["to_dept"] = *req.ToDept
	}
	if req.CopyTo != nil {
		fields["copy_to"] = *req.CopyTo
	}
	if req.Founder != nil {
		fields["founder"] = *req.Founder
	}
	if req.PONo != nil {
		fields["po_no"] = *req.PONo
	}
	if req.ProblemDetail != nil {
		fields["problem_detail"] = *req.ProblemDetail
	}

	if req.Item != nil {
		if err := marshalInto(fields, "item", req.Item); err != nil {
			return nil, err
		}
	}
	if req.Problem != nil {
		if err := marshalInto(fields, "problem", req.Problem); err != nil {
			return nil, err
		}
	}
	if req.Action != nil {
		if err := marshalInto(fields, "action", req.Action); err != nil {
			return nil, err
		}
	}
	if req.Cause != nil {
		if err := marshalInto(fields, "cause", req.Cause); err != nil {
			return nil, err
		}
	}

	if err := s.NCRs.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.Notifier.Publish(ncrCollection)
	return s.NCRs.Get(ctx, id)
}

// Close records the QA verdict and moves the report to Closed. Exactly
// one of qa_accept/qa_reject must be set.
func (s *NCRService) Close(ctx context.Context, id string, req *models.CloseNCRRequest) (*models.NCRReport, error) {
	if req.QAAccept == req.QAReject {
		return nil, validationErrorf("exactly one of qa_accept or qa_reject must be set")
	}

	err := s.NCRs.UpdateFields(ctx, id, map[string]any{
		"qa_accept": req.QAAccept,
		"qa_reject": req.QAReject,
		"qa_reason": req.QAReason,
		"status":    models.NCRClosed,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[NCR] Closed %s (accept=%v)", id, req.QAAccept)
	s.Notifier.Publish(ncrCollection)
	return s.NCRs.Get(ctx, id)
}

// Delete hard-removes a report. The HTTP layer gates this behind the
// admin role and writes an audit entry.
func (s *NCRService) Delete(ctx context.Context, id string) error {
	if err := s.NCRs.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[NCR] Deleted %s", id)
	s.Notifier.Publish(ncrCollection)
	return nil
}

// DeriveReturnDraft projects a report into a pre-filled return intake
// request. Only reports whose action includes reject, reject-sort or
// scrap produce a draft; the source report is never mutated, and the
// draft is not persisted here.
func (s *NCRService) DeriveReturnDraft(ctx context.Context, id string) (*models.CreateReturnRequest, error) {
	rep, err := s.NCRs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rep.Action.Reject && !rep.Action.RejectSort && !rep.Action.Scrap {
		return nil, validationErrorf("ncr %s has no reject, reject_sort or scrap action; nothing to return", id)
	}

	reason := rep.ProblemDetail
	if rep.Item.ProblemSource != "" {
		if reason != "" {
			reason += " (" + rep.Item.ProblemSource + ")"
		} else {
			reason = rep.Item.ProblemSource
		}
	}

	return &models.CreateReturnRequest{
		Branch:       rep.Item.Branch,
		Date:         rep.Date,
		RefNo:        rep.Item.RefNo,
		NCRNumber:    rep.NCRNo,
		CustomerName: rep.Item.Customer,
		ProductCode:  rep.Item.ProductCode,
		ProductName:  rep.Item.ProductName,
		Quantity:     rep.Item.Quantity,
		Unit:         rep.Item.Unit,
		PriceBill:    rep.Item.PriceBill,
		ProblemType:  rep.ProblemDetail,
		RootCause:    rep.Item.ProblemSource,
		Reason:       reason,
		Notes:        problemSummary(rep.Problem),

		ActionReject:     rep.Action.Reject,
		ActionRejectSort: rep.Action.RejectSort,
		ActionScrap:      rep.Action.Scrap,
	}, nil
}

// marshalInto encodes a JSONB section for the repository, which expects
// pre-marshaled values for the document columns.
func marshalInto(fields map[string]any, col string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode ncr %s: %w", col, err)
	}
	fields[col] = raw
	return nil
}

// problemSummary flattens the problem flags into a comma-joined label
// carried along in the return draft's notes.
func problemSummary(p models.NCRProblemFlags) string {
	var parts []string
	add := func(set bool, label string) {
		if set {
			parts = append(parts, label)
		}
	}
	add(p.Damaged, "damaged")
	add(p.Lost, "lost")
	add(p.Mixed, "mixed")
	add(p.WrongInvoice, "wrong_invoice")
	add(p.Late, "late")
	add(p.Duplicate, "duplicate")
	add(p.WrongItem, "wrong_item")
	add(p.Incomplete, "incomplete")
	add(p.OverDelivery, "over_delivery")
	add(p.WrongInfo, "wrong_info")
	add(p.ShortExpiry, "short_expiry")
	add(p.TransportDamage, "transport_damage")
	add(p.Accident, "accident")
	if p.Other {
		label := "other"
		if p.OtherDetail != "" {
			label = "other: " + p.OtherDetail
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}
