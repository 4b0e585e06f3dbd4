package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
)

// In-memory store fakes. They honor the same contracts as the
// PostgreSQL repositories: merge semantics on UpdateFields, copies on
// read, sentinel errors on missing ids.

type memCounterStore struct {
	mu       sync.Mutex
	counters map[string]models.Counter
	failWith error
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{counters: map[string]models.Counter{}}
}

func (m *memCounterStore) Transact(ctx context.Context, key string, fn func(models.Counter) models.Counter) (models.Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.Counter{}, m.failWith
	}
	next := fn(m.counters[key])
	next.Name = key
	m.counters[key] = next
	return next, nil
}

var _ store.CounterStore = (*memCounterStore)(nil)

type memReturnStore struct {
	mu      sync.Mutex
	records map[string]*models.ReturnRecord
	// failUpdate forces UpdateFields on the given id to fail, for
	// partial-failure scenarios.
	failUpdate map[string]error
}

func newMemReturnStore() *memReturnStore {
	return &memReturnStore{
		records:    map[string]*models.ReturnRecord{},
		failUpdate: map[string]error{},
	}
}

func (m *memReturnStore) List(ctx context.Context) ([]*models.ReturnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ReturnRecord
	for _, rec := range m.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memReturnStore) ListByStatus(ctx context.Context, status models.ReturnStatus, disposition models.Disposition) ([]*models.ReturnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ReturnRecord
	for _, rec := range m.records {
		if rec.Status != status {
			continue
		}
		if disposition != "" && rec.Disposition != disposition {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memReturnStore) Get(ctx context.Context, id string) (*models.ReturnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("get return record: %w", store.ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (m *memReturnStore) Insert(ctx context.Context, rec *models.ReturnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *memReturnStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failUpdate[id]; err != nil {
		return err
	}
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("update return record: %w", store.ErrNotFound)
	}
	for col, v := range fields {
		switch col {
		case "status":
			rec.Status = v.(models.ReturnStatus)
		case "condition":
			rec.Condition = v.(models.Condition)
		case "disposition":
			rec.Disposition = v.(models.Disposition)
		case "notes":
			rec.Notes = v.(string)
		case "disposition_route":
			rec.DispositionRoute = v.(string)
		case "seller_name":
			rec.SellerName = v.(string)
		case "contact_phone":
			rec.ContactPhone = v.(string)
		case "internal_use_detail":
			rec.InternalUseDetail = v.(string)
		case "claim_company":
			rec.ClaimCompany = v.(string)
		case "claim_coordinator":
			rec.ClaimCoordinator = v.(string)
		case "claim_phone":
			rec.ClaimPhone = v.(string)
		case "date_received":
			d := v.(string)
			rec.DateReceived = &d
		case "date_graded":
			d := v.(string)
			rec.DateGraded = &d
		case "date_documented":
			d := v.(string)
			rec.DateDocumented = &d
		case "date_completed":
			d := v.(string)
			rec.DateCompleted = &d
		default:
			return fmt.Errorf("memReturnStore: unhandled column %q", col)
		}
	}
	return nil
}

var _ store.ReturnStore = (*memReturnStore)(nil)

type memNCRStore struct {
	mu      sync.Mutex
	reports map[string]*models.NCRReport
}

func newMemNCRStore() *memNCRStore {
	return &memNCRStore{reports: map[string]*models.NCRReport{}}
}

func (m *memNCRStore) List(ctx context.Context) ([]*models.NCRReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.NCRReport
	for _, rep := range m.reports {
		cp := *rep
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memNCRStore) Get(ctx context.Context, id string) (*models.NCRReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return nil, fmt.Errorf("get ncr report: %w", store.ErrNotFound)
	}
	cp := *rep
	return &cp, nil
}

func (m *memNCRStore) Insert(ctx context.Context, rep *models.NCRReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rep
	m.reports[rep.ID] = &cp
	return nil
}

func (m *memNCRStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return fmt.Errorf("update ncr report: %w", store.ErrNotFound)
	}
	for col, v := range fields {
		switch col {
		case "date":
			rep.Date = v.(string)
		case "to_dept":
			rep.ToDept = v.(string)
		case "copy_to":
			rep.CopyTo = v.(string)
		case "founder":
			rep.Founder = v.(string)
		case "po_no":
			rep.PONo = v.(string)
		case "problem_detail":
			rep.ProblemDetail = v.(string)
		case "qa_accept":
			rep.QAAccept = v.(bool)
		case "qa_reject":
			rep.QAReject = v.(bool)
		case "qa_reason":
			rep.QAReason = v.(string)
		case "status":
			rep.Status = v.(models.NCRStatus)
		case "item":
			if err := json.Unmarshal(v.([]byte), &rep.Item); err != nil {
				return err
			}
		case "problem":
			if err := json.Unmarshal(v.([]byte), &rep.Problem); err != nil {
				return err
			}
		case "action":
			if err := json.Unmarshal(v.([]byte), &rep.Action); err != nil {
				return err
			}
		case "cause":
			if err := json.Unmarshal(v.([]byte), &rep.Cause); err != nil {
				return err
			}
		default:
			return fmt.Errorf("memNCRStore: unhandled column %q", col)
		}
	}
	return nil
}

func (m *memNCRStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return fmt.Errorf("delete ncr report: %w", store.ErrNotFound)
	}
	delete(m.reports, id)
	return nil
}

var _ store.NCRStore = (*memNCRStore)(nil)

// recordingNotifier captures published collection names.
type recordingNotifier struct {
	mu        sync.Mutex
	published []string
}

func (n *recordingNotifier) Publish(collection string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, collection)
}
