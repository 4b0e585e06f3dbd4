package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
)

func newTestReturnService() (*ReturnService, *memReturnStore, *recordingNotifier) {
	returns := newMemReturnStore()
	notifier := &recordingNotifier{}
	svc := NewReturnService(returns, notifier)
	svc.now = pinnedClock(time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC))
	return svc, returns, notifier
}

func validCreateRequest() *models.CreateReturnRequest {
	return &models.CreateReturnRequest{
		Branch:       "BKK-01",
		CustomerName: "Somchai Trading",
		ProductCode:  "P-1001",
		ProductName:  "Jasmine Rice 5kg",
		Quantity:     12,
		Unit:         "bag",
		PriceBill:    decimal.RequireFromString("185.50"),
		RefNo:        "INV-55012",
	}
}

func TestCreateComputesAmountOnce(t *testing.T) {
	svc, returns, notifier := newTestReturnService()

	rec, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusRequested, rec.Status)
	assert.Equal(t, models.DispositionPending, rec.Disposition)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("2226.00")), "amount = 12 x 185.50, got %s", rec.Amount)
	assert.Equal(t, "2026-02-10", rec.DateRequested)
	assert.Contains(t, rec.ID, "RT-2026-")
	assert.Equal(t, []string{"returns"}, notifier.published)

	// Amount stays fixed through later transitions.
	_, err = svc.Receive(context.Background(), rec.ID)
	require.NoError(t, err)
	stored, err := returns.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(rec.Amount))
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestReturnService()

	cases := []struct {
		name   string
		mutate func(*models.CreateReturnRequest)
	}{
		{"missing branch", func(r *models.CreateReturnRequest) { r.Branch = "" }},
		{"missing ref_no", func(r *models.CreateReturnRequest) { r.RefNo = "" }},
		{"missing customer", func(r *models.CreateReturnRequest) { r.CustomerName = "" }},
		{"missing product code", func(r *models.CreateReturnRequest) { r.ProductCode = "" }},
		{"missing product name", func(r *models.CreateReturnRequest) { r.ProductName = "" }},
		{"zero quantity", func(r *models.CreateReturnRequest) { r.Quantity = 0 }},
		{"negative price", func(r *models.CreateReturnRequest) { r.PriceBill = decimal.RequireFromString("-1") }},
		{"bad date", func(r *models.CreateReturnRequest) { r.Date = "10/02/2026" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(req)
			_, err := svc.Create(context.Background(), req)
			assert.True(t, IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestFullLifecycleStampsMonotonicDates(t *testing.T) {
	svc, _, _ := newTestReturnService()

	clock := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	rec, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	clock = clock.AddDate(0, 0, 2)
	rec, err = svc.Receive(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.DateReceived)

	clock = clock.AddDate(0, 0, 1)
	rec, err = svc.Grade(context.Background(), rec.ID, &models.GradeReturnRequest{
		Condition:        models.ConditionBoxDamage,
		Disposition:      models.DispositionRTV,
		DispositionRoute: "north-route",
	})
	require.NoError(t, err)
	require.NotNil(t, rec.DateGraded)

	clock = clock.AddDate(0, 0, 3)
	result, err := svc.DocumentBatch(context.Background(), &models.DocumentBatchRequest{
		IDs:         []string{rec.ID},
		Disposition: models.DispositionRTV,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Documented)

	clock = clock.AddDate(0, 0, 1)
	rec, err = svc.Complete(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.DateCompleted)

	// Each stage date is on or after the previous one.
	dates := []string{rec.DateRequested, *rec.DateReceived, *rec.DateGraded, *rec.DateCompleted}
	for i := 1; i < len(dates); i++ {
		assert.LessOrEqual(t, dates[i-1], dates[i], "stage dates must not run backwards")
	}
	assert.Equal(t, models.StatusCompleted, rec.Status)
}

func TestReceiveRequiresRequested(t *testing.T) {
	svc, _, _ := newTestReturnService()

	rec, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Receive(context.Background(), rec.ID)
	require.NoError(t, err)

	_, err = svc.Receive(context.Background(), rec.ID)
	assert.True(t, IsValidation(err), "double receive must be rejected")
}

func TestGradeGuards(t *testing.T) {
	svc, _, _ := newTestReturnService()

	rec, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Receive(context.Background(), rec.ID)
	require.NoError(t, err)

	cases := []struct {
		name string
		req  *models.GradeReturnRequest
	}{
		{"unknown condition", &models.GradeReturnRequest{
			Condition: models.ConditionUnknown, Disposition: models.DispositionRestock,
		}},
		{"pending disposition", &models.GradeReturnRequest{
			Condition: models.ConditionNew, Disposition: models.DispositionPending,
		}},
		{"rtv without route", &models.GradeReturnRequest{
			Condition: models.ConditionNew, Disposition: models.DispositionRTV,
		}},
		{"internal_use without detail", &models.GradeReturnRequest{
			Condition: models.ConditionNew, Disposition: models.DispositionInternalUse,
		}},
		{"claim without company", &models.GradeReturnRequest{
			Condition: models.ConditionDamaged, Disposition: models.DispositionClaim,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Grade(context.Background(), rec.ID, tc.req)
			assert.True(t, IsValidation(err), "want validation error, got %v", err)
		})
	}

	// Record is still Received after all the rejected attempts.
	got, err := svc.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, got.Status)
}

func TestGradeNotFound(t *testing.T) {
	svc, _, _ := newTestReturnService()
	_, err := svc.Grade(context.Background(), "RT-2026-99999", &models.GradeReturnRequest{
		Condition: models.ConditionNew, Disposition: models.DispositionRestock,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func gradedRecord(t *testing.T, svc *ReturnService, disposition models.Disposition) *models.ReturnRecord {
	t.Helper()
	req := validCreateRequest()
	rec, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Receive(context.Background(), rec.ID)
	require.NoError(t, err)

	grade := &models.GradeReturnRequest{Condition: models.ConditionBoxDamage, Disposition: disposition}
	switch disposition {
	case models.DispositionRTV:
		grade.DispositionRoute = "north-route"
	case models.DispositionRestock:
		grade.SellerName = "Thai Foods Supply"
	case models.DispositionInternalUse:
		grade.InternalUseDetail = "canteen use"
	case models.DispositionClaim:
		grade.ClaimCompany = "Viriya Insurance"
	}
	rec, err = svc.Grade(context.Background(), rec.ID, grade)
	require.NoError(t, err)
	return rec
}

func TestDocumentBatchTotals(t *testing.T) {
	svc, _, _ := newTestReturnService()

	a := gradedRecord(t, svc, models.DispositionRTV)
	b := gradedRecord(t, svc, models.DispositionRTV)

	result, err := svc.DocumentBatch(context.Background(), &models.DocumentBatchRequest{
		IDs:         []string{a.ID, b.ID},
		Disposition: models.DispositionRTV,
		IncludeVAT:  true,
	})
	require.NoError(t, err)

	// 2 x 2226.00 = 4452.00; VAT 7% = 311.64
	assert.True(t, result.Subtotal.Equal(decimal.RequireFromString("4452.00")), "subtotal %s", result.Subtotal)
	assert.True(t, result.VAT.Equal(decimal.RequireFromString("311.64")), "vat %s", result.VAT)
	assert.True(t, result.Net.Equal(decimal.RequireFromString("4763.64")), "net %s", result.Net)
	assert.Equal(t, 2, result.Documented)
	assert.Empty(t, result.FailedIDs)
}

func TestDocumentBatchRejectsMixedDispositions(t *testing.T) {
	svc, _, _ := newTestReturnService()

	a := gradedRecord(t, svc, models.DispositionRTV)
	b := gradedRecord(t, svc, models.DispositionRestock)

	_, err := svc.DocumentBatch(context.Background(), &models.DocumentBatchRequest{
		IDs:         []string{a.ID, b.ID},
		Disposition: models.DispositionRTV,
	})
	assert.True(t, IsValidation(err), "mixed batch must be rejected, got %v", err)

	// Nothing moved.
	got, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGraded, got.Status)
}

func TestDocumentBatchPartialFailure(t *testing.T) {
	svc, returns, _ := newTestReturnService()

	a := gradedRecord(t, svc, models.DispositionRecycle)
	b := gradedRecord(t, svc, models.DispositionRecycle)
	c := gradedRecord(t, svc, models.DispositionRecycle)

	returns.failUpdate[b.ID] = errors.New("connection reset")

	result, err := svc.DocumentBatch(context.Background(), &models.DocumentBatchRequest{
		IDs:         []string{a.ID, b.ID, c.ID},
		Disposition: models.DispositionRecycle,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Documented)
	assert.Equal(t, []string{b.ID}, result.FailedIDs)

	// Committed records stay documented, the failed one stays graded.
	for id, want := range map[string]models.ReturnStatus{
		a.ID: models.StatusDocumented,
		b.ID: models.StatusGraded,
		c.ID: models.StatusDocumented,
	} {
		got, err := svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, "record %s", id)
	}
}

func TestGradeClearsOtherRouteMetadata(t *testing.T) {
	svc, returns, _ := newTestReturnService()

	rec := gradedRecord(t, svc, models.DispositionRTV)
	got, err := returns.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "north-route", got.DispositionRoute)
	assert.Empty(t, got.SellerName)
	assert.Empty(t, got.ClaimCompany)
	assert.Empty(t, got.InternalUseDetail)
}

func TestGradeRestockKeepsSellerMetadata(t *testing.T) {
	svc, returns, _ := newTestReturnService()

	rec, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Receive(context.Background(), rec.ID)
	require.NoError(t, err)

	graded, err := svc.Grade(context.Background(), rec.ID, &models.GradeReturnRequest{
		Condition:    models.ConditionNew,
		Disposition:  models.DispositionRestock,
		SellerName:   "Reseller Co",
		ContactPhone: "02-555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reseller Co", graded.SellerName)

	got, err := returns.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reseller Co", got.SellerName)
	assert.Equal(t, "02-555-0101", got.ContactPhone)
	assert.Empty(t, got.DispositionRoute, "route metadata belongs to rtv, not restock")
}

func TestListValidatesFilters(t *testing.T) {
	svc, _, _ := newTestReturnService()

	_, err := svc.List(context.Background(), "shipped", "")
	assert.True(t, IsValidation(err))

	_, err = svc.List(context.Background(), models.StatusGraded, "burn")
	assert.True(t, IsValidation(err))

	_, err = svc.List(context.Background(), "", "")
	assert.NoError(t, err)
}
