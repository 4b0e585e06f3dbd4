package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
)

func newTestNCRService() (*NCRService, *memNCRStore) {
	ncrs := newMemNCRStore()
	svc := NewNCRService(ncrs, nil)
	svc.now = pinnedClock(time.Date(2026, 4, 20, 14, 0, 0, 0, time.UTC))
	return svc, ncrs
}

func validNCRRequest() *models.CreateNCRRequest {
	return &models.CreateNCRRequest{
		NCRNo:   "NCR-2026-0042",
		ToDept:  "Warehouse",
		Founder: "Preeda",
		Item: models.NCRItem{
			Branch:        "BKK-01",
			RefNo:         "INV-55012",
			ProductCode:   "P-1001",
			ProductName:   "Jasmine Rice 5kg",
			Customer:      "Somchai Trading",
			Quantity:      12,
			Unit:          "bag",
			PriceBill:     decimal.RequireFromString("185.50"),
			ProblemSource: "transport",
		},
		Problem:       models.NCRProblemFlags{Damaged: true, TransportDamage: true},
		ProblemDetail: "Crushed cartons on pallet 3",
		Action:        models.NCRActionFlags{Reject: true, RejectQty: 12},
	}
}

func TestNCRCreateKeyedByNumber(t *testing.T) {
	svc, _ := newTestNCRService()

	rep, err := svc.Create(context.Background(), validNCRRequest())
	require.NoError(t, err)

	assert.Equal(t, "NCR-2026-0042", rep.ID, "report id is the allocated number")
	assert.Equal(t, models.NCROpen, rep.Status)
	assert.Equal(t, "2026-04-20", rep.Date, "date defaults to today")
}

func TestNCRCreateRequiresNumber(t *testing.T) {
	svc, _ := newTestNCRService()

	req := validNCRRequest()
	req.NCRNo = ""
	_, err := svc.Create(context.Background(), req)
	assert.True(t, IsValidation(err))
}

func TestNCRUpdateMergesPartially(t *testing.T) {
	svc, _ := newTestNCRService()

	rep, err := svc.Create(context.Background(), validNCRRequest())
	require.NoError(t, err)

	newDept := "Quality"
	updated, err := svc.Update(context.Background(), rep.ID, &models.UpdateNCRRequest{
		ToDept: &newDept,
		Action: &models.NCRActionFlags{Scrap: true, ScrapQty: 12},
	})
	require.NoError(t, err)

	assert.Equal(t, "Quality", updated.ToDept)
	assert.True(t, updated.Action.Scrap)
	assert.False(t, updated.Action.Reject, "action section replaced wholesale")
	// Untouched sections keep their values.
	assert.Equal(t, "Preeda", updated.Founder)
	assert.True(t, updated.Problem.Damaged)
	assert.Equal(t, "Crushed cartons on pallet 3", updated.ProblemDetail)
	assert.Equal(t, "P-1001", updated.Item.ProductCode)
}

func TestNCRUpdateNonexistent(t *testing.T) {
	svc, _ := newTestNCRService()

	dept := "Quality"
	_, err := svc.Update(context.Background(), "NCR-2026-9999", &models.UpdateNCRRequest{ToDept: &dept})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNCRCloseRequiresExactlyOneVerdict(t *testing.T) {
	svc, _ := newTestNCRService()

	rep, err := svc.Create(context.Background(), validNCRRequest())
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), rep.ID, &models.CloseNCRRequest{})
	assert.True(t, IsValidation(err), "neither verdict set")

	_, err = svc.Close(context.Background(), rep.ID, &models.CloseNCRRequest{QAAccept: true, QAReject: true})
	assert.True(t, IsValidation(err), "both verdicts set")

	closed, err := svc.Close(context.Background(), rep.ID, &models.CloseNCRRequest{
		QAReject: true,
		QAReason: "supplier to collect",
	})
	require.NoError(t, err)
	assert.Equal(t, models.NCRClosed, closed.Status)
	assert.True(t, closed.QAReject)
	assert.False(t, closed.QAAccept)
}

func TestNCRDelete(t *testing.T) {
	svc, _ := newTestNCRService()

	rep, err := svc.Create(context.Background(), validNCRRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), rep.ID))
	_, err = svc.Get(context.Background(), rep.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), rep.ID), store.ErrNotFound)
}

func TestDeriveReturnDraft(t *testing.T) {
	svc, ncrs := newTestNCRService()

	rep, err := svc.Create(context.Background(), validNCRRequest())
	require.NoError(t, err)

	draft, err := svc.DeriveReturnDraft(context.Background(), rep.ID)
	require.NoError(t, err)

	assert.Equal(t, "BKK-01", draft.Branch)
	assert.Equal(t, "NCR-2026-0042", draft.NCRNumber)
	assert.Equal(t, "Somchai Trading", draft.CustomerName)
	assert.Equal(t, 12, draft.Quantity)
	assert.True(t, draft.PriceBill.Equal(decimal.RequireFromString("185.50")))
	assert.True(t, draft.ActionReject)
	assert.False(t, draft.ActionScrap)
	assert.Equal(t, "Crushed cartons on pallet 3", draft.ProblemType)
	assert.Equal(t, "transport", draft.RootCause)
	assert.Equal(t, "Crushed cartons on pallet 3 (transport)", draft.Reason)
	assert.Equal(t, "damaged, transport_damage", draft.Notes)

	// Deriving is a pure projection; the stored report is untouched.
	stored, err := ncrs.Get(context.Background(), rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.UpdatedAt, stored.UpdatedAt)
	assert.Equal(t, models.NCROpen, stored.Status)
	assert.Equal(t, "Warehouse", stored.ToDept)
}

func TestDeriveReturnDraftNeedsReturnableAction(t *testing.T) {
	svc, _ := newTestNCRService()

	req := validNCRRequest()
	req.NCRNo = "NCR-2026-0043"
	req.Action = models.NCRActionFlags{Rework: true, ReworkQty: 12, ReworkMethod: "relabel"}
	rep, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.DeriveReturnDraft(context.Background(), rep.ID)
	assert.True(t, IsValidation(err), "rework-only report produces no return")
}
