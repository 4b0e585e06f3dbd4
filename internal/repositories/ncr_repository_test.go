package repositories

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-backend/internal/models"
)

func TestNormalizeItemCanonical(t *testing.T) {
	raw := []byte(`{"branch":"BKK-01","ref_no":"INV-55012","product_code":"P-1001","product_name":"Jasmine Rice 5kg","customer":"Somchai Trading","quantity":12,"price_bill":"185.50"}`)

	var item models.NCRItem
	require.NoError(t, normalizeItem(raw, &item))

	assert.Equal(t, "P-1001", item.ProductCode)
	assert.Equal(t, "INV-55012", item.RefNo)
	assert.Equal(t, "Somchai Trading", item.Customer)
	assert.True(t, item.PriceBill.Equal(decimal.RequireFromString("185.50")))
}

func TestNormalizeItemLegacyFlattened(t *testing.T) {
	// Old tracker rows use camelCase keys. "customer" is spelled the
	// same in both shapes, so its presence alone must not make a legacy
	// row pass for canonical.
	raw := []byte(`{"branch":"BKK-01","refNo":"R9","productCode":"X1","productName":"Fish Sauce 700ml","customer":"ACME","quantity":4,"priceBill":"52.25","problemSource":"supplier"}`)

	var item models.NCRItem
	require.NoError(t, normalizeItem(raw, &item))

	assert.Equal(t, "X1", item.ProductCode)
	assert.Equal(t, "R9", item.RefNo)
	assert.Equal(t, "ACME", item.Customer)
	assert.Equal(t, "Fish Sauce 700ml", item.ProductName)
	assert.Equal(t, 4, item.Quantity)
	assert.True(t, item.PriceBill.Equal(decimal.RequireFromString("52.25")))
	assert.Equal(t, "supplier", item.ProblemSource)
}

func TestNormalizeItemEmpty(t *testing.T) {
	var item models.NCRItem
	require.NoError(t, normalizeItem(nil, &item))
	assert.Equal(t, models.NCRItem{}, item)
}
