package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnStatus is the workflow stage of a return record.
type ReturnStatus string

const (
	StatusRequested  ReturnStatus = "requested"
	StatusReceived   ReturnStatus = "received"
	StatusGraded     ReturnStatus = "graded"
	StatusDocumented ReturnStatus = "documented"
	StatusCompleted  ReturnStatus = "completed"
	// Legacy terminal states kept for records written by the old system.
	// Not reachable through the modeled transitions.
	StatusApproved ReturnStatus = "approved"
	StatusRejected ReturnStatus = "rejected"
)

// Valid reports whether s is a known workflow status.
func (s ReturnStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusReceived, StatusGraded, StatusDocumented,
		StatusCompleted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Condition is the graded physical condition of a returned item.
// Free-text values outside the known set are allowed ("other" conditions).
type Condition string

const (
	ConditionUnknown     Condition = ""
	ConditionNew         Condition = "new"
	ConditionBoxDamage   Condition = "box_damage"
	ConditionWetBox      Condition = "wet_box"
	ConditionLabelDefect Condition = "label_defect"
	ConditionExpired     Condition = "expired"
	ConditionDamaged     Condition = "damaged"
	ConditionDefective   Condition = "defective"
)

// Known reports whether the condition has been set to something meaningful.
func (c Condition) Known() bool {
	return c != ConditionUnknown && c != "unknown"
}

// Disposition is the decided fate of a returned item.
type Disposition string

const (
	DispositionPending     Disposition = "pending"
	DispositionRTV         Disposition = "rtv"
	DispositionRestock     Disposition = "restock"
	DispositionRecycle     Disposition = "recycle"
	DispositionInternalUse Disposition = "internal_use"
	DispositionClaim       Disposition = "claim"
)

// Valid reports whether d is a known disposition.
func (d Disposition) Valid() bool {
	switch d {
	case DispositionPending, DispositionRTV, DispositionRestock,
		DispositionRecycle, DispositionInternalUse, DispositionClaim:
		return true
	}
	return false
}

// ReturnRecord is one physical return event moving through the workflow.
// Stage dates are ICT calendar dates (YYYY-MM-DD), each set exactly once
// when the matching transition succeeds.
type ReturnRecord struct {
	ID           string `json:"id" db:"id"`
	Branch       string `json:"branch" db:"branch"`
	CustomerName string `json:"customer_name" db:"customer_name"`
	ProductCode  string `json:"product_code" db:"product_code"`
	ProductName  string `json:"product_name" db:"product_name"`
	Category     string `json:"category,omitempty" db:"category"`

	Quantity  int             `json:"quantity" db:"quantity"`
	Unit      string          `json:"unit,omitempty" db:"unit"`
	PriceBill decimal.Decimal `json:"price_bill" db:"price_bill"`
	PriceSell decimal.Decimal `json:"price_sell" db:"price_sell"`
	// Amount is quantity x price_bill, fixed at creation.
	Amount decimal.Decimal `json:"amount" db:"amount"`

	RefNo     string `json:"ref_no" db:"ref_no"`
	NCRNumber string `json:"ncr_number,omitempty" db:"ncr_number"`

	ProblemType string `json:"problem_type,omitempty" db:"problem_type"`
	RootCause   string `json:"root_cause,omitempty" db:"root_cause"`
	Reason      string `json:"reason,omitempty" db:"reason"`
	Notes       string `json:"notes,omitempty" db:"notes"`

	Status      ReturnStatus `json:"status" db:"status"`
	Condition   Condition    `json:"condition" db:"condition"`
	Disposition Disposition  `json:"disposition" db:"disposition"`

	// Disposition-specific metadata, populated at grading time only for
	// the chosen route.
	DispositionRoute  string `json:"disposition_route,omitempty" db:"disposition_route"`
	SellerName        string `json:"seller_name,omitempty" db:"seller_name"`
	ContactPhone      string `json:"contact_phone,omitempty" db:"contact_phone"`
	InternalUseDetail string `json:"internal_use_detail,omitempty" db:"internal_use_detail"`
	ClaimCompany      string `json:"claim_company,omitempty" db:"claim_company"`
	ClaimCoordinator  string `json:"claim_coordinator,omitempty" db:"claim_coordinator"`
	ClaimPhone        string `json:"claim_phone,omitempty" db:"claim_phone"`

	Date           string  `json:"date" db:"date"`
	DateRequested  string  `json:"date_requested" db:"date_requested"`
	DateReceived   *string `json:"date_received,omitempty" db:"date_received"`
	DateGraded     *string `json:"date_graded,omitempty" db:"date_graded"`
	DateDocumented *string `json:"date_documented,omitempty" db:"date_documented"`
	DateCompleted  *string `json:"date_completed,omitempty" db:"date_completed"`

	// Action flags carried over from the source NCR, if the record was
	// derived from one.
	ActionReject     bool `json:"action_reject" db:"action_reject"`
	ActionRejectSort bool `json:"action_reject_sort" db:"action_reject_sort"`
	ActionScrap      bool `json:"action_scrap" db:"action_scrap"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateReturnRequest is the intake submission for a new return record.
type CreateReturnRequest struct {
	Branch       string          `json:"branch"`
	Date         string          `json:"date"`
	RefNo        string          `json:"ref_no"`
	NCRNumber    string          `json:"ncr_number"`
	CustomerName string          `json:"customer_name"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	Category     string          `json:"category"`
	Quantity     int             `json:"quantity"`
	Unit         string          `json:"unit"`
	PriceBill    decimal.Decimal `json:"price_bill"`
	PriceSell    decimal.Decimal `json:"price_sell"`
	ProblemType  string          `json:"problem_type"`
	RootCause    string          `json:"root_cause"`
	Reason       string          `json:"reason"`
	Notes        string          `json:"notes"`

	ActionReject     bool `json:"action_reject"`
	ActionRejectSort bool `json:"action_reject_sort"`
	ActionScrap      bool `json:"action_scrap"`
}

// GradeReturnRequest records the QC inspection outcome for a received item.
type GradeReturnRequest struct {
	Condition   Condition   `json:"condition"`
	Disposition Disposition `json:"disposition"`

	DispositionRoute  string `json:"disposition_route"`
	SellerName        string `json:"seller_name"`
	ContactPhone      string `json:"contact_phone"`
	InternalUseDetail string `json:"internal_use_detail"`
	ClaimCompany      string `json:"claim_company"`
	ClaimCoordinator  string `json:"claim_coordinator"`
	ClaimPhone        string `json:"claim_phone"`

	Notes string `json:"notes"`
}

// DocumentBatchRequest selects graded records sharing one disposition for
// document generation.
type DocumentBatchRequest struct {
	IDs         []string    `json:"ids"`
	Disposition Disposition `json:"disposition"`
	IncludeVAT  bool        `json:"include_vat"`
}

// DocumentBatchResult reports the outcome of a batch document operation.
// Records are persisted independently; committed records are not rolled
// back when a later one fails.
type DocumentBatchResult struct {
	Documented int             `json:"documented"`
	FailedIDs  []string        `json:"failed_ids,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	VAT        decimal.Decimal `json:"vat"`
	Net        decimal.Decimal `json:"net"`
}
