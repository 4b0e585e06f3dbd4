package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NCRStatus is the simplified lifecycle state of an NCR report.
type NCRStatus string

const (
	NCROpen   NCRStatus = "open"
	NCRClosed NCRStatus = "closed"
)

// NCRItem is the single non-conforming product line embedded in an NCR
// report. It has no identity of its own.
type NCRItem struct {
	Branch              string          `json:"branch"`
	RefNo               string          `json:"ref_no"`
	NeoRefNo            string          `json:"neo_ref_no,omitempty"`
	ProductCode         string          `json:"product_code"`
	ProductName         string          `json:"product_name"`
	Customer            string          `json:"customer"`
	DestinationCustomer string          `json:"destination_customer,omitempty"`
	Quantity            int             `json:"quantity"`
	Unit                string          `json:"unit,omitempty"`
	PriceBill           decimal.Decimal `json:"price_bill"`
	ExpiryDate          string          `json:"expiry_date,omitempty"`
	CostBill            decimal.Decimal `json:"cost_bill"`
	CostReal            decimal.Decimal `json:"cost_real"`
	ProblemSource       string          `json:"problem_source,omitempty"`
}

// NCRProblemFlags is the fixed set of non-conformance categories.
type NCRProblemFlags struct {
	Damaged         bool   `json:"damaged"`
	Lost            bool   `json:"lost"`
	Mixed           bool   `json:"mixed"`
	WrongInvoice    bool   `json:"wrong_invoice"`
	Late            bool   `json:"late"`
	Duplicate       bool   `json:"duplicate"`
	WrongItem       bool   `json:"wrong_item"`
	Incomplete      bool   `json:"incomplete"`
	OverDelivery    bool   `json:"over_delivery"`
	WrongInfo       bool   `json:"wrong_info"`
	ShortExpiry     bool   `json:"short_expiry"`
	TransportDamage bool   `json:"transport_damage"`
	Accident        bool   `json:"accident"`
	Other           bool   `json:"other"`
	OtherDetail     string `json:"other_detail,omitempty"`
}

// NCRActionFlags captures the disposition actions chosen for the
// non-conforming item, each with an optional quantity.
type NCRActionFlags struct {
	Reject           bool   `json:"reject"`
	RejectQty        int    `json:"reject_qty,omitempty"`
	RejectSort       bool   `json:"reject_sort"`
	RejectSortQty    int    `json:"reject_sort_qty,omitempty"`
	Rework           bool   `json:"rework"`
	ReworkQty        int    `json:"rework_qty,omitempty"`
	ReworkMethod     string `json:"rework_method,omitempty"`
	SpecialAccept    bool   `json:"special_accept"`
	SpecialAcceptQty int    `json:"special_accept_qty,omitempty"`
	SpecialReason    string `json:"special_reason,omitempty"`
	Scrap            bool   `json:"scrap"`
	ScrapQty         int    `json:"scrap_qty,omitempty"`
	Replace          bool   `json:"replace"`
	ReplaceQty       int    `json:"replace_qty,omitempty"`
}

// NCRCauseFlags categorizes the root cause of the non-conformance.
type NCRCauseFlags struct {
	Machine     bool   `json:"machine"`
	Man         bool   `json:"man"`
	Method      bool   `json:"method"`
	Material    bool   `json:"material"`
	Transport   bool   `json:"transport"`
	Other       bool   `json:"other"`
	Detail      string `json:"detail,omitempty"`
	Prevention  string `json:"prevention,omitempty"`
	Responsible string `json:"responsible,omitempty"`
}

// NCRReport is one non-conformance report, keyed by its allocated NCR
// number. Exactly one of QAAccept/QAReject may be true once closed.
type NCRReport struct {
	ID      string `json:"id" db:"id"`
	NCRNo   string `json:"ncr_no" db:"ncr_no"`
	Date    string `json:"date" db:"date"`
	ToDept  string `json:"to_dept,omitempty" db:"to_dept"`
	CopyTo  string `json:"copy_to,omitempty" db:"copy_to"`
	Founder string `json:"founder,omitempty" db:"founder"`
	PONo    string `json:"po_no,omitempty" db:"po_no"`

	Item NCRItem `json:"item" db:"item"`

	Problem       NCRProblemFlags `json:"problem"`
	ProblemDetail string          `json:"problem_detail,omitempty"`
	Action        NCRActionFlags  `json:"action"`
	Cause         NCRCauseFlags   `json:"cause"`

	QAAccept bool   `json:"qa_accept" db:"qa_accept"`
	QAReject bool   `json:"qa_reject" db:"qa_reject"`
	QAReason string `json:"qa_reason,omitempty" db:"qa_reason"`

	Status NCRStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateNCRRequest is the draft for a new NCR report. NCRNo must already
// have been obtained from the number allocator.
type CreateNCRRequest struct {
	NCRNo   string `json:"ncr_no"`
	Date    string `json:"date"`
	ToDept  string `json:"to_dept"`
	CopyTo  string `json:"copy_to"`
	Founder string `json:"founder"`
	PONo    string `json:"po_no"`

	Item NCRItem `json:"item"`

	Problem       NCRProblemFlags `json:"problem"`
	ProblemDetail string          `json:"problem_detail"`
	Action        NCRActionFlags  `json:"action"`
	Cause         NCRCauseFlags   `json:"cause"`
}

// UpdateNCRRequest merges a partial field set into a stored report.
// Nil sections are left untouched.
type UpdateNCRRequest struct {
	Date    *string `json:"date,omitempty"`
	ToDept  *string `json:"to_dept,omitempty"`
	CopyTo  *string `json:"copy_to,omitempty"`
	Founder *string `json:"founder,omitempty"`
	PONo    *string `json:"po_no,omitempty"`

	Item *NCRItem `json:"item,omitempty"`

	Problem       *NCRProblemFlags `json:"problem,omitempty"`
	ProblemDetail *string          `json:"problem_detail,omitempty"`
	Action        *NCRActionFlags  `json:"action,omitempty"`
	Cause         *NCRCauseFlags   `json:"cause,omitempty"`
}

// CloseNCRRequest records the QA verdict that closes a report.
type CloseNCRRequest struct {
	QAAccept bool   `json:"qa_accept"`
	QAReject bool   `json:"qa_reject"`
	QAReason string `json:"qa_reason"`
}
