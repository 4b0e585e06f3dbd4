package models

// NCRCounterKey is the fixed counter row shared by all NCR number
// allocations.
const NCRCounterKey = "ncr_counter"

// Counter is the shared allocator state. For a given year LastNumber
// increases by exactly 1 per successful allocation; on year rollover both
// fields change together in one transaction.
type Counter struct {
	Name       string `json:"name" db:"name"`
	Year       int    `json:"year" db:"year"`
	LastNumber int    `json:"last_number" db:"last_number"`
}
