package reconciliation

import (
	"stockledger/internal/identity"
	"stockledger/pkg/models"
)

// Threshold below which a quantity difference counts as aligned.
const Threshold = 0.001

// Status classifies a counted line against the ledger.
type Status string

const (
	StatusAligned Status = "ALIGNED"
	StatusSurplus Status = "SURPLUS" // physical exceeds system
	StatusDeficit Status = "DEFICIT" // system exceeds physical
)

// Classify maps a quantity difference onto a status.
func Classify(diff float64) Status {
	switch {
	case diff > Threshold:
		return StatusSurplus
	case diff < -Threshold:
		return StatusDeficit
	default:
		return StatusAligned
	}
}

// Line is one counted product compared with its ledger entry.
type Line struct {
	Counted models.Product `json:"counted"`

	// System is the matched ledger entry; zero value when Matched is false.
	System  models.InventoryItem `json:"system"`
	Matched bool                 `json:"matched"`
	Tier    identity.MatchTier   `json:"tier"`

	// NameDiffers flags a match whose ledger name is not the counted name.
	NameDiffers bool `json:"nameDiffers"`

	SystemQuantity float64 `json:"systemQuantity"`
	Diff           float64 `json:"diff"`
	UnitPrice      float64 `json:"unitPrice"`
	ValueDiff      float64 `json:"valueDiff"`
	Status         Status  `json:"status"`
}

// IsDiscrepancy reports whether the line differs from the ledger.
func (l Line) IsDiscrepancy() bool {
	return l.Status != StatusAligned
}

// Summary aggregates the monetary effect of a count.
type Summary struct {
	SurplusValue       float64 `json:"surplusValue"`
	DeficitValue       float64 `json:"deficitValue"`
	NetValue           float64 `json:"netValue"` // surplus - deficit
	DiscrepanciesCount int     `json:"discrepanciesCount"`
	MatchedCount       int     `json:"matchedCount"`
	LineCount          int     `json:"lineCount"`
}

// Result is the full comparison of one physical count document.
type Result struct {
	DocumentID     string  `json:"documentId"`
	DocumentNumber string  `json:"documentNumber"`
	Date           string  `json:"date"`
	Lines          []Line  `json:"lines"`
	Summary        Summary `json:"summary"`
}

// Discrepancies returns only the lines that differ from the ledger.
func (r *Result) Discrepancies() []Line {
	var out []Line
	for _, l := range r.Lines {
		if l.IsDiscrepancy() {
			out = append(out, l)
		}
	}
	return out
}
