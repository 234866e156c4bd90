package documents

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestedLine is one raw entry as the caller sent it, e.g. one register
// scan. The same product may appear more than once.
type RequestedLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// AggregatedLine is the net position for one product after merging every
// requested entry for it. Requested keeps the original entries for receipt
// display.
type AggregatedLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Requested []RequestedLine
}

// AggregateLines collapses requested lines into one entry per product,
// preserving first-seen order. Availability must be checked against the
// aggregated quantity so duplicate entries cannot each pass an isolated
// stock check and oversell together. When duplicate entries carry different
// unit prices the last one wins, matching how the cost price is written back.
func AggregateLines(lines []RequestedLine) []AggregatedLine {
	byProduct := make(map[uuid.UUID]int, len(lines))
	aggregated := make([]AggregatedLine, 0, len(lines))

	for _, line := range lines {
		idx, seen := byProduct[line.ProductID]
		if !seen {
			byProduct[line.ProductID] = len(aggregated)
			aggregated = append(aggregated, AggregatedLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Requested: []RequestedLine{line},
			})
			continue
		}
		aggregated[idx].Quantity += line.Quantity
		aggregated[idx].UnitPrice = line.UnitPrice
		aggregated[idx].Requested = append(aggregated[idx].Requested, line)
	}

	return aggregated
}
