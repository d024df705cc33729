// Package cart checks requested line items against available stock.
package cart

import (
	"github.com/CodrCam/avalanchehour-shop/models"
)

// Line is one requested cart entry. Either SKU is set directly or the
// validator resolves it from ProductID + Options.
type Line struct {
	SKU       string         `json:"sku,omitempty"`
	ProductID string         `json:"id,omitempty"`
	Options   models.Options `json:"options,omitempty"`
	Qty       int64          `json:"qty"`
}

// Problem reports one SKU whose aggregated demand exceeds stock.
type Problem struct {
	SKU       string `json:"sku"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// Result is the validation outcome. OK with no problems means every
// requested SKU is coverable by current stock.
type Result struct {
	OK       bool      `json:"ok"`
	Problems []Problem `json:"problems"`
}

type InventoryReader interface {
	GetMany(skus []string) (map[string]int64, error)
}

type Resolver interface {
	Resolve(productID string, explicitSKU string, opts models.Options) string
}

// Validator aggregates demand per SKU and compares it to stock.
// Strictly read-only; it never mutates inventory. The check is
// advisory: stock can still move between validation and payment.
type Validator struct {
	inventory InventoryReader
	resolver  Resolver
}

func NewValidator(inventory InventoryReader, resolver Resolver) *Validator {
	return &Validator{inventory: inventory, resolver: resolver}
}

// Validate resolves each line, sums requested quantity per SKU
// (separate lines sharing a SKU are combined), and flags every SKU
// where demand exceeds availability. Lines with non-positive quantity
// or no resolvable SKU are dropped, not errored. An empty request is
// valid: there is nothing to check.
func (v *Validator) Validate(lines []Line) (Result, error) {
	demand := make(map[string]int64)
	var order []string
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		s := v.resolver.Resolve(line.ProductID, line.SKU, line.Options)
		if s == "" {
			continue
		}
		if _, seen := demand[s]; !seen {
			order = append(order, s)
		}
		demand[s] += line.Qty
	}

	if len(demand) == 0 {
		return Result{OK: true, Problems: []Problem{}}, nil
	}

	available, err := v.inventory.GetMany(order)
	if err != nil {
		return Result{}, err
	}

	result := Result{OK: true, Problems: []Problem{}}
	for _, s := range order {
		if demand[s] > available[s] {
			result.OK = false
			result.Problems = append(result.Problems, Problem{
				SKU:       s,
				Requested: demand[s],
				Available: available[s],
			})
		}
	}
	return result, nil
}
