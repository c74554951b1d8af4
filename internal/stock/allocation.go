package stock

import "strings"

// Allocation is the quantity of one product held in one warehouse.
type Allocation struct {
	ProductID   string   `json:"productId"`
	WarehouseID string   `json:"warehouseId"`
	Quantity    int      `json:"quantity"`
	Serials     []string `json:"serials,omitempty"`
}

func (a Allocation) clone() Allocation {
	if a.Serials != nil {
		a.Serials = append([]string(nil), a.Serials...)
	}
	return a
}

// Plan builds the replacement rows for productID: one row per distinct
// warehouse ID in first-occurrence order, with qty[id] (or 0) as quantity.
// Negative quantities are clamped to 0. Blank IDs are skipped.
func Plan(productID string, warehouseIDs []string, qty map[string]int) []Allocation {
	seen := make(map[string]struct{}, len(warehouseIDs))
	rows := make([]Allocation, 0, len(warehouseIDs))
	for _, id := range warehouseIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, Allocation{
			ProductID:   productID,
			WarehouseID: id,
			Quantity:    max(qty[id], 0),
		})
	}
	return rows
}

// Total sums the quantities of rows.
func Total(rows []Allocation) int {
	total := 0
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}
