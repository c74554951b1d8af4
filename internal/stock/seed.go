package stock

type demoRow struct {
	productID, warehouseID string
	quantity               int
}

var demoRows = []demoRow{
	{"1", "alm1", 5},
	{"1", "alm2", 4},
	{"1", "alm3", 3},
	{"2", "alm1", 3},
	{"2", "alm2", 5},
	{"3", "alm1", 2},
	{"3", "alm3", 3},
	{"4", "alm1", 1},
	{"4", "alm2", 2},
	{"5", "alm1", 20},
	{"5", "alm2", 15},
	{"5", "alm3", 15},
	{"6", "alm2", 2},
	{"6", "alm3", 2},
	{"7", "alm1", 10},
	{"7", "alm2", 8},
	{"7", "alm3", 7},
	{"8", "alm1", 4},
	{"8", "alm2", 6},
	{"9", "alm2", 3},
	{"9", "alm3", 3},
	{"10", "alm1", 3},
	{"10", "alm2", 4},
	{"11", "alm1", 8},
	{"11", "alm2", 7},
	{"12", "alm1", 4},
	{"12", "alm3", 5},
	{"13", "alm2", 1},
	{"13", "alm3", 1},
	{"14", "alm1", 6},
	{"14", "alm2", 5},
	{"15", "alm1", 12},
	{"15", "alm2", 10},
	{"15", "alm3", 8},
	{"16", "alm1", 8},
	{"16", "alm2", 10},
	{"17", "alm3", 5},
	{"18", "alm1", 4},
	{"18", "alm2", 4},
	{"19", "alm1", 8},
	{"19", "alm2", 7},
	{"19", "alm3", 5},
	{"20", "alm2", 3},
	{"20", "alm3", 3},
	{"21", "alm1", 2},
	{"21", "alm2", 2},
	{"22", "alm1", 10},
	{"22", "alm2", 12},
	{"23", "alm1", 1},
	{"23", "alm2", 1},
	{"23", "alm3", 1},
	{"24", "alm1", 5},
	{"24", "alm2", 4},
	{"24", "alm3", 3},
	{"25", "alm2", 2},
	{"25", "alm3", 3},
}

// DemoAllocations returns the demo stock spread across the reference warehouses.
func DemoAllocations() []Allocation {
	out := make([]Allocation, 0, len(demoRows))
	for _, r := range demoRows {
		out = append(out, Allocation{ProductID: r.productID, WarehouseID: r.warehouseID, Quantity: r.quantity})
	}
	return out
}
