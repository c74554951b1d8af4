package catalog

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// DemoWarehouses returns the reference warehouse list.
func DemoWarehouses() []Warehouse {
	return []Warehouse{
		{ID: "alm1", Code: "STAN 20", Name: "STAN 20"},
		{ID: "alm2", Code: "STAN 204", Name: "STAN 204"},
		{ID: "alm3", Code: "STAN B102", Name: "STAN B102"},
	}
}

type demoRow struct {
	name                   string
	price1, price2, price3 string
	serials                []string
	lastPurchase           string
}

var demoRows = []demoRow{
	{"Teclado Mecánico", "200.00", "236.00", "270.00", nil, "15/03/2024"},
	{"Mouse Inalámbrico", "70.00", "82.60", "95.00", nil, "10/03/2024"},
	{"Silla Ergonómica", "450.00", "531.00", "600.00", []string{"S001", "S002", "S003", "S004", "S005"}, "05/03/2024"},
	{`Monitor 24"`, "500.00", "590.00", "650.00", []string{"M001", "M002", "M003"}, "01/03/2024"},
	{"Papel A4", "50.00", "59.00", "65.00", nil, "20/03/2024"},
	{"Impresora Laser", "800.00", "944.00", "1000.00", []string{"I001", "I002", "I003", "I004"}, "18/03/2024"},
	{"Cable USB-C", "15.00", "17.70", "20.00", nil, "22/03/2024"},
	{"Auriculares Bluetooth", "120.00", "141.60", "160.00", nil, "12/03/2024"},
	{"Webcam HD", "180.00", "212.40", "240.00", nil, "08/03/2024"},
	{"Disco Duro Externo 1TB", "350.00", "413.00", "450.00", []string{"D001", "D002", "D003", "D004", "D005", "D006", "D007"}, "14/03/2024"},
	{"Memoria RAM 8GB", "150.00", "177.00", "200.00", nil, "16/03/2024"},
	{"Router WiFi", "250.00", "295.00", "320.00", nil, "11/03/2024"},
	{`Tablet 10"`, "600.00", "708.00", "750.00", []string{"T001", "T002"}, "03/03/2024"},
	{"Teclado Inalámbrico", "90.00", "106.20", "120.00", nil, "19/03/2024"},
	{"Mouse Pad", "20.00", "23.60", "25.00", nil, "25/03/2024"},
	{"Hub USB 4 Puertos", "45.00", "53.10", "60.00", nil, "17/03/2024"},
	{"Micrófono USB", "200.00", "236.00", "260.00", nil, "09/03/2024"},
	{"Laptop Stand", "80.00", "94.40", "110.00", nil, "13/03/2024"},
	{"Cargador Universal", "35.00", "41.30", "45.00", nil, "21/03/2024"},
	{"Base para Monitor", "100.00", "118.00", "130.00", nil, "07/03/2024"},
	{"Switch de Red 8 Puertos", "300.00", "354.00", "380.00", nil, "06/03/2024"},
	{"Adaptador HDMI", "25.00", "29.50", "35.00", nil, "24/03/2024"},
	{"Proyector LED", "1200.00", "1416.00", "1500.00", []string{"PR001", "PR002", "PR003"}, "02/03/2024"},
	{"Batería Externa 20000mAh", "110.00", "129.80", "140.00", nil, "23/03/2024"},
	{"Cámara IP", "400.00", "472.00", "500.00", []string{"C001", "C002", "C003", "C004", "C005"}, "04/03/2024"},
}

// DemoProducts returns the demo catalog. Product IDs are "1".."25" and codes
// P001..P025 in the same order.
func DemoProducts() []Product {
	out := make([]Product, 0, len(demoRows))
	for i, row := range demoRows {
		n := i + 1
		p := Product{
			ID:            strconv.Itoa(n),
			Code:          fmt.Sprintf("P%03d", n),
			Name:          row.name,
			Unit:          DefaultUnit,
			Price1:        decimal.RequireFromString(row.price1),
			Price2:        decimal.RequireFromString(row.price2),
			Price3:        decimal.RequireFromString(row.price3),
			HasTax:        true,
			TracksSerials: row.serials != nil,
			History:       "Última compra: " + row.lastPurchase,
		}
		if row.serials != nil {
			p.Serials = append([]string(nil), row.serials...)
		}
		out = append(out, p)
	}
	return out
}

