package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

// DemoSales returns the historical sales shown on a fresh install.
func DemoSales() []Sale {
	return []Sale{
		{
			ID: "1", Series: "F001", Number: "000001", Date: day("2024-03-15"),
			ClientID: "1", ClientName: "Juan Pérez", DocumentType: DocumentFactura, Currency: CurrencyPEN,
			Subtotal: amount("1000.00"), Discount: decimal.Zero, Tax: amount("180.00"), Total: amount("1180.00"),
			Status: StatusPaid,
			Items: []Item{
				{ProductCode: "P001", ProductName: "Teclado Mecánico", Quantity: 2, UnitPrice: amount("236.00"), Subtotal: amount("472.00")},
				{ProductCode: "P002", ProductName: "Mouse Inalámbrico", Quantity: 3, UnitPrice: amount("82.60"), Subtotal: amount("247.80")},
			},
		},
		{
			ID: "2", Series: "B001", Number: "000001", Date: day("2024-03-16"),
			ClientID: "2", ClientName: "María García", DocumentType: DocumentBoleta, Currency: CurrencyPEN,
			Subtotal: amount("500.00"), Discount: decimal.Zero, Tax: amount("90.00"), Total: amount("590.00"),
			Status: StatusPending,
			Items: []Item{
				{ProductCode: "S001", ProductName: "Servicio de Soporte", Quantity: 1, UnitPrice: amount("118.00"), Subtotal: amount("118.00")},
			},
		},
	}
}

// DemoPurchases returns the historical purchases shown on a fresh install.
func DemoPurchases() []Purchase {
	return []Purchase{
		{
			ID: "1", Series: "F001", Number: "000001", Date: day("2024-03-10"),
			SupplierID: "1", SupplierName: "Distribuidora ABC S.A.C.", Currency: CurrencyPEN,
			Subtotal: amount("2000.00"), Tax: amount("360.00"), Total: amount("2360.00"), Status: StatusPaid,
			Items: []Item{
				{ProductCode: "P001", ProductName: "Teclado Mecánico", Quantity: 10, UnitPrice: amount("200.00"), Subtotal: amount("2000.00")},
			},
		},
	}
}
