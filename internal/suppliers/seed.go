package suppliers

import "time"

// DemoSuppliers returns the supplier directory of a fresh install.
func DemoSuppliers() []Supplier {
	on := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t
	}
	return []Supplier{
		{ID: "1", DocumentType: DocRUC, DocumentNumber: "20111111111", BusinessName: "Distribuidora ABC S.A.C.", TradeName: "ABC Distribuidora",
			Address: "Av. Industrial 100", Phone: "987111111", Email: "contacto@abc.com", Contact: "Roberto Silva", Status: StatusActive, RegisteredAt: on("2024-01-10")},
		{ID: "2", DocumentType: DocRUC, DocumentNumber: "20222222222", BusinessName: "Importadora XYZ E.I.R.L.", TradeName: "XYZ Import",
			Address: "Jr. Comercio 200", Phone: "987222222", Email: "ventas@xyz.com", Contact: "Laura Torres", Status: StatusActive, RegisteredAt: on("2024-02-15")},
		{ID: "3", DocumentType: DocRUC, DocumentNumber: "20333333333", BusinessName: "Tecnología Moderna S.A.C.", TradeName: "TechMod",
			Address: "Av. Tecnología 300", Phone: "987333333", Email: "info@techmod.com", Contact: "Pedro Ramírez", Status: StatusActive, RegisteredAt: on("2024-03-01")},
	}
}
