package clients

import "time"

func registered(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

// DemoClients returns the client directory of a fresh install.
func DemoClients() []Client {
	return []Client{
		{ID: "1", DocumentType: DocDNI, DocumentNumber: "12345678", Name: "Juan Pérez", Address: "Av. Principal 123",
			Phone: "987654321", Email: "juan@email.com", Status: StatusActive, RegisteredAt: registered("2024-01-15")},
		{ID: "2", DocumentType: DocRUC, DocumentNumber: "20123456789", Name: "María García", BusinessName: "García & Asociados S.A.C.",
			Address: "Jr. Comercio 456", Phone: "987654322", Email: "maria@email.com", Status: StatusActive, RegisteredAt: registered("2024-02-20")},
		{ID: "3", DocumentType: DocDNI, DocumentNumber: "87654321", Name: "Carlos López", Address: "Calle Los Olivos 789",
			Phone: "987654323", Email: "carlos@email.com", Status: StatusActive, RegisteredAt: registered("2024-03-10")},
		{ID: "4", DocumentType: DocCE, DocumentNumber: "CE123456", Name: "Ana Martínez", Address: "Av. Libertad 321",
			Phone: "987654324", Email: "ana@email.com", Status: StatusInactive, RegisteredAt: registered("2024-01-05")},
	}
}
