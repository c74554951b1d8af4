package suppliers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/suppliers"
)

func newService(t *testing.T) *suppliers.Service {
	t.Helper()
	svc, err := suppliers.NewService(suppliers.ServiceConfig{
		Store: suppliers.NewMemoryStore(suppliers.DemoSuppliers()),
		Now:   func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func ids(rows []suppliers.Supplier) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestListFiltersByField(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	rows, err := svc.List(ctx, suppliers.Query{Term: "s.a.c", Field: "name"})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, ids(rows))

	rows, err = svc.List(ctx, suppliers.Query{Term: "2022", Field: "document"})
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, ids(rows))

	// The name field does not look at document numbers.
	rows, err = svc.List(ctx, suppliers.Query{Term: "2022", Field: "name"})
	require.NoError(t, err)
	require.Empty(t, rows)

	rows, err = svc.List(ctx, suppliers.Query{Term: "techmod"})
	require.NoError(t, err)
	require.Equal(t, []string{"3"}, ids(rows))

	rows, err = svc.List(ctx, suppliers.Query{Status: suppliers.StatusInactive})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestCreateRequiresBusinessNameAndDocument(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, suppliers.Input{TradeName: "Sin nombre"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	details := appErr.Details.(map[string]string)
	require.Equal(t, "required", details["businessName"])
	require.Equal(t, "required", details["documentNumber"])

	_, err = svc.Create(ctx, suppliers.Input{BusinessName: "Mala RUC", DocumentNumber: "123"})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "ruc", appErr.Details.(map[string]string)["documentNumber"])

	created, err := svc.Create(ctx, suppliers.Input{
		BusinessName:   "  Papelera Lima S.A.  ",
		DocumentNumber: "20444444444",
		Email:          "Ventas@Papelera.PE",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, suppliers.DocRUC, created.DocumentType)
	require.Equal(t, suppliers.StatusActive, created.Status)
	require.Equal(t, "Papelera Lima S.A.", created.BusinessName)
	require.Equal(t, "ventas@papelera.pe", created.Email)
	require.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), created.RegisteredAt)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "2", suppliers.Input{
		DocumentType: suppliers.DocDNI, DocumentNumber: "12345678", BusinessName: "Laura Torres", Status: suppliers.StatusInactive,
	})
	require.NoError(t, err)
	require.Equal(t, suppliers.StatusInactive, updated.Status)
	require.Equal(t, "2024-02-15", updated.RegisteredAt.Format(time.DateOnly))

	_, err = svc.Update(ctx, "404", suppliers.Input{DocumentNumber: "20111111111", BusinessName: "X"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)

	require.NoError(t, svc.Delete(ctx, "1"))
	err = svc.Delete(ctx, "1")
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}
