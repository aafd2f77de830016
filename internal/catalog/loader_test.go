package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestLoaderSpreadsheetSource(t *testing.T) {
	workbook := buildWorkbook(t, "Productos", [][]any{
		{"Nombre", "Precio", "Categoria", "Promo"},
		{"Paleta", "Q 7.00", "Paletas", ""},
		{"Caja Sorpresa", "45", "Cajas", "30"},
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products.xlsx":
			_, _ = w.Write(workbook)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loader := NewLoader(LoaderDeps{
		SpreadsheetURL: server.URL + "/products.xlsx",
		JSONURL:        server.URL + "/products.json",
	})

	catalog, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(catalog.Products))
	}

	paleta := catalog.Products[0]
	if paleta.ID != "1" || paleta.Name != "Paleta" || paleta.Price != 7 {
		t.Fatalf("unexpected first product: %+v", paleta)
	}
	caja := catalog.Products[1]
	if caja.Promo == nil || *caja.Promo != 30 {
		t.Fatalf("expected promo 30 on caja, got %+v", caja)
	}
}

func TestLoaderPrefersNamedSheetOverFirst(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Products"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	header := []any{"name", "price"}
	row := []any{"Bombones", "20"}
	if err := f.SetSheetRow("Products", "A1", &header); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetSheetRow("Products", "A2", &row); err != nil {
		t.Fatalf("set row: %v", err)
	}
	decoy := []any{"garbage"}
	if err := f.SetSheetRow("Sheet1", "A1", &decoy); err != nil {
		t.Fatalf("set decoy: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	loader := NewLoader(LoaderDeps{SpreadsheetURL: server.URL})
	catalog, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Products) != 1 || catalog.Products[0].Name != "Bombones" {
		t.Fatalf("expected product from Products sheet, got %+v", catalog.Products)
	}
}

func TestLoaderFallsBackToJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products.json":
			_, _ = w.Write([]byte(`[{"name":"Chicles","price":"12,50"},{"id":"x9","name":"Bombones","price":20}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loader := NewLoader(LoaderDeps{
		SpreadsheetURL: server.URL + "/products.xlsx",
		JSONURL:        server.URL + "/products.json",
	})

	catalog, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(catalog.Products))
	}
	if catalog.Products[0].ID != "1" || catalog.Products[0].Price != 12.5 {
		t.Fatalf("unexpected first product: %+v", catalog.Products[0])
	}
	if catalog.Products[1].ID != "x9" {
		t.Fatalf("expected explicit id preserved, got %q", catalog.Products[1].ID)
	}
}

func TestLoaderTotalFailureYieldsEmptyCatalog(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	loader := NewLoader(LoaderDeps{
		SpreadsheetURL: server.URL + "/products.xlsx",
		JSONURL:        server.URL + "/products.json",
	})

	catalog, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("total source failure must not be fatal: %v", err)
	}
	if len(catalog.Products) != 0 {
		t.Fatalf("expected empty catalog, got %d products", len(catalog.Products))
	}
}

func TestLoaderRejectsNonArrayJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products.json" {
			_, _ = w.Write([]byte(`{"products": []}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	loader := NewLoader(LoaderDeps{
		SpreadsheetURL: server.URL + "/missing.xlsx",
		JSONURL:        server.URL + "/products.json",
	})

	catalog, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Products) != 0 {
		t.Fatalf("non-array payload should yield empty catalog, got %d", len(catalog.Products))
	}
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewLoader(LoaderDeps{
		SpreadsheetURL: "http://127.0.0.1:0/products.xlsx",
		JSONURL:        "http://127.0.0.1:0/products.json",
	})

	if _, err := loader.Load(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
