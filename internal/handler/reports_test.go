package handler

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fardaria/api/internal/database/memstore"
)

func newReportRouter(store *memstore.Store) chi.Router {
	r := chi.NewRouter()
	r.Route("/reports", NewReportHandler(store).RegisterRoutes)
	return r
}

func TestInventoryReport(t *testing.T) {
	store := memstore.New()
	r := newReportRouter(store)
	seedStoreProduct(t, store, "Camiseta", 10)
	seedStoreProduct(t, store, "Agasalho", 2)

	w := doJSON(t, r, "GET", "/reports/inventory", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["product_count"].(float64) != 2 {
		t.Errorf("product_count: got %v, want 2", resp["product_count"])
	}
	if resp["total_units"].(float64) != 12 {
		t.Errorf("total_units: got %v, want 12", resp["total_units"])
	}
	// 12 units at 29.90 each.
	if resp["total_value"] != "358.80" {
		t.Errorf("total_value: got %v, want 358.80", resp["total_value"])
	}
	lowStock := resp["low_stock"].([]interface{})
	if len(lowStock) != 1 {
		t.Fatalf("low_stock: got %d entries, want 1", len(lowStock))
	}
	if lowStock[0].(map[string]interface{})["name"] != "Agasalho" {
		t.Errorf("low_stock entry: got %v", lowStock[0])
	}
}

func TestSalesReportExcludesCancelled(t *testing.T) {
	store := memstore.New()
	r := newReportRouter(store)
	customer := seedStoreCustomer(t, store, "Maria da Silva")
	product := seedStoreProduct(t, store, "Camiseta", 20)

	orderRouter := newOrderRouter(store, nil)
	w := doJSON(t, orderRouter, "POST", "/orders", saleBody(customer.ID.String(), product.ID.String(), 2))
	if w.Code != http.StatusCreated {
		t.Fatalf("first sale: got %d", w.Code)
	}
	w = doJSON(t, orderRouter, "POST", "/orders", saleBody(customer.ID.String(), product.ID.String(), 3))
	if w.Code != http.StatusCreated {
		t.Fatalf("second sale: got %d", w.Code)
	}
	cancelledID := decodeBody(t, w)["id"].(string)
	doJSON(t, orderRouter, "PATCH", "/orders/"+cancelledID+"/status", map[string]interface{}{"status": "CANCELLED"})

	w = doJSON(t, r, "GET", "/reports/sales", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	resp := decodeBody(t, w)

	bySchool := resp["by_school"].([]interface{})
	if len(bySchool) != 1 {
		t.Fatalf("by_school: got %d rows, want 1", len(bySchool))
	}
	row := bySchool[0].(map[string]interface{})
	if row["order_count"].(float64) != 1 {
		t.Errorf("order_count: got %v, want 1 (cancelled excluded)", row["order_count"])
	}
	if row["total_amount"] != "59.80" {
		t.Errorf("total_amount: got %v, want 59.80", row["total_amount"])
	}

	byStatus := resp["by_status"].([]interface{})
	counts := map[string]float64{}
	for _, v := range byStatus {
		m := v.(map[string]interface{})
		counts[m["status"].(string)] = m["count"].(float64)
	}
	if counts["COMPLETED"] != 1 || counts["CANCELLED"] != 1 {
		t.Errorf("by_status: got %v", counts)
	}
}
