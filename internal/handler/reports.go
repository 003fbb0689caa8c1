package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fardaria/api/internal/database"
	"github.com/fardaria/api/internal/service"
)

// ReportStore defines the aggregate queries behind the report endpoints.
type ReportStore interface {
	GetInventorySummary(ctx context.Context) (database.InventorySummaryRow, error)
	ListLowStockProducts(ctx context.Context, threshold int32) ([]database.Product, error)
	ListSalesBySchool(ctx context.Context) ([]database.SalesBySchoolRow, error)
	ListOrderCountsByStatus(ctx context.Context) ([]database.OrderCountsByStatusRow, error)
}

// ReportHandler serves the dashboard aggregates.
type ReportHandler struct {
	store ReportStore
}

func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
// Mounted at /reports.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.Inventory)
	r.Get("/sales", h.Sales)
}

type inventoryReportResponse struct {
	ProductCount int64             `json:"product_count"`
	TotalUnits   int64             `json:"total_units"`
	TotalValue   string            `json:"total_value"`
	LowStock     []productResponse `json:"low_stock"`
}

type salesBySchoolResponse struct {
	School      string `json:"school"`
	OrderCount  int64  `json:"order_count"`
	TotalUnits  int64  `json:"total_units"`
	TotalAmount string `json:"total_amount"`
}

type orderCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type salesReportResponse struct {
	BySchool []salesBySchoolResponse `json:"by_school"`
	ByStatus []orderCountResponse    `json:"by_status"`
}

// Inventory returns catalog totals plus the products running low.
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.GetInventorySummary(r.Context())
	if err != nil {
		log.Printf("ERROR: inventory summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	lowStock, err := h.store.ListLowStockProducts(r.Context(), service.LowStockThreshold)
	if err != nil {
		log.Printf("ERROR: list low stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := inventoryReportResponse{
		ProductCount: summary.ProductCount,
		TotalUnits:   summary.TotalUnits,
		TotalValue:   numericToString(summary.TotalValue),
		LowStock:     make([]productResponse, len(lowStock)),
	}
	for i, p := range lowStock {
		resp.LowStock[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Sales returns sale totals per school and order counts per status.
// Cancelled sales are excluded from the school totals.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	bySchool, err := h.store.ListSalesBySchool(r.Context())
	if err != nil {
		log.Printf("ERROR: sales by school: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byStatus, err := h.store.ListOrderCountsByStatus(r.Context())
	if err != nil {
		log.Printf("ERROR: order counts by status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := salesReportResponse{
		BySchool: make([]salesBySchoolResponse, len(bySchool)),
		ByStatus: make([]orderCountResponse, len(byStatus)),
	}
	for i, row := range bySchool {
		resp.BySchool[i] = salesBySchoolResponse{
			School:      row.School,
			OrderCount:  row.OrderCount,
			TotalUnits:  row.TotalUnits,
			TotalAmount: numericToString(row.TotalAmount),
		}
	}
	for i, row := range byStatus {
		resp.ByStatus[i] = orderCountResponse{Status: row.Status, Count: row.Count}
	}

	writeJSON(w, http.StatusOK, resp)
}
