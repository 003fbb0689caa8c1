package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fardaria/api/internal/database"
	"github.com/fardaria/api/internal/service"
	"github.com/fardaria/api/internal/ws"
)

const (
	stockActionAdd    = "ADD"
	stockActionRemove = "REMOVE"
)

// StockHandler handles manual stock adjustments, for corrections and
// receipts that arrive outside the order flow.
type StockHandler struct {
	ledger *service.StockLedger
	hub    EventBroadcaster
}

func NewStockHandler(ledger *service.StockLedger, hub EventBroadcaster) *StockHandler {
	return &StockHandler{ledger: ledger, hub: hub}
}

type adjustStockRequest struct {
	Action   string `json:"action"`
	Quantity int32  `json:"quantity"`
}

// Adjust moves stock for a product by hand. POST /products/{id}/stock.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Action != stockActionAdd && req.Action != stockActionRemove {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action must be ADD or REMOVE"})
		return
	}

	var product database.Product
	if req.Action == stockActionAdd {
		product, err = h.ledger.Increase(r.Context(), id, req.Quantity)
	} else {
		product, err = h.ledger.Decrease(r.Context(), id, req.Quantity)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		case errors.Is(err, service.ErrInsufficientStock):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: adjust stock: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toProductResponse(product)
	broadcast(h.hub, ws.EventStockAdjusted, resp)
	if resp.LowStock {
		broadcast(h.hub, ws.EventStockLow, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}
