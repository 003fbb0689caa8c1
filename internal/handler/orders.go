package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fardaria/api/internal/database"
	"github.com/fardaria/api/internal/enum"
	"github.com/fardaria/api/internal/service"
	"github.com/fardaria/api/internal/ws"
)

// OrderReadStore defines the read-only database methods order handlers use
// directly. Writes go through the OrderService so stock effects stay
// transactional.
type OrderReadStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   *service.OrderService
	store OrderReadStore
	hub   EventBroadcaster
}

func NewOrderHandler(svc *service.OrderService, store OrderReadStore, hub EventBroadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType string `json:"order_type"`
	service.CreateOrderRequest
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type orderLineResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	LineNo    int32     `json:"line_no"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Subtotal  string    `json:"subtotal"`
}

type orderResponse struct {
	ID            uuid.UUID  `json:"id"`
	OrderNumber   string     `json:"order_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	School        string     `json:"school"`
	OrderType     string     `json:"order_type"`
	Status        string     `json:"status"`
	PaymentMethod *string    `json:"payment_method"`
	Notes         *string    `json:"notes"`
	TotalQuantity int32      `json:"total_quantity"`
	TotalAmount   string     `json:"total_amount"`
	DeliveryDue   *string    `json:"delivery_due"`
	DeliveredAt   *time.Time `json:"delivered_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type orderDetailResponse struct {
	orderResponse
	Lines []orderLineResponse `json:"lines"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		School:        o.School,
		OrderType:     o.OrderType,
		Status:        o.Status,
		TotalQuantity: o.TotalQuantity,
		TotalAmount:   numericToString(o.TotalAmount),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.PaymentMethod.Valid {
		resp.PaymentMethod = &o.PaymentMethod.String
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	if o.DeliveryDue.Valid {
		due := o.DeliveryDue.Time.Format("2006-01-02")
		resp.DeliveryDue = &due
	}
	if o.DeliveredAt.Valid {
		resp.DeliveredAt = &o.DeliveredAt.Time
	}
	return resp
}

func toOrderDetailResponse(detail service.OrderDetail) orderDetailResponse {
	resp := orderDetailResponse{orderResponse: toOrderResponse(detail.Order)}
	resp.Lines = make([]orderLineResponse, len(detail.Lines))
	for i, line := range detail.Lines {
		resp.Lines[i] = orderLineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			LineNo:    line.LineNo,
			Quantity:  line.Quantity,
			UnitPrice: numericToString(line.UnitPrice),
			Subtotal:  numericToString(line.Subtotal),
		}
	}
	return resp
}

// writeOrderError maps service errors onto HTTP statuses. Validation failures
// are 400, missing references 404, state conflicts 409.
func writeOrderError(w http.ResponseWriter, err error, logPrefix string) {
	switch {
	case errors.Is(err, service.ErrEmptyLines),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProductID),
		errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidDeliveryDate),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrSchoolRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDeliveredImmutable):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", logPrefix, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// --- Handlers ---

// List returns orders, optionally filtered by status, school and type.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var params database.ListOrdersParams
	if status := r.URL.Query().Get("status"); status != "" {
		if !enum.IsValidStatus(status) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: status, Valid: true}
	}
	if school := r.URL.Query().Get("school"); school != "" {
		params.School = pgtype.Text{String: school, Valid: true}
	}
	if orderType := r.URL.Query().Get("type"); orderType != "" {
		if !enum.IsValidOrderType(orderType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order type"})
			return
		}
		params.OrderType = pgtype.Text{String: orderType, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single order with its lines.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	lines, err := h.store.ListOrderLines(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list order lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(service.OrderDetail{Order: order, Lines: lines}))
}

// Create places a new sale or production order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !enum.IsValidOrderType(req.OrderType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order type"})
		return
	}

	var detail service.OrderDetail
	var err error
	if req.OrderType == enum.OrderTypeSale {
		detail, err = h.svc.CreateSaleOrder(r.Context(), req.CreateOrderRequest)
	} else {
		detail, err = h.svc.CreateProductionOrder(r.Context(), req.CreateOrderRequest)
	}
	if err != nil {
		writeOrderError(w, err, "create order")
		return
	}

	resp := toOrderDetailResponse(detail)
	broadcast(h.hub, ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateStatus transitions an order through its status machine.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.TransitionOrder(r.Context(), id, req.Status)
	if err != nil {
		writeOrderError(w, err, "update order status")
		return
	}

	resp := toOrderResponse(order)
	broadcast(h.hub, ws.EventOrderStatusChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes an order and reverses its outstanding stock effect.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		writeOrderError(w, err, "delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
