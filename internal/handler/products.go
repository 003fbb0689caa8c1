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
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries and *memstore.Store; narrow interface for
// testability.
type ProductStore interface {
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProducts(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error)
	UpdateProductCatalog(ctx context.Context, arg database.UpdateProductCatalogParams) (database.Product, error)
}

// ProductHandler handles catalog CRUD endpoints.
type ProductHandler struct {
	store ProductStore
}

func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
// Mounted at /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Patch("/{id}", h.Update)
}

// --- Request / Response types ---

type createProductRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	School      string `json:"school"`
	Price       string `json:"price"`
	Quantity    int32  `json:"quantity"`
	Description string `json:"description"`
}

// updateProductRequest only touches descriptive fields. Stock changes go
// through POST /products/{id}/stock so every movement hits the ledger.
type updateProductRequest struct {
	Price       *string `json:"price"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	School      string    `json:"school"`
	Price       string    `json:"price"`
	Quantity    int32     `json:"quantity"`
	LowStock    bool      `json:"low_stock"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Size:      p.Size,
		Color:     p.Color,
		School:    p.School,
		Price:     numericToString(p.Price),
		Quantity:  p.Quantity,
		LowStock:  p.Quantity < service.LowStockThreshold,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Description.Valid {
		resp.Description = &p.Description.String
	}
	return resp
}

// --- Handlers ---

// List returns the catalog, optionally filtered by school and category.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var params database.ListProductsParams
	if school := r.URL.Query().Get("school"); school != "" {
		params.School = pgtype.Text{String: school, Valid: true}
	}
	if category := r.URL.Query().Get("category"); category != "" {
		if !enum.IsValidCategory(category) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
			return
		}
		params.Category = pgtype.Text{String: category, Valid: true}
	}

	products, err := h.store.ListProducts(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single product by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create adds a new catalog entry.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !enum.IsValidCategory(req.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}
	if !enum.IsValidSize(req.Size) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid size"})
		return
	}
	if req.Color == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "color is required"})
		return
	}
	if req.School == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "school is required"})
		return
	}
	if req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be >= 0"})
		return
	}

	if req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		}
		return
	}

	desc := pgtype.Text{}
	if req.Description != "" {
		desc = pgtype.Text{String: req.Description, Valid: true}
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		Name:        req.Name,
		Category:    req.Category,
		Size:        req.Size,
		Color:       req.Color,
		School:      req.School,
		Price:       price,
		Quantity:    req.Quantity,
		Description: desc,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "product already exists"})
			return
		}
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update modifies descriptive fields of an existing product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params := database.UpdateProductCatalogParams{ID: id}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			if errors.Is(err, errNegativePrice) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
			} else {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
			}
			return
		}
		params.Price = price
	}
	if req.Category != nil {
		if !enum.IsValidCategory(*req.Category) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
			return
		}
		params.Category = pgtype.Text{String: *req.Category, Valid: true}
	}
	if req.Description != nil {
		params.Description = pgtype.Text{String: *req.Description, Valid: true}
	}

	product, err := h.store.UpdateProductCatalog(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}
