package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fardaria/api/internal/handler"
	"github.com/fardaria/api/internal/service"
	"github.com/fardaria/api/internal/ws"
)

// Store is everything the HTTP layer reads and writes outside the order
// engine's transactions. Satisfied by *database.Queries and *memstore.Store.
type Store interface {
	handler.ProductStore
	handler.CustomerStore
	handler.OrderReadStore
	handler.ReportStore
	service.StockStore
}

// New creates a Chi router with all application routes wired up.
func New(store Store, db service.TxBeginner, newStore service.NewOrderStore, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration; the dashboard runs on the shop LAN
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket event stream for dashboards
	r.Get("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Products and manual stock adjustments
	productHandler := handler.NewProductHandler(store)
	stockHandler := handler.NewStockHandler(service.NewStockLedger(store), hub)
	r.Route("/products", func(r chi.Router) {
		productHandler.RegisterRoutes(r)
		r.Post("/{id}/stock", stockHandler.Adjust)
	})

	// Customers
	customerHandler := handler.NewCustomerHandler(store)
	r.Route("/customers", customerHandler.RegisterRoutes)

	// Orders
	orderService := service.NewOrderService(db, newStore)
	orderHandler := handler.NewOrderHandler(orderService, store, hub)
	r.Route("/orders", orderHandler.RegisterRoutes)

	// Reports
	reportHandler := handler.NewReportHandler(store)
	r.Route("/reports", reportHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
