package router

import (
	"net/http"

	"shopfront/internal/handler"
	"shopfront/internal/middleware"
	"shopfront/internal/model"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Admin   *handler.AdminHandler
	Media   *handler.MediaHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, authenticator middleware.Authenticator, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	signedIn := middleware.RequireIdentity(logger)
	can := func(c model.Capability, fn http.HandlerFunc) http.Handler {
		return middleware.RequireCapability(c, logger)(fn)
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalog
	mux.HandleFunc("GET /api/home", h.Catalog.Home)
	mux.HandleFunc("GET /api/products", h.Catalog.List)
	mux.HandleFunc("GET /api/products/{id}", h.Catalog.GetByID)
	mux.HandleFunc("GET /api/search", h.Catalog.Search)
	mux.HandleFunc("POST /api/search", h.Catalog.Search)
	mux.HandleFunc("GET /media/{filename}", h.Media.Get)

	// Auth
	mux.HandleFunc("POST /api/auth/sign-up", h.Auth.SignUp)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.Handle("GET /api/auth/profile/{id}", signedIn(http.HandlerFunc(h.Auth.Profile)))
	mux.Handle("POST /api/auth/change-password", signedIn(http.HandlerFunc(h.Auth.ChangePassword)))

	// Cart and orders
	mux.Handle("GET /api/cart", signedIn(http.HandlerFunc(h.Cart.View)))
	mux.Handle("POST /api/cart/items/{productID}", signedIn(http.HandlerFunc(h.Cart.Add)))
	mux.Handle("POST /api/cart/lines/{lineID}/decrement", signedIn(http.HandlerFunc(h.Cart.Decrement)))
	mux.Handle("DELETE /api/cart/lines/{lineID}", signedIn(http.HandlerFunc(h.Cart.Remove)))
	mux.Handle("POST /api/orders", signedIn(http.HandlerFunc(h.Order.Place)))
	mux.Handle("GET /api/orders", signedIn(http.HandlerFunc(h.Order.History)))

	// Admin
	mux.Handle("GET /api/admin/products", can(model.CapManageCatalog, h.Admin.ListProducts))
	mux.Handle("POST /api/admin/products", can(model.CapManageCatalog, h.Admin.CreateProduct))
	mux.Handle("GET /api/admin/products/export", can(model.CapManageCatalog, h.Admin.ExportProducts))
	mux.Handle("PUT /api/admin/products/{id}", can(model.CapManageCatalog, h.Admin.UpdateProduct))
	mux.Handle("DELETE /api/admin/products/{id}", can(model.CapManageCatalog, h.Admin.DeleteProduct))
	mux.Handle("GET /api/admin/orders", can(model.CapManageOrders, h.Admin.ListOrders))
	mux.Handle("PUT /api/admin/orders/{id}/status", can(model.CapManageOrders, h.Admin.UpdateOrderStatus))
	mux.Handle("GET /api/admin/customers", can(model.CapViewCustomers, h.Admin.ListCustomers))

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> Authenticate
	var handler http.Handler = mux
	handler = middleware.Authenticate(authenticator, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
