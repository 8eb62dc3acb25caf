package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Cart          *CartHandler
	Vendors       *VendorHandler
	Checkout      *CheckoutHandler
	Notifications *NotificationHandler
	// Favorites is optional; the routes are absent without a favorites service.
	Favorites *FavoritesHandler
}

func NewRouter(auth *Authenticator, handlers Handlers, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/vendors/{vendor_id}", func(r chi.Router) {
			r.Get("/products", handlers.Vendors.Products)
			r.Get("/order-types", handlers.Vendors.OrderTypes)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", handlers.Cart.GetCart)
				r.Delete("/", handlers.Cart.ClearCart)
				r.Post("/items", handlers.Cart.AddItem)
				r.Put("/items/{product_id}", handlers.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", handlers.Cart.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", handlers.Checkout.PlaceOrder)
				r.Get("/status", handlers.Checkout.Status)
				r.Get("/attempts", handlers.Checkout.ListAttempts)
			})

			r.Get("/notifications/latest", handlers.Notifications.Latest)

			if handlers.Favorites != nil {
				r.Route("/favorites", func(r chi.Router) {
					r.Get("/", handlers.Favorites.List)
					r.Post("/{product_id}", handlers.Favorites.Add)
					r.Delete("/{product_id}", handlers.Favorites.Remove)
				})
			}
		})
	})

	return r
}
