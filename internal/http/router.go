package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/http/account"
	"github.com/MrJamesThe3rd/invoicer/internal/http/client"
	"github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/http/portal"
	"github.com/MrJamesThe3rd/invoicer/internal/http/product"
	"github.com/MrJamesThe3rd/invoicer/internal/http/web"
)

// Tokens are the issuers that verify bearer tokens on protected routes.
type Tokens struct {
	Business *auth.Issuer
	Client   *auth.Issuer
}

func New(
	allowedOrigins []string,
	tokens Tokens,
	accountV1 *account.Handler,
	invoicesV1 *invoice.Handler,
	clientsV1 *client.Handler,
	productsV1 *product.Handler,
	portalV1 *portal.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireBusiness := web.Authenticate(tokens.Business, accountV1.Verify)
	requireClient := web.Authenticate(tokens.Client, portalV1.Verify)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/auth", func(r chi.Router) {
			accountV1.PublicRoutes(r)
			r.With(requireBusiness).Group(accountV1.Routes)
		})

		r.With(requireBusiness).Route("/users", accountV1.SettingsRoutes)

		r.Route("/invoices", func(r chi.Router) {
			r.Use(requireBusiness)
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Use(requireBusiness)
			r.Use(middleware.AllowContentType("application/json"))
			clientsV1.Routes(r)
		})

		r.With(requireBusiness).Route("/products", productsV1.Routes)

		r.Route("/client-portal", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			portalV1.PublicRoutes(r)
			r.With(requireBusiness).Group(portalV1.BusinessRoutes)
			r.With(requireClient).Group(portalV1.ClientRoutes)
		})
	})

	return router
}
