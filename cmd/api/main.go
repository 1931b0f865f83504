package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/business"
	businessStore "github.com/MrJamesThe3rd/invoicer/internal/business/store"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	clientStore "github.com/MrJamesThe3rd/invoicer/internal/client/store"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	invoicerHttp "github.com/MrJamesThe3rd/invoicer/internal/http"
	accountHandler "github.com/MrJamesThe3rd/invoicer/internal/http/account"
	clientHandler "github.com/MrJamesThe3rd/invoicer/internal/http/client"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	portalHandler "github.com/MrJamesThe3rd/invoicer/internal/http/portal"
	productHandler "github.com/MrJamesThe3rd/invoicer/internal/http/product"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicer/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/invoicer/internal/ledger/store"
	"github.com/MrJamesThe3rd/invoicer/internal/paymentrequest"
	paymentRequestStore "github.com/MrJamesThe3rd/invoicer/internal/paymentrequest/store"
	"github.com/MrJamesThe3rd/invoicer/internal/pdf"
	"github.com/MrJamesThe3rd/invoicer/internal/product"
	"github.com/MrJamesThe3rd/invoicer/internal/product/csvimport"
	productStore "github.com/MrJamesThe3rd/invoicer/internal/product/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		slog.Info("migrations applied")
	}

	var (
		businessTokens = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.AudienceBusiness)
		clientTokens   = auth.NewIssuer(cfg.Auth.ClientJWTSecret, cfg.Auth.ClientTokenTTL, auth.AudienceClient)
		approvalTokens = auth.NewIssuer(cfg.Auth.ClientJWTSecret, cfg.Auth.ApprovalTTL, auth.AudienceApproval)
	)

	invoices := invoiceStore.New(db)

	var (
		businessService = business.NewService(businessStore.New(db), business.Defaults{
			Prefix:       cfg.Invoice.Prefix,
			Currency:     cfg.Invoice.Currency,
			PaymentTerms: cfg.Invoice.PaymentTerms,
		})
		clientService = client.NewService(clientStore.New(db), approvalTokens, client.Settings{
			PaymentTerms: cfg.Invoice.PaymentTerms,
			PortalURL:    cfg.Portal.URL,
		})
		invoiceService = invoice.NewService(invoices, invoice.Settings{
			Prefix:         cfg.Invoice.Prefix,
			Currency:       cfg.Invoice.Currency,
			PaymentTerms:   cfg.Invoice.PaymentTerms,
			PaymentRetries: cfg.Invoice.PaymentRetries,
		})
		ledgerService         = ledger.NewService(ledgerStore.New(db))
		paymentRequestService = paymentrequest.NewService(paymentRequestStore.New(db, invoices), cfg.Invoice.PaymentRetries)
		productService        = product.NewService(productStore.New(db), csvimport.NewParser())
	)

	var (
		accountH = accountHandler.NewHandler(businessService, businessTokens)
		invoiceH = invoiceHandler.NewHandler(invoiceService, pdf.NewRenderer(language.Make(cfg.App.Locale)))
		clientH  = clientHandler.NewHandler(clientService, ledgerService)
		productH = productHandler.NewHandler(productService)
		portalH  = portalHandler.NewHandler(clientService, invoiceService, paymentRequestService, clientTokens)
	)

	router := invoicerHttp.New(
		cfg.CORS.AllowedOrigins,
		invoicerHttp.Tokens{Business: businessTokens, Client: clientTokens},
		accountH, invoiceH, clientH, productH, portalH,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
