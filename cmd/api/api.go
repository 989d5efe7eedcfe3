package main

import (
	"net/http"
	"time"

	"github.com/farxc/prestacao-contas/internal/campaign"
	"github.com/farxc/prestacao-contas/internal/config"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/farxc/prestacao-contas/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type application struct {
	config    *config.Config
	store     *store.Storage
	pipeline  *campaign.Pipeline
	appLogger *logger.Logger
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			// Set a timeout value on the request context (ctx), that will signal
			// through ctx.Done() that the request has timed out and further
			// processing should be stopped.
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/health", app.healthCheckHandler)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/party-supplier-payments", app.handleGetPartySupplierPayments)
				r.Get("/filers-by-state", app.handleGetFilersByState)
				r.Get("/supplier-payments", app.handleGetSupplierPayments)
				r.Get("/supplier-type-totals", app.handleGetSupplierTypeTotals)
				r.Get("/filers-by-party", app.handleGetFilersByParty)
				r.Get("/filers-by-municipality", app.handleGetFilersByMunicipality)
				r.Get("/average-spend-by-party", app.handleGetAverageSpendByParty)
				r.Get("/contracts-by-municipality", app.handleGetContractsByMunicipality)
				r.Get("/supplier-totals", app.handleGetSupplierTotals)
				r.Get("/party-totals", app.handleGetPartyTotals)
				r.Get("/top-municipalities", app.handleGetTopMunicipalities)
			})
			r.Route("/tables", func(r chi.Router) {
				r.Get("/", app.handleGetTableCounts)
				r.Get("/{table}", app.handleExploreTable)
			})
			r.Get("/ingestion/history", app.handleGetIngestionHistory)
		})

		// A full load can outlast the request timeout.
		r.Post("/ingestion", app.handleCreateIngestion)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.API.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.appLogger.Info("API", "Server started on %s", app.config.API.Addr)
	return srv.ListenAndServe()
}
