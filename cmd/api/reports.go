package main

import (
	"context"
	"net/http"

	"github.com/farxc/prestacao-contas/internal/response"
	"github.com/farxc/prestacao-contas/internal/store"
)

// serveReport runs fetch and writes its result in the standard envelope.
func serveReport[T any](w http.ResponseWriter, r *http.Request, message string, fetch func(ctx context.Context) (T, error)) {
	data, err := fetch(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to run report: "+err.Error())
		return
	}

	resp := &response.APIResponse[T]{
		Success: true,
		Data:    data,
		Message: message,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// filterOrError parses the report filter, answering 400 when it is invalid.
func filterOrError(w http.ResponseWriter, r *http.Request, defaultLimit int) (store.ReportFilter, bool) {
	filter, err := parseReportFilter(r, defaultLimit)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return filter, false
	}
	return filter, true
}

// @Summary		Party payments to suppliers
// @Description	Payments above min_amount made by filers of parties in the given sphere.
// @Tags			Reports
// @Produce		json
// @Param			sphere		query	string	false	"Party sphere"	default(Nacional)
// @Param			min_amount	query	number	false	"Minimum amount (default 10000)"
// @Router			/reports/party-supplier-payments [get]
func (app *application) handleGetPartySupplierPayments(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterOrError(w, r, 0)
	if !ok {
		return
	}
	serveReport(w, r, "Successfully retrieved party payments", func(ctx context.Context) ([]store.PartySupplierPayment, error) {
		return app.store.Reports.PartySupplierPayments(ctx, filter)
	})
}

// @Summary		Filers in a state
// @Tags			Reports
// @Produce		json
// @Param			uf	query	string	true	"State abbreviation"
// @Router			/reports/filers-by-state [get]
func (app *application) handleGetFilersByState(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterOrError(w, r, 0)
	if !ok {
		return
	}
	if filter.UF == "" {
		writeJSONError(w, http.StatusBadRequest, "missing uf parameter")
		return
	}
	serveReport(w, r, "Successfully retrieved filers", func(ctx context.Context) ([]store.FilerParty, error) {
		return app.store.Reports.FilersByState(ctx, filter)
	})
}

func (app *application) handleGetSupplierPayments(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterOrError(w, r, 100)
	if !ok {
		return
	}
	serveReport(w, r, "Successfully retrieved supplier payments", func(ctx context.Context) ([]store.SupplierPayment, error) {
		return app.store.Reports.SupplierPayments(ctx, filter)
	})
}

func (app *application) handleGetSupplierTypeTotals(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "Successfully retrieved supplier type totals", app.store.Reports.SupplierTypeTotals)
}

func (app *application) handleGetFilersByParty(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "Successfully retrieved filers by party", app.store.Reports.FilersByParty)
}

func (app *application) handleGetFilersByMunicipality(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "Successfully retrieved filers by municipality", app.store.Reports.FilersByMunicipality)
}

func (app *application) handleGetAverageSpendByParty(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "Successfully retrieved average spend by party", app.store.Reports.AverageSpendByParty)
}

func (app *application) handleGetContractsByMunicipality(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterOrError(w, r, 100)
	if !ok {
		return
	}
	serveReport(w, r, "Successfully retrieved contract counts", func(ctx context.Context) ([]store.ContractCount, error) {
		return app.store.Reports.ContractsByMunicipality(ctx, filter)
	})
}

// @Summary		Supplier totals
// @Tags			Reports
// @Produce		json
// @Param			start_date	query	string	false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query	string	false	"End date (YYYY-MM-DD)"
// @Param			limit		query	int		false	"Maximum rows"
// @Router			/reports/supplier-totals [get]
func (app *application) handleGetSupplierTotals(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterOrError(w, r, 0)
	if !ok {
		return
	}
	serveReport(w, r, "Successfully retrieved supplier totals", func(ctx context.Context) ([]store.SupplierTotal, error) {
		return app.store.Reports.SupplierTotals(ctx, filter)
	})
}

func (app *application) handleGetPartyTotals(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterOrError(w, r, 0)
	if !ok {
		return
	}
	serveReport(w, r, "Successfully retrieved party totals", func(ctx context.Context) ([]store.PartyTotal, error) {
		return app.store.Reports.PartyTotals(ctx, filter)
	})
}

// @Summary		Top municipalities by spend
// @Tags			Reports
// @Produce		json
// @Param			start_date	query	string	false	"Start date (YYYY-MM-DD)"
// @Param			end_date	query	string	false	"End date (YYYY-MM-DD)"
// @Param			limit		query	int		false	"Maximum rows"	default(5)
// @Router			/reports/top-municipalities [get]
func (app *application) handleGetTopMunicipalities(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterOrError(w, r, 5)
	if !ok {
		return
	}
	serveReport(w, r, "Successfully retrieved top municipalities", func(ctx context.Context) ([]store.MunicipalityTotal, error) {
		return app.store.Reports.TopMunicipalities(ctx, filter)
	})
}
