package main

import (
	"errors"
	"net/http"

	"github.com/farxc/prestacao-contas/internal/response"
	"github.com/farxc/prestacao-contas/internal/store"
	"github.com/go-chi/chi/v5"
)

type GetTablePageResponse = response.APIResponse[*store.TablePage]

func (app *application) handleGetTableCounts(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "Successfully retrieved table counts", app.store.Schema.Counts)
}

// @Summary		Explore a table
// @Description	First rows of one of the six entity tables with its total row count.
// @Tags			Tables
// @Produce		json
// @Param			table	path		string					true	"Table name"
// @Param			limit	query		int						false	"Maximum rows"	default(50)
// @Success		200		{object}	GetTablePageResponse
// @Failure		404		{object}	response.ErrorResponse	"Unknown table"
// @Router			/tables/{table} [get]
func (app *application) handleExploreTable(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 50)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := app.store.Reports.ExploreTable(r.Context(), chi.URLParam(r, "table"), limit)
	if errors.Is(err, store.ErrUnknownTable) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to read table: "+err.Error())
		return
	}

	resp := &GetTablePageResponse{
		Success: true,
		Data:    page,
		Message: "Successfully retrieved table rows",
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
