package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/farxc/prestacao-contas/internal/campaign"
	"github.com/farxc/prestacao-contas/internal/campaign/normalize"
	"github.com/farxc/prestacao-contas/internal/config"
	"github.com/farxc/prestacao-contas/internal/response"
	"github.com/farxc/prestacao-contas/internal/store"
)

type GetIngestionHistoryResponse = response.APIResponse[[]store.IngestionRun]
type CreateIngestionResponse = response.APIResponse[*campaign.Report]

// @Summary		Get ingestion history
// @Description	Get a list of the latest ingestion runs.
// @Tags			Ingestion
// @Produce		json
// @Param			limit	query		int							false	"Limit the number of results"	default(10)
// @Success		200		{object}	GetIngestionHistoryResponse	"Successfully retrieved latest ingestion records"
// @Failure		500		{object}	response.ErrorResponse		"Failed to get ingestion history"
// @Router			/ingestion/history [get]
func (app *application) handleGetIngestionHistory(w http.ResponseWriter, r *http.Request) {
	limitParam := r.URL.Query().Get("limit")
	limit := 10
	if limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil {
			limit = l
		}
	}

	ctx := r.Context()
	if err := app.store.Schema.EnsureLedger(ctx); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to open run ledger: "+err.Error())
		return
	}

	data, err := app.store.IngestionHistory.GetLatest(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get ingestion history: "+err.Error())
		return
	}

	response := &GetIngestionHistoryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved latest ingestion records",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Run an ingestion
// @Description	Loads the configured source file. Runs are serialized.
// @Tags			Ingestion
// @Accept			json
// @Produce		json
// @Param			ingestion	body		object{mode:string,amount_policy:string}	false	"Overrides of ingest settings"
// @Success		201			{object}	CreateIngestionResponse						"Ingestion finished"
// @Failure		400			{object}	response.ErrorResponse						"Invalid request payload"
// @Failure		422			{object}	response.ErrorResponse						"Ingestion failed"
// @Router			/ingestion [post]
func (app *application) handleCreateIngestion(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Mode         string `json:"mode"`
		AmountPolicy string `json:"amount_policy"`
	}

	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
	}

	opts := campaign.Options{
		SourcePath:      app.config.Source.Path,
		SourceURL:       app.config.Source.URL,
		DownloadTimeout: app.config.Source.DownloadTimeout,
		Mode:            app.config.Ingest.Mode,
		AmountPolicy:    normalize.AmountPolicy(app.config.Ingest.AmountPolicy),
		Trigger:         store.TriggerTypeAPI,
	}

	switch input.Mode {
	case "":
	case config.ModeForce, config.ModeReuse:
		opts.Mode = input.Mode
	default:
		writeJSONError(w, http.StatusBadRequest, config.ErrInvalidMode.Error())
		return
	}

	switch input.AmountPolicy {
	case "":
	case config.AmountPolicyFail, config.AmountPolicySkip:
		opts.AmountPolicy = normalize.AmountPolicy(input.AmountPolicy)
	default:
		writeJSONError(w, http.StatusBadRequest, config.ErrInvalidAmountPolicy.Error())
		return
	}

	report, err := app.pipeline.Run(r.Context(), opts)
	if err != nil {
		var se *campaign.StageError
		if errors.As(err, &se) {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := &CreateIngestionResponse{
		Success: true,
		Data:    report,
		Message: "Ingestion finished",
	}
	if report.Skipped {
		response.Message = "Ingestion skipped, existing tables reused"
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
