package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farxc/prestacao-contas/internal/campaign"
	"github.com/farxc/prestacao-contas/internal/config"
	"github.com/farxc/prestacao-contas/internal/db"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/farxc/prestacao-contas/internal/response"
	"github.com/farxc/prestacao-contas/internal/store"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"
)

var sample = []string{
	"CD_MUNICIPIO;NM_MUNICIPIO;SG_UF;SG_PARTIDO;NM_PARTIDO;DS_TP_ESFERA_PARTIDARIA;NR_CPF_CNPJ_FORNECEDOR;NM_FORNECEDOR;DS_TP_FORNECEDOR;NR_CNPJ_PRESTADOR_CONTA;NR_DOCUMENTO;CD_TP_DOCUMENTO;DS_TP_DOCUMENTO;DT_PAGAMENTO;VR_PAGAMENTO",
	"3550308;SÃO PAULO;SP;PT;Partido dos Trabalhadores;Nacional;00123456000190;Gráfica Alfa;Pessoa Jurídica;11111111000111;NF-1;1;Nota Fiscal;05/03/2024;1.234,56",
	"3304557;RIO DE JANEIRO;RJ;PV;Partido Verde;Estadual;12345678909;João Silva;Pessoa Física;22222222000122;REC-9;2;Recibo;20/03/2024;500",
}

func newTestApp(t *testing.T) *application {
	t.Helper()
	dir := t.TempDir()

	encoded, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(sample, "\n") + "\n")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	cfg := config.Default()
	cfg.Source.Path = filepath.Join(dir, "despesas.csv")
	cfg.Store.Path = filepath.Join(dir, "api.db")
	if err := os.WriteFile(cfg.Source.Path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	conn, err := db.New(cfg.Store.Path, 1000, 2, 2, "1m")
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	storage := store.NewStorage(conn)
	appLogger := logger.Discard()
	return &application{
		config:    cfg,
		store:     storage,
		pipeline:  campaign.NewPipeline(storage, appLogger),
		appLogger: appLogger,
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rr := do(t, app.mount(), http.MethodGet, "/v1/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "available" || body["pipeline"] != string(campaign.StateIdle) {
		t.Errorf("body = %v", body)
	}
}

func TestIngestThenQuery(t *testing.T) {
	app := newTestApp(t)
	h := app.mount()

	rr := do(t, h, http.MethodPost, "/v1/ingestion", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /v1/ingestion status = %d body = %s", rr.Code, rr.Body)
	}
	var created response.APIResponse[campaign.Report]
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Data.Counts.Despesa != 2 {
		t.Errorf("Despesa count = %d, want 2", created.Data.Counts.Despesa)
	}

	rr = do(t, h, http.MethodGet, "/v1/reports/supplier-totals?start_date=2024-03-01&end_date=2024-03-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("supplier-totals status = %d body = %s", rr.Code, rr.Body)
	}
	var totals response.APIResponse[[]store.SupplierTotal]
	if err := json.NewDecoder(rr.Body).Decode(&totals); err != nil {
		t.Fatal(err)
	}
	want := []store.SupplierTotal{
		{Fornecedor: "Gráfica Alfa", Pagamentos: 1, Total: 1234.56},
		{Fornecedor: "João Silva", Pagamentos: 1, Total: 500},
	}
	if diff := cmp.Diff(want, totals.Data); diff != "" {
		t.Errorf("supplier totals mismatch (-want +got):\n%s", diff)
	}

	rr = do(t, h, http.MethodGet, "/v1/reports/filers-by-state?uf=sp", "")
	var filers response.APIResponse[[]store.FilerParty]
	if err := json.NewDecoder(rr.Body).Decode(&filers); err != nil {
		t.Fatal(err)
	}
	if len(filers.Data) != 1 || filers.Data[0].SiglaPartido != "PT" {
		t.Errorf("filers-by-state = %+v", filers.Data)
	}

	rr = do(t, h, http.MethodGet, "/v1/tables/Local?limit=1", "")
	var page response.APIResponse[store.TablePage]
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Data.Total != 2 || len(page.Data.Rows) != 1 {
		t.Errorf("table page = total %d rows %d, want 2 and 1", page.Data.Total, len(page.Data.Rows))
	}

	rr = do(t, h, http.MethodGet, "/v1/ingestion/history", "")
	var history response.APIResponse[[]store.IngestionRun]
	if err := json.NewDecoder(rr.Body).Decode(&history); err != nil {
		t.Fatal(err)
	}
	if len(history.Data) != 1 || history.Data[0].TriggerType != store.TriggerTypeAPI {
		t.Errorf("history = %+v, want one api run", history.Data)
	}
}

func TestBadRequests(t *testing.T) {
	app := newTestApp(t)
	h := app.mount()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"unknown table", http.MethodGet, "/v1/tables/ingestion_runs", "", http.StatusNotFound},
		{"bad date", http.MethodGet, "/v1/reports/top-municipalities?start_date=03/2024", "", http.StatusBadRequest},
		{"reversed range", http.MethodGet, "/v1/reports/party-totals?start_date=2024-05-01&end_date=2024-01-01", "", http.StatusBadRequest},
		{"missing uf", http.MethodGet, "/v1/reports/filers-by-state", "", http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/v1/tables/Local?limit=-3", "", http.StatusBadRequest},
		{"bad mode", http.MethodPost, "/v1/ingestion", `{"mode":"sometimes"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/ingestion", `{"force":true}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.target, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body)
			}
			var e response.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&e); err != nil || e.Error == "" {
				t.Errorf("error body = %+v, %v", e, err)
			}
		})
	}
}

func TestIngestionFailure(t *testing.T) {
	app := newTestApp(t)
	app.config.Source.Path = filepath.Join(t.TempDir(), "absent.csv")

	rr := do(t, app.mount(), http.MethodPost, "/v1/ingestion", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rr.Code)
	}
	if app.pipeline.State() != campaign.StateFailed {
		t.Errorf("pipeline state = %s, want Failed", app.pipeline.State())
	}
}

func TestParseReportFilter_Defaults(t *testing.T) {
	tests := []struct {
		target    string
		minAmount float64
		sphere    string
	}{
		{"/v1/reports/party-supplier-payments", store.DefaultMinAmount, "Nacional"},
		{"/v1/reports/party-supplier-payments?min_amount=0&sphere=Estadual", 0, "Estadual"},
		{"/v1/reports/party-supplier-payments?min_amount=2500.5", 2500.5, "Nacional"},
	}

	for _, tt := range tests {
		filter, err := parseReportFilter(httptest.NewRequest(http.MethodGet, tt.target, nil), 10)
		if err != nil {
			t.Errorf("parseReportFilter(%q) error = %v", tt.target, err)
			continue
		}
		if filter.MinAmount != tt.minAmount || filter.Sphere != tt.sphere {
			t.Errorf("parseReportFilter(%q) = min %v sphere %q, want %v %q", tt.target, filter.MinAmount, filter.Sphere, tt.minAmount, tt.sphere)
		}
	}
}
