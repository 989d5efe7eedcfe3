package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farxc/prestacao-contas/internal/logger"
)

func TestFetchData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/despesas.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("CD_MUNICIPIO\n1\n"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "data", "despesas.csv")

	res, err := FetchData(context.Background(), srv.URL+"/despesas.csv", out, logger.Discard())
	if err != nil {
		t.Fatalf("FetchData() error = %v", err)
	}
	if res.Bytes != 15 || res.OutputPath != out {
		t.Errorf("FetchData() = %+v", res)
	}
	got, err := os.ReadFile(out)
	if err != nil || string(got) != "CD_MUNICIPIO\n1\n" {
		t.Errorf("downloaded file = %q, %v", got, err)
	}

	missing := filepath.Join(t.TempDir(), "missing.csv")
	if _, err := FetchData(context.Background(), srv.URL+"/nope", missing, logger.Discard()); err == nil {
		t.Error("FetchData() error = nil for 404")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestFetchData_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := FetchData(ctx, srv.URL, filepath.Join(t.TempDir(), "x.csv"), logger.Discard()); err == nil {
		t.Error("FetchData() error = nil, want deadline error")
	}
}
