package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/farxc/prestacao-contas/internal/logger"
)

// DefaultSourceURL serves the 2024 national extract of paid campaign expenses.
var DefaultSourceURL = "https://drive.google.com/uc?export=download&id=1FGFxhoqU75l_9aPo6akxZjN7UNlj1Onb"

type DownloadResult struct {
	OutputPath string
	Bytes      int64
}

// FetchData downloads downloadUrl into outputPath. The file is written next
// to outputPath and renamed into place only once complete.
func FetchData(ctx context.Context, downloadUrl, outputPath string, appLogger *logger.Logger) (DownloadResult, error) {
	const component = "Downloader"

	appLogger.Debug(component, "Starting download: url=%s path=%s", downloadUrl, outputPath)

	client := &http.Client{}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadUrl, nil)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		appLogger.Error(component, "HTTP request failed: url=%s error=%v", downloadUrl, err)
		return DownloadResult{}, fmt.Errorf("request %s: %w", downloadUrl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		appLogger.Warn(component, "Non-OK HTTP response: url=%s status=%s", downloadUrl, resp.Status)
		return DownloadResult{}, fmt.Errorf("request %s: unexpected status %s", downloadUrl, resp.Status)
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return DownloadResult{}, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), filepath.Base(outputPath)+".*.part")
	if err != nil {
		return DownloadResult{}, fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bytesWritten, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		appLogger.Error(component, "Failed to write data to file: path=%s error=%v", tmp.Name(), err)
		return DownloadResult{}, fmt.Errorf("write %s: %w", outputPath, err)
	}

	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return DownloadResult{}, fmt.Errorf("move download into place: %w", err)
	}

	appLogger.Info(component, "Download completed: path=%s size=%d bytes", outputPath, bytesWritten)
	return DownloadResult{OutputPath: outputPath, Bytes: bytesWritten}, nil
}
