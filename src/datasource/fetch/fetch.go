// fetch.go
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"trafficstops/src/storage"
)

// downloadTimeout bounds the whole snapshot transfer.
const downloadTimeout = 5 * time.Minute

// FetchError is a failed snapshot download. It is fatal for the run: with
// no snapshot there is nothing to analyze.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EnsureSnapshot makes sure the snapshot file exists at path, downloading
// it from url when absent. An existing snapshot is reused indefinitely
// unless refresh forces a re-download.
func EnsureSnapshot(url, path string, refresh bool, logger *storage.Logger) error {
	if !refresh {
		if _, err := os.Stat(path); err == nil {
			logger.Debug(fmt.Sprintf("snapshot %s already cached, skipping download", path))
			return nil
		}
	}

	logger.Info(fmt.Sprintf("downloading snapshot from %s", url))
	start := time.Now()

	if err := download(url, path); err != nil {
		return &FetchError{URL: url, Err: err}
	}

	logger.Info(fmt.Sprintf("snapshot saved to %s (%v)", path, time.Since(start).Round(time.Millisecond)))
	return nil
}

// download streams the response into a temp file next to path and renames
// it into place, so a failed transfer never leaves a truncated snapshot.
func download(url, path string) error {
	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
