package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// downloadChunkSize is the size of each write while streaming the catalog to disk.
const downloadChunkSize = 1024

// ErrBadStatus is returned when the catalog endpoint answers with a non-200 status.
var ErrBadStatus = errors.New("bad status from pricing endpoint")

// Fetcher keeps a local copy of the pricing catalog.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewFetcher returns a Fetcher using client, or http.DefaultClient when nil.
// A zero timeout leaves the request unbounded.
func NewFetcher(client *http.Client, timeout time.Duration, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, timeout: timeout, logger: logger}
}

// EnsureLocalCopy downloads url to dest unless dest already exists. There is
// no freshness check and no retry; errors are returned to the caller.
func (f *Fetcher) EnsureLocalCopy(ctx context.Context, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", dest, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	f.logger.Debug().Str("url", url).Msg("downloading AWS pricing file")
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	written, err := writeFileAtomic(dest, func(w io.Writer) (int64, error) {
		return io.CopyBuffer(onlyWriter{w}, onlyReader{resp.Body}, make([]byte, downloadChunkSize))
	})
	if err != nil {
		return err
	}

	f.logger.Debug().
		Str("dest", dest).
		Int64("bytes", written).
		Dur("elapsed", time.Since(start)).
		Msg("download complete")
	return nil
}

// onlyReader and onlyWriter hide ReaderFrom/WriterTo so io.CopyBuffer honours
// the fixed chunk size instead of delegating to the file's own copy path.
type onlyReader struct{ io.Reader }

type onlyWriter struct{ io.Writer }

// writeFileAtomic writes to a temp file next to path and renames it into place,
// so a partially written file is never visible under the final name.
func writeFileAtomic(path string, write func(io.Writer) (int64, error)) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".pricing-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := write(tmpFile)
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmpFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return n, fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	success = true
	return n, nil
}

// fileExists reports whether path exists. Stat errors other than
// "not exist" are treated as existing so callers surface them on open.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
