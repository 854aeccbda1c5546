// Package fetch downloads port source archives, verifies their integrity
// hashes, and extracts them to deterministic paths under the ports directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/vk/portsmith/internal/ctxlog"
)

// IntegrityError reports a downloaded archive whose hash does not match the
// manifest's declared hash. It is terminal: no extraction or build happens on
// a mismatch.
type IntegrityError struct {
	URL      string
	Expected digest.Digest
	Actual   digest.Digest
}

// Error implements the error interface for IntegrityError.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s: expected %s, got %s",
		e.URL, e.Expected, e.Actual)
}

// Fetcher retrieves a port's source archive and returns the local directory
// the verified archive was extracted to.
type Fetcher interface {
	Fetch(ctx context.Context, url, destName string, expected digest.Digest) (string, error)
}

// HTTPFetcher downloads archives over HTTP(S) into a download directory and
// extracts them under the ports directory. A destination that already exists
// is reused without re-downloading; Clear the ports directory to force a
// refetch.
type HTTPFetcher struct {
	client      *http.Client
	downloadDir string
	portsDir    string
}

// NewHTTPFetcher creates a fetcher. A nil client falls back to a plain
// http.Client shared across fetches to reuse connections.
func NewHTTPFetcher(client *http.Client, downloadDir, portsDir string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{
		client:      client,
		downloadDir: downloadDir,
		portsDir:    portsDir,
	}
}

// Fetch downloads the archive at url, verifies it against the expected
// digest, and extracts it to <portsDir>/<destName> with the archive's
// top-level directory stripped. It returns that path.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, destName string, expected digest.Digest) (string, error) {
	logger := ctxlog.FromContext(ctx).With("url", url)
	dest := filepath.Join(f.portsDir, destName)

	if _, err := os.Stat(dest); err == nil {
		logger.Debug("Source already fetched, reusing.", "path", dest)
		return dest, nil
	}

	archivePath, err := f.download(ctx, url, expected)
	if err != nil {
		return "", err
	}

	logger.Debug("Extracting archive.", "archive", archivePath, "dest", dest)
	if err := extractArchive(archivePath, dest); err != nil {
		os.RemoveAll(dest)
		return "", fmt.Errorf("failed to extract %s: %w", url, err)
	}

	logger.Info("Port source fetched.", "path", dest)
	return dest, nil
}

// download streams the response body to the download directory while
// computing its digest, and fails with IntegrityError before anything else
// can touch the payload.
func (f *HTTPFetcher) download(ctx context.Context, url string, expected digest.Digest) (string, error) {
	if err := expected.Validate(); err != nil {
		return "", fmt.Errorf("invalid expected digest for %s: %w", url, err)
	}
	if err := os.MkdirAll(f.downloadDir, 0o755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: unexpected status %s", url, resp.Status)
	}

	archivePath := filepath.Join(f.downloadDir, filepath.Base(url))
	out, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	digester := expected.Algorithm().Digester()
	if _, err := io.Copy(io.MultiWriter(out, digester.Hash()), resp.Body); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if actual := digester.Digest(); actual != expected {
		os.Remove(archivePath)
		return "", &IntegrityError{URL: url, Expected: expected, Actual: actual}
	}
	return archivePath, nil
}
