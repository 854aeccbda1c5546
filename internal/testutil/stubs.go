package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/vk/portsmith/internal/build"
)

// StubFetcher satisfies fetch.Fetcher without touching the network. Fetch
// creates the destination directory under Dir and records the call.
type StubFetcher struct {
	Dir string
	Err error

	mu      sync.Mutex
	Fetched []string
}

// Fetch implements fetch.Fetcher.
func (f *StubFetcher) Fetch(ctx context.Context, url, destName string, expected digest.Digest) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	f.Fetched = append(f.Fetched, destName)
	f.mu.Unlock()

	path := filepath.Join(f.Dir, destName)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// StubCompiler satisfies build.Compiler. It records every job and writes a
// placeholder artifact so the cache sees a successful build.
type StubCompiler struct {
	Err error

	mu   sync.Mutex
	Jobs []build.Job
}

// Compile implements build.Compiler.
func (c *StubCompiler) Compile(ctx context.Context, job build.Job) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	c.Jobs = append(c.Jobs, job)
	c.mu.Unlock()
	return os.WriteFile(job.Output, []byte("!<arch>\n"), 0o644)
}

// JobCount returns how many builds ran.
func (c *StubCompiler) JobCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Jobs)
}
