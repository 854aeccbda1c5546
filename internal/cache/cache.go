// Package cache implements the shared on-disk artifact cache for built port
// libraries, keyed by port name and version. Built libraries persist across
// runs until explicitly erased.
package cache

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vk/portsmith/internal/ctxlog"
)

// Key identifies one cached artifact.
type Key struct {
	Name    string
	Version string
}

// String renders the key in its on-disk form.
func (k Key) String() string {
	return k.Name + "-" + k.Version
}

// Artifact is a handle to a built library file in the cache.
type Artifact struct {
	Key  Key
	Path string
}

// BuilderFunc produces the artifact at outputPath. It is only invoked when
// the cache has no entry for the key.
type BuilderFunc func(ctx context.Context, outputPath string) error

// Cache is the process-wide artifact store. GetOrBuild holds a per-key lock,
// so two build requests for the same name+version never race even if callers
// ever resolve independent ports in parallel.
type Cache struct {
	root string

	mu    sync.Mutex
	locks map[Key]*sync.Mutex
}

// New creates a cache rooted at the given directory. The directory and its
// lib/ and include/ subdirectories are created on demand.
func New(root string) *Cache {
	return &Cache{
		root:  root,
		locks: make(map[Key]*sync.Mutex),
	}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// IncludeRoot returns the shared include directory that InstallHeaders
// populates and downstream compile steps consume.
func (c *Cache) IncludeRoot() string {
	return filepath.Join(c.root, "include")
}

// libPath is the canonical location of a cached library.
func (c *Cache) libPath(key Key, libName string) string {
	return filepath.Join(c.root, "lib", key.String(), libName)
}

func (c *Cache) keyLock(key Key) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// GetOrBuild returns the cached artifact for the key if present; otherwise it
// invokes the builder exactly once and caches the result. The builder writes
// to a temporary path that is only promoted into the cache on success, so a
// failed build never leaves a half-written artifact behind.
func (c *Cache) GetOrBuild(ctx context.Context, key Key, libName string, build BuilderFunc) (Artifact, error) {
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	logger := ctxlog.FromContext(ctx)
	path := c.libPath(key, libName)

	if _, err := os.Stat(path); err == nil {
		logger.Debug("Cache hit.", "key", key.String(), "path", path)
		return Artifact{Key: key, Path: path}, nil
	}

	logger.Info("Cache miss, building.", "key", key.String(), "lib", libName)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create cache directory for %s: %w", key, err)
	}

	tmp := path + ".tmp"
	if err := build(ctx, tmp); err != nil {
		os.Remove(tmp)
		return Artifact{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return Artifact{}, fmt.Errorf("failed to commit artifact for %s: %w", key, err)
	}

	logger.Debug("Artifact cached.", "key", key.String(), "path", path)
	return Artifact{Key: key, Path: path}, nil
}

// Erase removes the cached artifact directory for the key, forcing the next
// GetOrBuild to rebuild. Erasing an absent entry is not an error.
func (c *Cache) Erase(ctx context.Context, key Key) error {
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Join(c.root, "lib", key.String())
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to erase cache entry %s: %w", key, err)
	}
	ctxlog.FromContext(ctx).Info("Cache entry erased.", "key", key.String())
	return nil
}

// InstallHeaders copies the .h files directly inside srcDir into the shared
// include root.
func (c *Cache) InstallHeaders(srcDir string) error {
	return c.installHeaders(srcDir, c.IncludeRoot())
}

// InstallHeaderDir recursively copies srcDir into the shared include root
// under the directory's own name, preserving its layout (e.g. an
// include/vorbis directory lands at include/vorbis).
func (c *Cache) InstallHeaderDir(srcDir string) error {
	dest := filepath.Join(c.IncludeRoot(), filepath.Base(srcDir))
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func (c *Cache) installHeaders(srcDir, dest string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("failed to read header directory %s: %w", srcDir, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".h") {
			continue
		}
		src := filepath.Join(srcDir, entry.Name())
		if err := copyFile(src, filepath.Join(dest, entry.Name())); err != nil {
			return fmt.Errorf("failed to install header %s: %w", src, err)
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
