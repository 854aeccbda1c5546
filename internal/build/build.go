// Package build compiles a port's C sources into a static library. It is the
// thin boundary in front of the system toolchain; everything above it deals
// only in Jobs and cached artifacts.
package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/portsmith/internal/ctxlog"
)

// Error reports a build step that exited non-zero. It is terminal for the
// whole resolution pass.
type Error struct {
	Port     string
	Command  string
	ExitCode int
	Output   string
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("build of port %q failed: %s exited with code %d: %s",
		e.Port, e.Command, e.ExitCode, strings.TrimSpace(e.Output))
}

// Job describes one static-library build.
type Job struct {
	// Port is the owning port name, used in logs and errors.
	Port string
	// SourceDir is the directory holding the C sources.
	SourceDir string
	// Srcs optionally names the exact source files to compile, relative to
	// SourceDir. When empty, every .c file under SourceDir is compiled.
	Srcs []string
	// ExcludeFiles filters the collected sources by base-name prefix
	// (e.g. "psytune" drops psytune.c).
	ExcludeFiles []string
	// IncludeDirs are extra -I directories.
	IncludeDirs []string
	// Flags are extra compiler flags.
	Flags []string
	// Output is the absolute path of the static library to produce.
	Output string
}

// Compiler turns a Job into a library on disk.
type Compiler interface {
	Compile(ctx context.Context, job Job) error
}

// CCompiler drives the system C compiler and archiver. The zero value is not
// usable; construct it with NewCCompiler.
type CCompiler struct {
	cc string
	ar string
}

// NewCCompiler picks the toolchain from the CC and AR environment variables,
// defaulting to cc and ar.
func NewCCompiler() *CCompiler {
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	ar := os.Getenv("AR")
	if ar == "" {
		ar = "ar"
	}
	return &CCompiler{cc: cc, ar: ar}
}

// Compile builds every source in the job to an object file and archives the
// objects into job.Output. A non-zero exit from either tool yields *Error.
func (c *CCompiler) Compile(ctx context.Context, job Job) error {
	logger := ctxlog.FromContext(ctx).With("port", job.Port)

	srcs, err := collectSources(job)
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		return fmt.Errorf("no sources found for port %q in %s", job.Port, job.SourceDir)
	}
	logger.Debug("Compiling sources.", "count", len(srcs), "output", job.Output)

	objDir, err := os.MkdirTemp("", "portsmith-obj-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(objDir)

	objects := make([]string, 0, len(srcs))
	for _, src := range srcs {
		obj := filepath.Join(objDir, strings.TrimSuffix(filepath.Base(src), ".c")+".o")
		args := []string{"-c", src, "-o", obj, "-O2"}
		for _, dir := range job.IncludeDirs {
			args = append(args, "-I"+dir)
		}
		args = append(args, job.Flags...)
		if err := c.run(ctx, job.Port, c.cc, args); err != nil {
			return err
		}
		objects = append(objects, obj)
	}

	arArgs := append([]string{"rcs", job.Output}, objects...)
	if err := c.run(ctx, job.Port, c.ar, arArgs); err != nil {
		return err
	}

	logger.Info("Port library built.", "output", job.Output, "objects", len(objects))
	return nil
}

func (c *CCompiler) run(ctx context.Context, port, tool string, args []string) error {
	cmd := exec.CommandContext(ctx, tool, args...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	exitCode := -1
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}
	return &Error{
		Port:     port,
		Command:  tool + " " + strings.Join(args, " "),
		ExitCode: exitCode,
		Output:   string(out),
	}
}

// collectSources resolves the job's source list: explicit Srcs when given,
// otherwise every .c file directly under SourceDir, minus excludes, in
// deterministic order.
func collectSources(job Job) ([]string, error) {
	var srcs []string
	if len(job.Srcs) > 0 {
		for _, src := range job.Srcs {
			srcs = append(srcs, filepath.Join(job.SourceDir, src))
		}
	} else {
		entries, err := os.ReadDir(job.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read source directory for port %q: %w", job.Port, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".c") {
				continue
			}
			srcs = append(srcs, filepath.Join(job.SourceDir, entry.Name()))
		}
	}

	filtered := srcs[:0]
	for _, src := range srcs {
		if !excluded(filepath.Base(src), job.ExcludeFiles) {
			filtered = append(filtered, src)
		}
	}
	sort.Strings(filtered)
	return filtered, nil
}

func excluded(base string, excludes []string) bool {
	for _, prefix := range excludes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}
