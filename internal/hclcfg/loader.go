// Package hclcfg loads build settings from HCL files into a settings.Store.
//
// A settings file is a flat set of attribute assignments:
//
//	USE_VORBIS = true
//	USE_GIFLIB = USE_VORBIS
//
// Attributes are evaluated top to bottom within a file, and files are loaded
// in sorted path order, so an assignment can reference any flag set before it.
package hclcfg

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/portsmith/internal/ctxlog"
	"github.com/vk/portsmith/internal/fsutil"
	"github.com/vk/portsmith/internal/settings"
)

// Load reads every .hcl file under the given paths and applies the
// assignments to the store. Assigning a key no port has declared is a
// configuration error and aborts the load.
func Load(ctx context.Context, store *settings.Store, paths ...string) error {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return fmt.Errorf("failed to locate settings files under %s: %w", path, err)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		logger.Debug("No settings files found.", "paths", paths)
		return nil
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		if err := loadFile(ctx, parser, store, file); err != nil {
			return err
		}
		logger.Debug("Settings file applied.", "file", file)
	}
	return nil
}

func loadFile(ctx context.Context, parser *hclparse.Parser, store *settings.Store, file string) error {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse settings file %s: %w", file, diags)
	}

	attrs, diags := hclFile.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("invalid settings file %s: %w", file, diags)
	}

	// JustAttributes returns a map; re-establish source order so assignments
	// see the flags set above them.
	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	for _, attr := range ordered {
		evalCtx := &hcl.EvalContext{Variables: store.Values()}
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("failed to evaluate setting %q at %s: %w",
				attr.Name, attr.Range.String(), diags)
		}
		if err := store.Set(attr.Name, val); err != nil {
			return fmt.Errorf("%s: %w", attr.Range.String(), err)
		}
	}
	return nil
}
