package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths. Blocks from all files are merged
// into one model; a later definition with the same name replaces an earlier
// one.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := FindFiles(paths, ".hcl")
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, srv := range root.Servers {
			model.Merge(&config.Model{Server: l.translateServer(srv)})
		}
		for _, vt := range root.VertexTypes {
			def, err := l.translateVertexType(ctx, vt)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Types[def.Name] = def
		}
		for _, et := range root.EdgeTypes {
			def := l.translateEdgeType(et)
			model.EdgeTypes[def.Name] = def
		}
	}

	logger.Debug("HCL loading complete.", "vertex_types", len(model.Types), "edge_types", len(model.EdgeTypes))
	return model, NewConverter(), nil
}

// FindFiles walks all given paths and returns a flat list of the files with
// one of the given extensions. Paths that do not exist are skipped.
func FindFiles(paths []string, exts ...string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	match := func(p string) bool {
		for _, ext := range exts {
			if filepath.Ext(p) == ext {
				return true
			}
		}
		return false
	}
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && match(p) {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if match(path) {
			add(path)
		}
	}
	return allFiles, nil
}
