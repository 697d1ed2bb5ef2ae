package yaml_adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/hcl_adapter"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct {
	conv *hcl_adapter.Converter
}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{conv: hcl_adapter.NewConverter()}
}

// Load parses every .yaml and .yml file under paths into one model. Unknown
// keys are rejected.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := hcl_adapter.FindFiles(paths, ".yaml", ".yml")
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := config.NewModel()
	for _, path := range files {
		if err := l.loadFile(ctx, path, model); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("YAML loading complete.", "vertex_types", len(model.Types), "edge_types", len(model.EdgeTypes))
	return model, l.conv, nil
}

func (l *Loader) loadFile(ctx context.Context, path string, model *config.Model) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var root file
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty document
		}
		return fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	if root.Server != nil {
		model.Merge(&config.Model{Server: translateServer(root.Server)})
	}
	for i := range root.VertexTypes {
		def, err := l.translateVertexType(ctx, &root.VertexTypes[i])
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		model.Types[def.Name] = def
	}
	for i := range root.EdgeTypes {
		et := &root.EdgeTypes[i]
		if et.Name == "" {
			return fmt.Errorf("%s: edge type %d has no name", path, i)
		}
		model.EdgeTypes[et.Name] = &config.EdgeTypeDefinition{
			Name:        et.Name,
			Description: et.Description,
			InverseName: et.InverseName,
			Symmetric:   et.Symmetric,
			Plugin:      et.Plugin,
		}
	}
	return nil
}
