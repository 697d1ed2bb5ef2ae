package yaml_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/hcl_adapter"
	"github.com/zclconf/go-cty/cty"
)

func translateServer(s *server) *config.Server {
	return &config.Server{
		Listen:          s.Listen,
		HealthcheckPort: s.HealthcheckPort,
		Namespace:       s.Namespace,
		Workers:         s.Workers,
		EventQueue:      s.EventQueue,
		LogLevel:        s.LogLevel,
		LogFormat:       s.LogFormat,
	}
}

func (l *Loader) translateVertexType(ctx context.Context, vt *vertexType) (*config.TypeDefinition, error) {
	if vt.Name == "" {
		return nil, errors.New("vertex type without a name")
	}
	ctx, logger := ctxlog.With(ctx, "vertex_type", vt.Name)
	logger.Debug("Translating YAML vertex type to internal config model.", "fields", len(vt.Fields))

	def := &config.TypeDefinition{
		Name:        vt.Name,
		Description: vt.Description,
		SuperType:   vt.SuperType,
		Plugin:      vt.Plugin,
		Fields:      make([]*config.FieldDefinition, 0, len(vt.Fields)),
	}
	for i := range vt.Fields {
		f, err := l.translateField(ctx, &vt.Fields[i], vt.Name)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, f)
	}
	return def, nil
}

func (l *Loader) translateField(ctx context.Context, f *field, typeName string) (*config.FieldDefinition, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("in vertex type '%s': field without a name", typeName)
	}
	kind, err := hcl_adapter.ParseTypeString(ctx, f.Type)
	if err != nil {
		return nil, fmt.Errorf("in vertex type '%s', field '%s': %w", typeName, f.Name, err)
	}

	var defaultVal *cty.Value
	if f.Default != nil {
		val, err := l.conv.ToCtyValue(f.Default)
		if err != nil {
			return nil, fmt.Errorf("invalid default value for field '%s' in vertex type '%s': %w", f.Name, typeName, err)
		}
		defaultVal = &val
	}

	return &config.FieldDefinition{
		Name:        f.Name,
		Kind:        kind,
		Unit:        f.Unit,
		Description: f.Description,
		Default:     defaultVal,
		ReadOnly:    f.ReadOnly,
	}, nil
}
