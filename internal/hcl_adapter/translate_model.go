// This file contains the logic for translating HCL schema structs (from
// the schema package) into the format-agnostic configuration model defined in
// the config package.

package hcl_adapter

import (
	"context"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/schema"
)

// translateServer converts the HCL-specific server block into the agnostic model.
func (l *Loader) translateServer(s *schema.Server) *config.Server {
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

// translateVertexType converts the HCL-specific vertex type into the agnostic model.
func (l *Loader) translateVertexType(ctx context.Context, s *schema.VertexType) (*config.TypeDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("vertex_type", s.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL vertex type to internal config model.", "fields", len(s.Fields))

	def := &config.TypeDefinition{
		Name:        s.Name,
		Description: s.Description,
		SuperType:   s.SuperType,
		Plugin:      s.Plugin,
		Fields:      make([]*config.FieldDefinition, 0, len(s.Fields)),
	}
	for _, f := range s.Fields {
		field, err := translateFieldDefinition(ctx, f, s.Name)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, field)
	}
	return def, nil
}

// translateEdgeType converts the HCL-specific edge type into the agnostic model.
func (l *Loader) translateEdgeType(s *schema.EdgeType) *config.EdgeTypeDefinition {
	return &config.EdgeTypeDefinition{
		Name:        s.Name,
		Description: s.Description,
		InverseName: s.InverseName,
		Symmetric:   s.Symmetric,
		Plugin:      s.Plugin,
	}
}
