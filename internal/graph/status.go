package graph

import (
	"errors"

	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodestore"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/internal/status"
)

const statusInternal = status.BadInternalError

var errorCodes = []struct {
	err  error
	code status.Code
}{
	{nodestore.ErrNotFound, status.BadNodeIDUnknown},
	{nodestore.ErrDuplicateIdentifier, status.BadNodeIDExists},
	{ErrIdentifierAlreadyExists, status.BadNodeIDExists},
	{registry.ErrInvalidTypeReference, status.BadTypeDefinitionInvalid},
	{node.ErrNotWritable, status.BadNotWritable},
	{node.ErrTypeMismatch, status.BadTypeMismatch},
	{node.ErrAttributeInvalid, status.BadAttributeIDInvalid},
	{node.ErrInvalidName, status.BadInvalidArgument},
	{ErrInvalidArgument, status.BadInvalidArgument},
	{ErrMethodInvalid, status.BadMethodInvalid},
	{ErrArgumentsMissing, status.BadArgumentsMissing},
}

// StatusOf translates an error returned by the graph, the store or the
// registry into a status code.
func StatusOf(err error) status.Code {
	if err == nil {
		return status.Good
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return status.FromError(err)
}
