package node

import "errors"

var (
	// ErrAttributeInvalid is returned when a node class does not carry the
	// requested attribute.
	ErrAttributeInvalid = errors.New("attribute is not valid for this node")
	// ErrNotWritable is returned when the write mask forbids the write.
	ErrNotWritable = errors.New("attribute is not writable")
	// ErrTypeMismatch is returned when the written value has the wrong type.
	ErrTypeMismatch = errors.New("value type does not match attribute")
	// ErrInvalidName is returned for empty browse names and labels.
	ErrInvalidName = errors.New("name must not be empty")
)
