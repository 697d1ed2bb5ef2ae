package node

import (
	"time"

	"github.com/specialistvlad/graphua/internal/status"
	"github.com/zclconf/go-cty/cty"
)

// DataValue is a value together with its quality and timestamps.
type DataValue struct {
	Value           cty.Value
	Status          status.Code
	SourceTimestamp time.Time
	ServerTimestamp time.Time
}

// NewDataValue stamps v with status st. Both timestamps are set to now.
func NewDataValue(v cty.Value, st status.Code) DataValue {
	now := time.Now().UTC()
	return DataValue{Value: v, Status: st, SourceTimestamp: now, ServerTimestamp: now}
}

// GoodValue is shorthand for NewDataValue(v, status.Good).
func GoodValue(v cty.Value) DataValue {
	return NewDataValue(v, status.Good)
}

// IsNull reports whether the value is missing or null.
func (d DataValue) IsNull() bool {
	return d.Value == cty.NilVal || d.Value.IsNull()
}
