package node

import (
	"context"
	"sync"
	"testing"

	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestRecord_SettersBumpVersionAndNotify(t *testing.T) {
	ctx := context.Background()
	v := NewVertex(nodeid.NewString(1, "a"), NewQualifiedName(1, "a"), "vertex", nodeid.NewNumeric(0, 1))

	var got []Change
	v.Observe(func(_ context.Context, c Change) { got = append(got, c) })

	// Act
	v.SetDisplayName(ctx, "Pump A")
	v.SetDescription(ctx, "the first pump")
	require.NoError(t, v.SetLabel(ctx, "pump"))

	// Assert
	assert.Equal(t, uint64(3), v.Version())
	require.Len(t, got, 3)
	assert.Equal(t, AttributeDisplayName, got[0].Attribute)
	assert.Equal(t, AttributeDescription, got[1].Attribute)
	assert.Equal(t, v.ID(), got[2].Node)
	assert.Equal(t, uint64(3), got[2].Version)
	assert.Equal(t, "Pump A", v.DisplayName())
	assert.Equal(t, "pump", v.Label())
}

func TestRecord_RejectsEmptyNames(t *testing.T) {
	ctx := context.Background()
	v := NewVertex(nodeid.NewString(1, "a"), NewQualifiedName(1, "a"), "vertex", nodeid.Null)

	assert.ErrorIs(t, v.SetBrowseName(ctx, NewQualifiedName(1, "")), ErrInvalidName)
	assert.ErrorIs(t, v.SetLabel(ctx, ""), ErrInvalidName)
	assert.Equal(t, uint64(0), v.Version())
}

func TestRecord_ObserverPanicIsRecovered(t *testing.T) {
	ctx := context.Background()
	r := NewRecord(nodeid.NewString(1, "x"), ClassObject, NewQualifiedName(1, "x"))

	called := false
	r.Observe(func(context.Context, Change) { panic("boom") })
	r.Observe(func(context.Context, Change) { called = true })

	assert.NotPanics(t, func() { r.SetDescription(ctx, "d") })
	assert.True(t, called)
	assert.Equal(t, "d", r.Description())
}

func TestRecord_ObserverCanReadRecord(t *testing.T) {
	ctx := context.Background()
	r := NewRecord(nodeid.NewString(1, "x"), ClassObject, NewQualifiedName(1, "x"))

	var seen string
	r.Observe(func(context.Context, Change) { seen = r.DisplayName() })
	r.SetDisplayName(ctx, "renamed")

	assert.Equal(t, "renamed", seen)
}

func TestRecord_CancelObserver(t *testing.T) {
	ctx := context.Background()
	r := NewRecord(nodeid.NewString(1, "x"), ClassObject, NewQualifiedName(1, "x"))

	count := 0
	cancel := r.Observe(func(context.Context, Change) { count++ })
	r.SetDescription(ctx, "one")
	cancel()
	r.SetDescription(ctx, "two")

	assert.Equal(t, 1, count)
}

func TestRecord_ReadAttribute(t *testing.T) {
	id := nodeid.NewString(1, "a")
	v := NewVertex(id, NewQualifiedName(1, "a"), "vertex", nodeid.Null)

	testCases := []struct {
		name    string
		attr    AttributeID
		want    cty.Value
		wantErr error
	}{
		{name: "node id", attr: AttributeNodeID, want: cty.StringVal("ns=1;s=a")},
		{name: "node class", attr: AttributeNodeClass, want: cty.NumberUIntVal(uint64(ClassObject))},
		{name: "browse name", attr: AttributeBrowseName, want: cty.StringVal("1:a")},
		{name: "display name", attr: AttributeDisplayName, want: cty.StringVal("a")},
		{name: "event notifier", attr: AttributeEventNotifier, want: cty.NumberUIntVal(0)},
		{name: "value is not an object attribute", attr: AttributeValue, wantErr: ErrAttributeInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dv, err := v.ReadAttribute(tc.attr)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, dv.Value.RawEquals(tc.want), "got %#v", dv.Value)
			assert.Equal(t, status.Good, dv.Status)
		})
	}
}

func TestRecord_WriteAttributeHonoursWriteMask(t *testing.T) {
	ctx := context.Background()
	v := NewVertex(nodeid.NewString(1, "a"), NewQualifiedName(1, "a"), "vertex", nodeid.Null)

	require.NoError(t, v.WriteAttribute(ctx, AttributeDisplayName, cty.StringVal("A")))
	assert.Equal(t, "A", v.DisplayName())

	err := v.WriteAttribute(ctx, AttributeBrowseName, cty.StringVal("b"))
	assert.ErrorIs(t, err, ErrNotWritable)

	err = v.WriteAttribute(ctx, AttributeNodeClass, cty.NumberIntVal(2))
	assert.ErrorIs(t, err, ErrNotWritable)

	err = v.WriteAttribute(ctx, AttributeDescription, cty.NumberIntVal(2))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestRecord_EnableEventsOnce(t *testing.T) {
	ctx := context.Background()
	r := NewRecord(nodeid.NewString(1, "a"), ClassObject, NewQualifiedName(1, "a"))

	assert.True(t, r.EnableEvents(ctx))
	assert.False(t, r.EnableEvents(ctx))
	assert.Equal(t, EventNotifierSubscribeToEvents, r.EventNotifier())
}

func TestProperty_ValueAttributes(t *testing.T) {
	ctx := context.Background()
	owner := nodeid.NewString(1, "a")
	p := NewProperty(owner.Child(".", "speed"), owner, "speed", VertexScope, GoodValue(cty.NumberIntVal(3)))

	dv, err := p.ReadAttribute(AttributeValue)
	require.NoError(t, err)
	assert.True(t, dv.Value.RawEquals(cty.NumberIntVal(3)))

	dt, err := p.ReadAttribute(AttributeDataType)
	require.NoError(t, err)
	assert.Equal(t, "number", dt.Value.AsString())

	require.NoError(t, p.WriteAttribute(ctx, AttributeValue, cty.NumberIntVal(4)))
	assert.True(t, p.Value().Value.RawEquals(cty.NumberIntVal(4)))

	p.SetReadOnly()
	assert.ErrorIs(t, p.WriteAttribute(ctx, AttributeValue, cty.NumberIntVal(5)), ErrNotWritable)
	assert.Equal(t, "1:speed", p.BrowseName().String())
}

func TestMethod_IsExecutable(t *testing.T) {
	owner := nodeid.NewString(1, "a")
	m := NewMethod(owner.Child(":", "property"), owner, "property", []string{"label", "value"})

	dv, err := m.ReadAttribute(AttributeExecutable)
	require.NoError(t, err)
	assert.True(t, dv.Value.True())
	assert.Equal(t, []string{"label", "value"}, m.InputArguments())
	assert.Equal(t, ClassMethod, m.Class())
}

func TestReferenceType_Attributes(t *testing.T) {
	rt := NewReferenceType(nodeid.NewNumeric(0, 35), NewQualifiedName(0, "Organizes"), "OrganizedBy", nodeid.NewNumeric(0, 33), false, false)

	dv, err := rt.ReadAttribute(AttributeInverseName)
	require.NoError(t, err)
	assert.Equal(t, "OrganizedBy", dv.Value.AsString())

	dv, err = rt.ReadAttribute(AttributeSymmetric)
	require.NoError(t, err)
	assert.False(t, dv.Value.True())

	_, err = rt.ReadAttribute(AttributeEventNotifier)
	assert.ErrorIs(t, err, ErrAttributeInvalid)
}

func TestParseAttributeID(t *testing.T) {
	id, err := ParseAttributeID("DisplayName")
	require.NoError(t, err)
	assert.Equal(t, AttributeDisplayName, id)

	id, err = ParseAttributeID("13")
	require.NoError(t, err)
	assert.Equal(t, AttributeValue, id)

	_, err = ParseAttributeID("Colour")
	assert.ErrorIs(t, err, ErrAttributeInvalid)
}

func TestRecord_ConcurrentSetters(t *testing.T) {
	ctx := context.Background()
	r := NewRecord(nodeid.NewString(1, "a"), ClassObject, NewQualifiedName(1, "a"))

	var mu sync.Mutex
	seen := 0
	r.Observe(func(context.Context, Change) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.SetDescription(ctx, "x")
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), r.Version())
	assert.Equal(t, 50, seen)
}
