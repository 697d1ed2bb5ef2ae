package node

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Node is implemented by *Record and every typed element.
type Node interface {
	ID() nodeid.ID
	Class() Class
	Base() *Record
	ReadAttribute(attr AttributeID) (DataValue, error)
	WriteAttribute(ctx context.Context, attr AttributeID, v cty.Value) error
}

// Record holds the attributes common to all node classes.
type Record struct {
	mu            sync.RWMutex
	id            nodeid.ID
	class         Class
	browseName    QualifiedName
	displayName   string
	description   string
	writeMask     WriteMask
	userWriteMask WriteMask
	eventNotifier byte

	version atomic.Uint64

	obsMu     sync.Mutex
	observers map[uint64]Observer
	nextObs   uint64
}

// NewRecord creates a record. The display name defaults to the browse name.
func NewRecord(id nodeid.ID, class Class, browseName QualifiedName) *Record {
	return &Record{
		id:          id,
		class:       class,
		browseName:  browseName,
		displayName: browseName.Name,
	}
}

func (r *Record) ID() nodeid.ID { return r.id }

func (r *Record) Class() Class { return r.class }

func (r *Record) Base() *Record { return r }

// Version is incremented on every notified change.
func (r *Record) Version() uint64 { return r.version.Load() }

func (r *Record) BrowseName() QualifiedName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.browseName
}

func (r *Record) DisplayName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.displayName
}

func (r *Record) Description() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.description
}

func (r *Record) WriteMask() WriteMask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writeMask
}

func (r *Record) UserWriteMask() WriteMask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userWriteMask
}

func (r *Record) EventNotifier() byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eventNotifier
}

// SetBrowseName replaces the browse name. An empty name is rejected.
func (r *Record) SetBrowseName(ctx context.Context, name QualifiedName) error {
	if name.Name == "" {
		return ErrInvalidName
	}
	r.mu.Lock()
	r.browseName = name
	r.mu.Unlock()
	r.changed(ctx, AttributeBrowseName)
	return nil
}

// SetDisplayName replaces the display name.
func (r *Record) SetDisplayName(ctx context.Context, name string) {
	r.mu.Lock()
	r.displayName = name
	r.mu.Unlock()
	r.changed(ctx, AttributeDisplayName)
}

// SetDescription replaces the description.
func (r *Record) SetDescription(ctx context.Context, description string) {
	r.mu.Lock()
	r.description = description
	r.mu.Unlock()
	r.changed(ctx, AttributeDescription)
}

// SetWriteMask replaces both the write mask and the user write mask.
func (r *Record) SetWriteMask(ctx context.Context, mask WriteMask) {
	r.mu.Lock()
	r.writeMask = mask
	r.userWriteMask = mask
	r.mu.Unlock()
	r.changed(ctx, AttributeWriteMask)
}

// SetEventNotifier replaces the event notifier byte.
func (r *Record) SetEventNotifier(ctx context.Context, notifier byte) {
	r.mu.Lock()
	r.eventNotifier = notifier
	r.mu.Unlock()
	r.changed(ctx, AttributeEventNotifier)
}

// EnableEvents sets SubscribeToEvents if it is not set yet and reports
// whether it changed anything.
func (r *Record) EnableEvents(ctx context.Context) bool {
	r.mu.Lock()
	if r.eventNotifier&EventNotifierSubscribeToEvents != 0 {
		r.mu.Unlock()
		return false
	}
	r.eventNotifier |= EventNotifierSubscribeToEvents
	r.mu.Unlock()
	r.changed(ctx, AttributeEventNotifier)
	return true
}

// ReadAttribute returns the attributes every node class carries.
func (r *Record) ReadAttribute(attr AttributeID) (DataValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var v cty.Value
	switch attr {
	case AttributeNodeID:
		v = cty.StringVal(r.id.String())
	case AttributeNodeClass:
		v = cty.NumberUIntVal(uint64(r.class))
	case AttributeBrowseName:
		v = cty.StringVal(r.browseName.String())
	case AttributeDisplayName:
		v = cty.StringVal(r.displayName)
	case AttributeDescription:
		v = cty.StringVal(r.description)
	case AttributeWriteMask:
		v = cty.NumberUIntVal(uint64(r.writeMask))
	case AttributeUserWriteMask:
		v = cty.NumberUIntVal(uint64(r.userWriteMask))
	case AttributeEventNotifier:
		if r.class != ClassObject && r.class != ClassView {
			return DataValue{}, fmt.Errorf("%w: %s on %s", ErrAttributeInvalid, attr, r.class)
		}
		v = cty.NumberUIntVal(uint64(r.eventNotifier))
	default:
		return DataValue{}, fmt.Errorf("%w: %s on %s", ErrAttributeInvalid, attr, r.class)
	}
	return GoodValue(v), nil
}

// WriteAttribute writes one of the common attributes after checking the
// user write mask.
func (r *Record) WriteAttribute(ctx context.Context, attr AttributeID, v cty.Value) error {
	if err := r.CheckWritable(attr); err != nil {
		return err
	}
	switch attr {
	case AttributeBrowseName:
		s, err := stringArg(attr, v)
		if err != nil {
			return err
		}
		return r.SetBrowseName(ctx, NewQualifiedName(r.BrowseName().NamespaceIndex, s))
	case AttributeDisplayName:
		s, err := stringArg(attr, v)
		if err != nil {
			return err
		}
		r.SetDisplayName(ctx, s)
	case AttributeDescription:
		s, err := stringArg(attr, v)
		if err != nil {
			return err
		}
		r.SetDescription(ctx, s)
	case AttributeEventNotifier:
		n, err := uintArg(attr, v, 0xFF)
		if err != nil {
			return err
		}
		r.SetEventNotifier(ctx, byte(n))
	case AttributeWriteMask, AttributeUserWriteMask:
		n, err := uintArg(attr, v, 0xFFFFFFFF)
		if err != nil {
			return err
		}
		r.SetWriteMask(ctx, WriteMask(n))
	default:
		return fmt.Errorf("%w: %s on %s", ErrNotWritable, attr, r.class)
	}
	return nil
}

// CheckWritable returns ErrNotWritable unless the user write mask grants attr.
func (r *Record) CheckWritable(attr AttributeID) error {
	bit, ok := maskFor(attr)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotWritable, attr)
	}
	if !r.UserWriteMask().Has(bit) {
		return fmt.Errorf("%w: %s on %s", ErrNotWritable, attr, r.id)
	}
	return nil
}

// Observe registers fn and returns a function that unregisters it.
func (r *Record) Observe(fn Observer) (cancel func()) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	if r.observers == nil {
		r.observers = make(map[uint64]Observer)
	}
	r.nextObs++
	key := r.nextObs
	r.observers[key] = fn
	return func() {
		r.obsMu.Lock()
		delete(r.observers, key)
		r.obsMu.Unlock()
	}
}

// Notify bumps the version and delivers change to all observers. The Node
// and Version fields are filled in here.
func (r *Record) Notify(ctx context.Context, change Change) {
	change.Node = r.id
	change.Version = r.version.Add(1)

	r.obsMu.Lock()
	observers := make([]Observer, 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.obsMu.Unlock()

	for _, fn := range observers {
		r.deliver(ctx, fn, change)
	}
}

func (r *Record) deliver(ctx context.Context, fn Observer, change Change) {
	defer func() {
		if p := recover(); p != nil {
			ctxlog.FromContext(ctx).Warn("Observer panicked.",
				"node", r.id.String(), "change", change.Kind.String(), "panic", p)
		}
	}()
	fn(ctx, change)
}

func (r *Record) changed(ctx context.Context, attr AttributeID) {
	r.Notify(ctx, Change{Kind: AttributeChanged, Attribute: attr})
}

func stringArg(attr AttributeID, v cty.Value) (string, error) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return "", fmt.Errorf("%w: %s expects a string", ErrTypeMismatch, attr)
	}
	return v.AsString(), nil
}

func uintArg(attr AttributeID, v cty.Value, limit uint64) (uint64, error) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return 0, fmt.Errorf("%w: %s expects a number", ErrTypeMismatch, attr)
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() || bf.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s expects a non-negative integer", ErrTypeMismatch, attr)
	}
	n, _ := bf.Uint64()
	if n > limit {
		return 0, fmt.Errorf("%w: %s out of range", ErrTypeMismatch, attr)
	}
	return n, nil
}
