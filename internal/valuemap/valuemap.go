// Package valuemap implements the fixed-size, name-indexed containers used
// to pass values into and out of a node evaluation.
//
// A Map is sized exactly to the names one evaluation call needs. Lookup is a
// linear scan; maps hold a node's arity worth of slots, so nothing faster is
// warranted.
package valuemap

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	ErrNotFound        = errors.New("value not found")
	ErrNullValue       = errors.New("value is null")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrIndexOutOfRange = errors.New("slot index out of range")
	ErrDuplicateName   = errors.New("duplicate slot name")
)

// IsAbsent reports whether v is the "no value" marker, as opposed to a typed
// null or a typed value.
func IsAbsent(v cty.Value) bool {
	return v.Type() == cty.NilType
}

// Slot binds a name to a declared type and, once filled, a value.
type Slot struct {
	Name  string
	Type  cty.Type
	Value cty.Value

	filled bool
}

// IsSet reports whether a value (possibly a typed null) has been stored.
func (s Slot) IsSet() bool {
	return s.filled
}

// Map is an ordered sequence of named slots.
type Map struct {
	slots []Slot
}

// New creates a map with capacity empty, unnamed slots.
func New(capacity int) *Map {
	return &Map{slots: make([]Slot, capacity)}
}

// Len returns the number of slots.
func (m *Map) Len() int {
	return len(m.slots)
}

func (m *Map) claim(index int, name string) error {
	if index < 0 || index >= len(m.slots) {
		return fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, index, len(m.slots))
	}
	if other := m.IndexOf(name); other >= 0 && other != index {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return nil
}

// Declare names a slot and fixes its declared type without storing a value.
// Evaluators use it to describe the outputs they request.
func (m *Map) Declare(index int, name string, ty cty.Type) error {
	if err := m.claim(index, name); err != nil {
		return err
	}
	m.slots[index] = Slot{Name: name, Type: ty, Value: cty.NilVal}
	return nil
}

// Set stores a typed value. The declared type becomes the value's runtime
// type.
func (m *Map) Set(index int, name string, v cty.Value) error {
	if err := m.claim(index, name); err != nil {
		return err
	}
	m.slots[index] = Slot{Name: name, Type: v.Type(), Value: v, filled: !IsAbsent(v)}
	return nil
}

// SetTyped stores a value under an explicit declared type. It fails with
// ErrTypeMismatch when the value's runtime type disagrees.
func (m *Map) SetTyped(index int, name string, ty cty.Type, v cty.Value) error {
	if err := m.claim(index, name); err != nil {
		return err
	}
	if !IsAbsent(v) && !ty.Equals(cty.DynamicPseudoType) && !v.Type().Equals(ty) {
		return fmt.Errorf("%w: slot %q declared %s, value is %s", ErrTypeMismatch, name, ty.FriendlyName(), v.Type().FriendlyName())
	}
	m.slots[index] = Slot{Name: name, Type: ty, Value: v, filled: !IsAbsent(v)}
	return nil
}

// SetNull stores an explicit typed null, which is distinct from an absent
// value.
func (m *Map) SetNull(index int, name string, ty cty.Type) error {
	if err := m.claim(index, name); err != nil {
		return err
	}
	m.slots[index] = Slot{Name: name, Type: ty, Value: cty.NullVal(ty), filled: true}
	return nil
}

// IndexOf returns the slot index of name, or -1.
func (m *Map) IndexOf(name string) int {
	for i := range m.slots {
		if m.slots[i].Name == name && name != "" {
			return i
		}
	}
	return -1
}

// Has reports whether a slot with the given name exists.
func (m *Map) Has(name string) bool {
	return m.IndexOf(name) >= 0
}

// SetChecked writes v into the existing slot called name. Values that do
// not conform to the slot's declared type are converted, and rejected with
// ErrTypeMismatch when that is impossible.
func (m *Map) SetChecked(name string, v cty.Value) error {
	i := m.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	slot := &m.slots[i]
	if !IsAbsent(v) && slot.Type != cty.NilType && !slot.Type.Equals(cty.DynamicPseudoType) && !v.Type().Equals(slot.Type) {
		converted, err := convert.Convert(v, slot.Type)
		if err != nil {
			return fmt.Errorf("%w: slot %q declared %s: %v", ErrTypeMismatch, name, slot.Type.FriendlyName(), err)
		}
		v = converted
	}
	slot.Value = v
	slot.filled = !IsAbsent(v)
	return nil
}

// Value returns the stored value for name. The boolean is false when the
// slot does not exist or was never filled.
func (m *Map) Value(name string) (cty.Value, bool) {
	i := m.IndexOf(name)
	if i < 0 || !m.slots[i].filled {
		return cty.NilVal, false
	}
	return m.slots[i].Value, true
}

// GetAs returns the value for name if it conforms to ty, otherwise a
// best-effort conversion, otherwise cty.NilVal.
func (m *Map) GetAs(name string, ty cty.Type) cty.Value {
	v, ok := m.Value(name)
	if !ok {
		return cty.NilVal
	}
	if ty.Equals(cty.DynamicPseudoType) || v.Type().Equals(ty) {
		return v
	}
	converted, err := convert.Convert(v, ty)
	if err != nil {
		return cty.NilVal
	}
	return converted
}

// Names returns the slot names in order.
func (m *Map) Names() []string {
	names := make([]string, len(m.slots))
	for i, s := range m.slots {
		names[i] = s.Name
	}
	return names
}

// Slots returns a copy of the slots in order.
func (m *Map) Slots() []Slot {
	out := make([]Slot, len(m.slots))
	copy(out, m.slots)
	return out
}

// LogValue renders the filled slots for structured logging.
func (m *Map) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(m.slots))
	for _, s := range m.slots {
		if !s.filled {
			continue
		}
		attrs = append(attrs, slog.String(s.Name, s.Value.GoString()))
	}
	return slog.GroupValue(attrs...)
}

var ctyValueType = reflect.TypeOf(cty.Value{})

// GetStrict returns the value stored under name decoded into T. It fails
// with ErrNotFound when the slot is missing or empty, ErrNullValue for a
// typed null, and ErrTypeMismatch unless the value's type is exactly the
// cty type implied by T. A T of cty.Value accepts any type.
func GetStrict[T any](m *Map, name string) (T, error) {
	var zero T
	v, ok := m.Value(name)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if v.IsNull() {
		return zero, fmt.Errorf("%w: %q", ErrNullValue, name)
	}

	if reflect.TypeOf((*T)(nil)).Elem() == ctyValueType {
		return any(v).(T), nil
	}

	want, err := gocty.ImpliedType(zero)
	if err != nil {
		return zero, fmt.Errorf("%w: %q: %v", ErrTypeMismatch, name, err)
	}
	if !v.Type().Equals(want) {
		return zero, fmt.Errorf("%w: %q is %s, want %s", ErrTypeMismatch, name, v.Type().FriendlyName(), want.FriendlyName())
	}

	var out T
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return zero, fmt.Errorf("%w: %q: %v", ErrTypeMismatch, name, err)
	}
	return out, nil
}

// TryGetStrict is the non-failing form of GetStrict.
func TryGetStrict[T any](m *Map, name string) (T, bool) {
	v, err := GetStrict[T](m, name)
	return v, err == nil
}
