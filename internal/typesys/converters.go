package typesys

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ConvertFunc converts a value into a registered destination type.
type ConvertFunc func(cty.Value) (cty.Value, error)

type pairKey struct {
	from string
	to   string
}

func keyOf(from, to cty.Type) pairKey {
	return pairKey{from: from.GoString(), to: to.GoString()}
}

// Converters is the type conversion registry shared by a graph and the
// evaluators that run it. It is not safe for concurrent mutation.
type Converters struct {
	fns map[pairKey]ConvertFunc
}

// NewEmptyConverters creates a registry with no conversions registered.
func NewEmptyConverters() *Converters {
	return &Converters{fns: make(map[pairKey]ConvertFunc)}
}

// NewConverters creates a registry with the default primitive conversions.
func NewConverters() *Converters {
	c := NewEmptyConverters()
	c.Register(cty.Number, cty.String, ctyConvert(cty.String))
	c.Register(cty.Bool, cty.String, ctyConvert(cty.String))
	c.Register(cty.String, cty.Number, ctyConvert(cty.Number))
	c.Register(cty.String, cty.Bool, ctyConvert(cty.Bool))
	return c
}

func ctyConvert(to cty.Type) ConvertFunc {
	return func(v cty.Value) (cty.Value, error) {
		return convert.Convert(v, to)
	}
}

// Register installs fn as the converter for the ordered pair (from, to).
// A later registration for the same pair replaces the earlier one.
func (c *Converters) Register(from, to cty.Type, fn ConvertFunc) {
	c.fns[keyOf(from, to)] = fn
}

// Lookup returns the converter registered for (from, to), if any.
func (c *Converters) Lookup(from, to cty.Type) (ConvertFunc, bool) {
	fn, ok := c.fns[keyOf(from, to)]
	return fn, ok
}

// CanConnect reports whether an output of type from may feed an input of
// type to: identical types, a subtype, a registered converter, or a
// destination whose dynamic compatibility accepts the source. Sources typed
// "any" are accepted and checked at run time.
func (c *Converters) CanConnect(from, to DataType) bool {
	if to.Extended != nil {
		return to.Extended.Accepts(from)
	}
	if from.Base == cty.NilType || to.Base == cty.NilType {
		return false
	}
	if from.Base.Equals(cty.DynamicPseudoType) {
		return true
	}
	if IsSubtype(from.Base, to.Base) {
		return true
	}
	_, ok := c.Lookup(from.Base, to.Base)
	return ok
}

// ConversionError reports a failed registered conversion.
type ConversionError struct {
	From cty.Type
	To   DataType
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s: %v", TypeString(e.From), e.To.String(), e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Convert adapts v to the declared destination type. Values that already
// conform are returned unchanged. Otherwise a registered converter is used,
// then a generic cty coercion; if neither applies the value is passed
// through unconverted so the consuming node can reject it itself. Only a
// failing registered converter yields an error.
func (c *Converters) Convert(v cty.Value, to DataType) (cty.Value, error) {
	if v.Type() == cty.NilType {
		return v, nil
	}
	from := v.Type()
	if to.Extended != nil {
		return v, nil
	}
	if to.Base == cty.NilType || IsSubtype(from, to.Base) {
		return v, nil
	}
	if fn, ok := c.Lookup(from, to.Base); ok {
		out, err := fn(v)
		if err != nil {
			return cty.NilVal, &ConversionError{From: from, To: to, Err: err}
		}
		return out, nil
	}
	if out, err := convert.Convert(v, to.Base); err == nil {
		return out, nil
	}
	return v, nil
}
