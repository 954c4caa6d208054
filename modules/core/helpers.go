package core

import (
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// setIfRequested writes v to the named output when the evaluator asked for
// it.
func setIfRequested(out *valuemap.Map, name string, v cty.Value) error {
	if !out.Has(name) {
		return nil
	}
	return out.SetChecked(name, v)
}

// Render formats a value for display: strings as they are, numbers without
// trailing zeros, and everything else as JSON.
func Render(v cty.Value) string {
	switch {
	case valuemap.IsAbsent(v):
		return "<no value>"
	case v.IsNull():
		return "null"
	case !v.IsWhollyKnown():
		return "<unknown>"
	}

	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return v.AsString()
	case ty.Equals(cty.Number):
		return v.AsBigFloat().Text('f', -1)
	case ty.Equals(cty.Bool):
		if v.True() {
			return "true"
		}
		return "false"
	}

	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(data)
}
