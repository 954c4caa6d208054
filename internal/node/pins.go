package node

import (
	"github.com/vk/nodegraph/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// Flags are presentation and semantic markers on a pin.
type Flags uint8

const (
	Hidden Flags = 1 << iota
	NodeConstant
	InOut
	HiddenLabel
	Optional
)

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Input is an input pin. Constant is the value used when no data connection
// feeds the pin; cty.NilVal means there is none.
type Input struct {
	Type     typesys.DataType
	Flags    Flags
	Constant cty.Value
}

// HasConstant reports whether the pin carries a usable constant.
func (in *Input) HasConstant() bool {
	return in.Constant.Type() != cty.NilType
}

// Output is an output pin.
type Output struct {
	Type  typesys.DataType
	Flags Flags
}

// Pins is an insertion-ordered set of named pins.
type Pins[P any] struct {
	names []string
	pins  map[string]*P
}

// Len returns the number of pins.
func (p *Pins[P]) Len() int {
	return len(p.names)
}

// Names returns the pin names in declaration order.
func (p *Pins[P]) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Get returns the pin called name.
func (p *Pins[P]) Get(name string) (*P, bool) {
	pin, ok := p.pins[name]
	return pin, ok
}

func (p *Pins[P]) add(name string, pin P) bool {
	if p.pins == nil {
		p.pins = make(map[string]*P)
	}
	if _, exists := p.pins[name]; exists {
		return false
	}
	p.names = append(p.names, name)
	p.pins[name] = &pin
	return true
}

func (p *Pins[P]) remove(name string) bool {
	if _, exists := p.pins[name]; !exists {
		return false
	}
	delete(p.pins, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	return true
}

func (p *Pins[P]) replace(name string, pin P) bool {
	if _, exists := p.pins[name]; !exists {
		return false
	}
	p.pins[name] = &pin
	return true
}
