package eval

import (
	"strings"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// PinKey addresses one output of one node.
type PinKey struct {
	NodeID int32
	Pin    string
}

// pinCache memoizes outputs for the duration of one sequence pass. A nil
// cache never hits and stores nothing.
type pinCache struct {
	values map[PinKey]cty.Value
}

func newPinCache() *pinCache {
	return &pinCache{values: make(map[PinKey]cty.Value)}
}

func (c *pinCache) get(id int32, pin string) (cty.Value, bool) {
	if c == nil {
		return cty.NilVal, false
	}
	v, ok := c.values[PinKey{NodeID: id, Pin: pin}]
	return v, ok
}

// store records the populated outputs of n when n is part of the sequence
// and something pulls from it.
func (c *pinCache) store(g topology, n node.Node, outputs *valuemap.Map) {
	if c == nil || !cacheable(g, n) {
		return
	}
	for _, s := range outputs.Slots() {
		if !s.IsSet() || strings.HasPrefix(s.Name, "__") {
			continue
		}
		c.values[PinKey{NodeID: n.ID(), Pin: s.Name}] = s.Value
	}
}

func (c *pinCache) clear() {
	if c != nil {
		clear(c.values)
	}
}

func (c *pinCache) len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// cacheable reports whether n is reached through the control-flow walk and
// feeds at least one data connection.
func cacheable(g topology, n node.Node) bool {
	id := n.ID()
	if !node.IsEntry(n) && len(g.SequenceConnectionsTo(id)) == 0 {
		return false
	}
	return g.HasOutgoingData(id)
}
