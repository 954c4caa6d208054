package core

import (
	"context"

	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/valuemap"
)

// Start marks where a sequence pass begins.
type Start struct {
	node.Base
}

func NewStart() *Start {
	return &Start{}
}

func (*Start) IsEntry() bool { return true }

func (*Start) Evaluate(context.Context, *valuemap.Map, *valuemap.Map) error {
	return nil
}
