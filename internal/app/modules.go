package app

import (
	"io"

	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/modules/core"
	"github.com/vk/nodegraph/modules/env_vars"
	"github.com/vk/nodegraph/modules/http_client"
	"github.com/vk/nodegraph/modules/print"
	"github.com/vk/nodegraph/modules/socketio"
)

// builtinModules is the definitive list of all modules that are compiled
// into the nodegraph binary. Print nodes write to outW.
func builtinModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&core.Module{},
		&print.Module{Writer: outW},
		&env_vars.Module{},
		&http_client.Module{},
		&socketio.Module{},
	}
}
