package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 10 * time.Second

// call describes one connection: emit EmitEvent with EmitData once
// connected, then either return or wait for OnEvent.
type call struct {
	URL                string
	Namespace          string
	EmitEvent          string
	EmitData           any
	OnEvent            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value any
	err   error
}

// do connects, emits and, when OnEvent is set, waits for the reply. It
// always disconnects before returning.
func do(ctx context.Context, c call) (any, error) {
	logger := ctxlog.FromContext(ctx).With("url", c.URL, "emitEvent", c.EmitEvent, "onEvent", c.OnEvent)
	logger.Debug("socket.io call started")
	defer logger.Debug("socket.io call finished")

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must be absolute", c.URL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if c.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(c.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", c.Namespace, "sid", io.Id())
		logger.Info("Emitting event", "event", c.EmitEvent)
		if c.EmitData != nil {
			io.Emit(c.EmitEvent, c.EmitData)
		} else {
			io.Emit(c.EmitEvent)
		}
		if c.OnEvent == "" {
			finish(opResult{})
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("connection failed: %w", e)
			}
		}
		finish(opResult{err: err})
	})

	if c.OnEvent != "" {
		io.On(types.EventName(c.OnEvent), func(data ...any) {
			var responseData any
			if len(data) > 0 {
				responseData = data[0]
			}
			finish(opResult{value: responseData})
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", c.OnEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

// toNative converts a value into the plain Go data the client serializes.
func toNative(v cty.Value) (any, error) {
	if v.Type() == cty.NilType || v.IsNull() {
		return nil, nil
	}
	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromNative converts received data into a value of its implied type.
func fromNative(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return cty.NilVal, err
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, ty)
}
