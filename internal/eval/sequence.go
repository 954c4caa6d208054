package eval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/node"
	"github.com/vk/nodegraph/internal/valuemap"
	"github.com/zclconf/go-cty/cty"
)

// DefaultIterationCap bounds the body rounds of a single iteration node
// visit. The evaluation that reports the loop as finished does not count, so
// a cap of N allows a loop of exactly N rounds.
const DefaultIterationCap = 10_000_000

// ErrorReporter receives the failure of a pass. n is nil when the error is
// not attributable to a node.
type ErrorReporter func(message string, n node.Node)

// Option configures a Sequence.
type Option func(*Sequence)

// WithIterationCap overrides DefaultIterationCap. Values below one are
// ignored.
func WithIterationCap(limit int) Option {
	return func(s *Sequence) {
		if limit > 0 {
			s.iterationCap = limit
		}
	}
}

// WithErrorReporter installs the callback invoked once per failed pass.
func WithErrorReporter(fn ErrorReporter) Option {
	return func(s *Sequence) {
		s.report = fn
	}
}

// Sequence walks the control-flow edges of a graph starting at its entry
// node.
type Sequence struct {
	graph        topology
	cache        *pinCache
	iterationCap int
	report       ErrorReporter
}

// NewSequence creates a sequence evaluator over g.
func NewSequence(g *graph.Graph, opts ...Option) *Sequence {
	s := &Sequence{
		graph:        g,
		cache:        newPinCache(),
		iterationCap: DefaultIterationCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CachedValue returns an output memoized during the last pass.
func (s *Sequence) CachedValue(id int32, pin string) (cty.Value, bool) {
	return s.cache.get(id, pin)
}

// Run executes one pass. Evaluation errors never escape: the pin cache is
// cleared, the error reporter is called exactly once and Run returns false.
func (s *Sequence) Run(ctx context.Context) bool {
	passID := uuid.NewString()
	ctx, logger := ctxlog.With(ctx, "pass", passID)

	start := time.Now()
	logger.Info("▶️ Starting sequence pass")
	s.cache.clear()

	if err := s.run(ctx); err != nil {
		s.cache.clear()
		n := OffendingNode(err)
		if n != nil {
			logger.Error("❌ Sequence pass failed", "error", err, "node_id", n.ID())
		} else {
			logger.Error("❌ Sequence pass failed", "error", err)
		}
		if s.report != nil {
			s.report(err.Error(), n)
		}
		return false
	}

	logger.Info("✅ Sequence pass finished", "duration", time.Since(start), "cached_pins", s.cache.len())
	return true
}

func (s *Sequence) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sequence pass panicked: %v", r)
		}
	}()

	start, ok := s.graph.StartNode()
	if !ok {
		ctxlog.FromContext(ctx).Warn("Graph has no entry node, nothing to run.")
		return nil
	}
	return s.walk(ctx, newPuller(s.graph, s.cache, true), start, false)
}

// walk evaluates n and follows the sequence edges leaving it until a path
// has no outgoing connection. Iteration bodies are walked recursively with
// body set; a body round also ends at a non-branching node with more than
// one outgoing connection.
func (s *Sequence) walk(ctx context.Context, p *puller, n node.Node, body bool) error {
	logger := ctxlog.FromContext(ctx)
	for n != nil {
		if err := ctx.Err(); err != nil {
			return aborted(n, err)
		}
		category := node.CategoryOf(n)
		logger.Debug("Visiting node.", "node_id", n.ID(), "type", n.TypeInfo().String(), "category", category.String())

		var (
			path string
			err  error
		)
		switch category {
		case node.Iteration:
			path, err = s.iterate(ctx, p, n.(node.IterationNode))
		case node.ControlFlow:
			path, err = s.step(ctx, p, n, true)
		default:
			path, err = s.step(ctx, p, n, false)
		}
		if err != nil {
			return err
		}

		next, err := s.follow(n, path)
		if body && errors.Is(err, ErrAmbiguousFlow) && (category == node.Standard || category == node.Sink) {
			logger.Debug("Body round ends at a fan-out.", "node_id", n.ID())
			return nil
		}
		if err != nil {
			return err
		}
		n = next
	}
	return nil
}

// follow returns the target of the single sequence connection leaving path
// of n, or nil when there is none.
func (s *Sequence) follow(n node.Node, path string) (node.Node, error) {
	conns := s.graph.SequenceConnectionsFrom(n.ID(), path)
	switch len(conns) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, aborted(n, fmt.Errorf("%w on path %q (%d)", ErrAmbiguousFlow, path, len(conns)))
	}

	c := conns[0]
	target, ok := s.graph.FindNode(c.ToNode)
	if !ok {
		return nil, &GraphIntegrityError{NodeID: c.ToNode, Connection: c}
	}
	return target, nil
}

// step evaluates a standard, sink or control-flow node once and returns the
// path to continue on.
func (s *Sequence) step(ctx context.Context, p *puller, n node.Node, controlFlow bool) (string, error) {
	var reserved []string
	if controlFlow {
		reserved = []string{node.SelectedOutputPath}
	}
	outputs, requested, err := outputMap(n, reserved...)
	if err != nil {
		return "", err
	}
	if err := p.evaluate(ctx, n, requested, outputs); err != nil {
		return "", err
	}
	if !controlFlow {
		return node.DefaultPath, nil
	}
	return selectedPath(n, outputs)
}

// iterate drives an iteration node: inputs are resolved once, then the node
// is evaluated and its body walked until it stops continuing.
func (s *Sequence) iterate(ctx context.Context, p *puller, it node.IterationNode) (string, error) {
	_, requested, err := outputMap(it, node.SelectedOutputPath, node.ContinueIteration)
	if err != nil {
		return "", err
	}
	inputs, err := p.fetchInputs(ctx, it, it.CollectOutputRequirements(requested))
	if err != nil {
		return "", err
	}
	if err := it.InitializeIteration(ctx, inputs); err != nil {
		return "", aborted(it, err)
	}

	logger := ctxlog.FromContext(ctx)
	for rounds := 0; ; rounds++ {
		if err := ctx.Err(); err != nil {
			return "", aborted(it, err)
		}

		outputs, _, err := outputMap(it, node.SelectedOutputPath, node.ContinueIteration)
		if err != nil {
			return "", err
		}
		if err := node.Evaluate(ctx, it, inputs, outputs); err != nil {
			return "", aborted(it, err)
		}
		s.cache.store(s.graph, it, outputs)

		cont, err := continueFlag(it, outputs)
		if err != nil {
			return "", err
		}
		if !cont {
			logger.Debug("Iteration finished.", "node_id", it.ID(), "rounds", rounds)
			break
		}
		if rounds >= s.iterationCap {
			return "", aborted(it, fmt.Errorf("%w: %d rounds", ErrIterationCap, s.iterationCap))
		}

		bodyPath, err := selectedPath(it, outputs)
		if err != nil {
			return "", err
		}
		target, err := s.follow(it, bodyPath)
		if err != nil {
			return "", err
		}
		if target != nil {
			if err := s.walk(ctx, p, target, true); err != nil {
				return "", err
			}
		}
		it.Advance()
	}
	return it.FinishedPath(), nil
}

// outputMap declares every output of n followed by the reserved slots. It
// returns the map and the declared output names.
func outputMap(n node.Node, reserved ...string) (*valuemap.Map, []string, error) {
	names := n.Outputs().Names()
	m := valuemap.New(len(names) + len(reserved))
	for i, name := range names {
		decl, _ := n.Outputs().Get(name)
		if err := m.Declare(i, name, decl.Type.Base); err != nil {
			return nil, nil, aborted(n, err)
		}
	}
	for i, name := range reserved {
		ty := cty.String
		if name == node.ContinueIteration {
			ty = cty.Bool
		}
		if err := m.Declare(len(names)+i, name, ty); err != nil {
			return nil, nil, aborted(n, err)
		}
	}
	return m, names, nil
}

func selectedPath(n node.Node, outputs *valuemap.Map) (string, error) {
	path, err := valuemap.GetStrict[string](outputs, node.SelectedOutputPath)
	if err != nil {
		return "", aborted(n, fmt.Errorf("selected path: %w", err))
	}
	if !node.HasPath(n, path) {
		return "", aborted(n, fmt.Errorf("selected path %q is not one of %q", path, node.SequencePaths(n)))
	}
	return path, nil
}

func continueFlag(n node.Node, outputs *valuemap.Map) (bool, error) {
	cont, err := valuemap.GetStrict[bool](outputs, node.ContinueIteration)
	if errors.Is(err, valuemap.ErrNotFound) {
		return false, aborted(n, errors.New("iteration node did not report whether to continue"))
	}
	if err != nil {
		return false, aborted(n, fmt.Errorf("continue flag: %w", err))
	}
	return cont, nil
}
