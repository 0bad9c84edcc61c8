package node

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GitBrincie212/flow-like/pkg/types"
)

// stubLogic builds a node from a plain descriptor; Run is a no-op.
type stubLogic struct {
	desc NodeDescriptor
}

func (s *stubLogic) Describe() NodeDescriptor    { return s.desc }
func (s *stubLogic) Run(ExecutionContext) error  { return nil }

func pureLogic(id string) NodeLogic {
	return &stubLogic{desc: NodeDescriptor{
		ID:   id,
		Name: id,
		Inputs: []types.Pin{
			{Name: "in", Type: types.TypeGeneric},
		},
		Outputs: []types.Pin{
			{Name: "value", Type: types.TypeGeneric},
		},
	}}
}

func impureLogic(id string) NodeLogic {
	return &stubLogic{desc: NodeDescriptor{
		ID:   id,
		Name: id,
		Inputs: []types.Pin{
			{Name: "exec", Type: types.TypeExecution},
			{Name: "in", Type: types.TypeGeneric},
		},
		Outputs: []types.Pin{
			{Name: "exec_out", Type: types.TypeExecution},
			{Name: "second_out", Type: types.TypeExecution, Index: 1},
			{Name: PinAutoHandleError, Type: types.TypeExecution, Index: 2},
			{Name: PinAutoHandleErrorString, Type: types.TypeString, Index: 3},
		},
	}}
}

func connect(t *testing.T, from, to *RuntimePin) {
	t.Helper()
	from.AddConnection(to)
	to.AddDependency(from)
}

func pin(t *testing.T, n *RuntimeNode, name string) *RuntimePin {
	t.Helper()
	p, err := n.PinByName(name)
	require.NoError(t, err)
	return p
}

func TestPurityIsStructural(t *testing.T) {
	assert.True(t, NewRuntimeNode("p", pureLogic("p")).IsPure())
	assert.False(t, NewRuntimeNode("i", impureLogic("i")).IsPure())
}

func TestOrphanedAndReadiness(t *testing.T) {
	n := NewRuntimeNode("n", pureLogic("p"))
	// Input has neither an upstream nor a default.
	assert.True(t, n.Orphaned())
	ready, err := n.IsReady()
	require.NoError(t, err)
	assert.False(t, ready)

	pin(t, n, "in").Def().SetDefault(types.Int(1))
	assert.False(t, n.Orphaned())
	ready, err = n.IsReady()
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestReadinessRequiresUpstreamValues(t *testing.T) {
	producer := NewRuntimeNode("producer", pureLogic("p"))
	consumer := NewRuntimeNode("consumer", pureLogic("p"))
	connect(t, pin(t, producer, "value"), pin(t, consumer, "in"))
	// The producer's own input needs a default for it to be satisfiable.
	pin(t, producer, "in").Def().SetDefault(types.Int(0))

	ready, err := consumer.IsReady()
	require.NoError(t, err)
	assert.False(t, ready, "upstream has produced no value yet")

	require.NoError(t, pin(t, producer, "value").SetValue(types.Int(9)))
	ready, err = consumer.IsReady()
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestExecReadinessAnyUpstreamSuffices(t *testing.T) {
	a := NewRuntimeNode("a", impureLogic("i"))
	b := NewRuntimeNode("b", impureLogic("i"))
	target := NewRuntimeNode("target", impureLogic("i"))
	pin(t, target, "in").Def().SetDefault(types.Int(0))
	for _, n := range []*RuntimeNode{a, b} {
		pin(t, n, "in").Def().SetDefault(types.Int(0))
	}

	connect(t, pin(t, a, "exec_out"), pin(t, target, "exec"))
	connect(t, pin(t, b, "exec_out"), pin(t, target, "exec"))

	ready, err := target.IsReady()
	require.NoError(t, err)
	assert.False(t, ready, "no upstream token yet")

	// One truthy producer out of two satisfies an exec input.
	require.NoError(t, pin(t, b, "exec_out").SetValue(types.Bool(true)))
	ready, err = target.IsReady()
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestPinNameCacheIdempotence(t *testing.T) {
	n := NewRuntimeNode("n", impureLogic("i"))

	first, err := n.PinByName("exec_out")
	require.NoError(t, err)
	second, err := n.PinByName("exec_out")
	require.NoError(t, err)
	assert.Same(t, first, second)

	// Concurrent callers never observe a split cache.
	var wg sync.WaitGroup
	results := make([]*RuntimePin, 32)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			p, err := n.PinByName("exec_out")
			if err == nil {
				results[slot] = p
			}
		}(i)
	}
	wg.Wait()
	for _, p := range results {
		assert.Same(t, first, p)
	}
}

func TestNameCacheInvalidationOnStructuralChange(t *testing.T) {
	n := NewRuntimeNode("n", pureLogic("p"))
	_, err := n.PinByName("extra")
	assert.Error(t, err)

	n.AddPin(&types.Pin{Name: "extra", Direction: types.DirectionOutput, Type: types.TypeString})
	p, err := n.PinByName("extra")
	require.NoError(t, err)
	assert.Equal(t, "extra", p.Def().Name)
}

func TestPureParentsSkipExecEdgesAndImpureNodes(t *testing.T) {
	pure := NewRuntimeNode("pure", pureLogic("p"))
	impure := NewRuntimeNode("impure", impureLogic("i"))
	sink := NewRuntimeNode("sink", impureLogic("i"))

	connect(t, pin(t, pure, "value"), pin(t, sink, "in"))
	connect(t, pin(t, impure, "exec_out"), pin(t, sink, "exec"))

	parents := sink.PureParents()
	require.Len(t, parents, 1)
	assert.Same(t, pure, parents[0])
}

func TestPureParentsTraverseRelays(t *testing.T) {
	pure := NewRuntimeNode("pure", pureLogic("p"))
	sink := NewRuntimeNode("sink", pureLogic("p"))
	relay := NewRuntimePin(&types.Pin{ID: "relay", Name: "relay", Type: types.TypeGeneric}, nil)

	connect(t, pin(t, pure, "value"), relay)
	connect(t, relay, pin(t, sink, "in"))

	parents := sink.PureParents()
	require.Len(t, parents, 1)
	assert.Same(t, pure, parents[0])
}

func TestConnectedExecTargetsGroupsAndFilters(t *testing.T) {
	src := NewRuntimeNode("src", impureLogic("i"))
	dst := NewRuntimeNode("dst", impureLogic("i"))

	// Two distinct exec outputs both feed the same downstream node.
	connect(t, pin(t, src, "exec_out"), pin(t, dst, "exec"))
	connect(t, pin(t, src, "second_out"), pin(t, dst, "exec"))

	targets := src.ConnectedExecTargets(false)
	require.Len(t, targets, 1, "targets are grouped by downstream node")
	assert.Same(t, dst, targets[0].Node)
	assert.Len(t, targets[0].ThroughPins, 1, "duplicate through-pins are de-duplicated")

	// With filtering, only truthy outputs contribute.
	assert.Empty(t, src.ConnectedExecTargets(true))
	require.NoError(t, pin(t, src, "exec_out").SetValue(types.Bool(true)))
	targets = src.ConnectedExecTargets(true)
	require.Len(t, targets, 1)

	require.NoError(t, pin(t, src, "exec_out").SetValue(types.Bool(false)))
	assert.Empty(t, src.ConnectedExecTargets(true), "falsy token does not fire")
}

func TestErrorHandledTargets(t *testing.T) {
	src := NewRuntimeNode("src", impureLogic("i"))
	handler := NewRuntimeNode("handler", impureLogic("i"))
	connect(t, pin(t, src, PinAutoHandleError), pin(t, handler, "exec"))

	_, err := src.ErrorHandledTargets()
	assert.ErrorIs(t, err, ErrErrorPinInactive)

	require.NoError(t, pin(t, src, PinAutoHandleError).SetValue(types.Bool(true)))
	targets, err := src.ErrorHandledTargets()
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Same(t, handler, targets[0])

	plain := NewRuntimeNode("plain", pureLogic("p"))
	_, err = plain.ErrorHandledTargets()
	assert.ErrorIs(t, err, ErrErrorPinMissing)
}

func TestResetRuntime(t *testing.T) {
	n := NewRuntimeNode("n", impureLogic("i"))
	require.NoError(t, pin(t, n, "exec_out").SetValue(types.Bool(true)))
	n.SetState(StateSuccess)
	n.MarkExecuted()

	n.ResetRuntime()

	assert.Equal(t, StateIdle, n.State())
	assert.Zero(t, n.ExecCount())
	_, ok := pin(t, n, "exec_out").Value()
	assert.False(t, ok)
}

func TestSchemaEnforcedWrites(t *testing.T) {
	def := &types.Pin{
		Name:      "payload",
		Direction: types.DirectionOutput,
		Type:      types.TypeStruct,
		Schema:    `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`,
		Options:   &types.PinOptions{EnforceSchema: true},
	}
	p := NewRuntimePin(def, nil)

	err := p.SetValue(types.Struct(map[string]interface{}{"age": 3}))
	require.Error(t, err)

	require.NoError(t, p.SetValue(types.Struct(map[string]interface{}{"name": "ok"})))
	v, ok := p.Value()
	assert.True(t, ok)
	assert.Equal(t, types.KindStruct, v.Kind)
}
