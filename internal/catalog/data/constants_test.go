package data_test

import (
	"testing"

	"github.com/GitBrincie212/flow-like/internal/catalog/data"
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/test"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

func TestConstantInt(t *testing.T) {
	testCases := []test.NodeTestCase{
		{
			Name:            "emits literal",
			Inputs:          map[string]types.Value{"_literal": types.Int(7)},
			ExpectedOutputs: map[string]types.Value{"value": types.Int(7)},
		},
		{
			Name:            "coerces string literal",
			Inputs:          map[string]types.Value{"_literal": types.String("42")},
			ExpectedOutputs: map[string]types.Value{"value": types.Int(42)},
		},
		{
			Name:          "missing literal fails",
			Inputs:        map[string]types.Value{},
			ExpectedError: true,
			ErrorContains: "_literal",
		},
	}
	for _, tc := range testCases {
		test.ExecuteNodeTestCase(t, data.NewConstantInt(), tc)
	}
}

func TestConstantBool(t *testing.T) {
	testCases := []test.NodeTestCase{
		{
			Name:            "emits true",
			Inputs:          map[string]types.Value{"_literal": types.Bool(true)},
			ExpectedOutputs: map[string]types.Value{"value": types.Bool(true)},
		},
		{
			Name:            "zero is false",
			Inputs:          map[string]types.Value{"_literal": types.Int(0)},
			ExpectedOutputs: map[string]types.Value{"value": types.Bool(false)},
		},
	}
	for _, tc := range testCases {
		test.ExecuteNodeTestCase(t, data.NewConstantBool(), tc)
	}
}

func TestConstantFloat(t *testing.T) {
	test.ExecuteNodeTestCase(t, data.NewConstantFloat(), test.NodeTestCase{
		Name:            "emits literal",
		Inputs:          map[string]types.Value{"_literal": types.Float(2.5)},
		ExpectedOutputs: map[string]types.Value{"value": types.Float(2.5)},
	})
}

func TestConstantString(t *testing.T) {
	test.ExecuteNodeTestCase(t, data.NewConstantString(), test.NodeTestCase{
		Name:            "emits literal",
		Inputs:          map[string]types.Value{"_literal": types.String("hi")},
		ExpectedOutputs: map[string]types.Value{"value": types.String("hi")},
	})
}

func TestConstantsArePure(t *testing.T) {
	descriptors := map[string]node.NodeDescriptor{
		"bool":   data.NewConstantBool().Describe(),
		"int":    data.NewConstantInt().Describe(),
		"float":  data.NewConstantFloat().Describe(),
		"string": data.NewConstantString().Describe(),
	}
	for name, desc := range descriptors {
		for _, pin := range append(desc.Inputs, desc.Outputs...) {
			if pin.IsExecution() {
				t.Errorf("constant %s carries execution pin %s", name, pin.Name)
			}
		}
	}
}
