package math_test

import (
	"testing"

	"github.com/GitBrincie212/flow-like/internal/catalog/math"
	"github.com/GitBrincie212/flow-like/internal/test"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

func TestAdd(t *testing.T) {
	testCases := []test.NodeTestCase{
		{
			Name:            "integers stay integral",
			Inputs:          map[string]types.Value{"a": types.Int(7), "b": types.Int(3)},
			ExpectedOutputs: map[string]types.Value{"result": types.Int(10)},
		},
		{
			Name:            "floats",
			Inputs:          map[string]types.Value{"a": types.Float(1.5), "b": types.Float(2.25)},
			ExpectedOutputs: map[string]types.Value{"result": types.Float(3.75)},
		},
		{
			Name:          "non-numeric fails",
			Inputs:        map[string]types.Value{"a": types.Struct(map[string]interface{}{}), "b": types.Int(1)},
			ExpectedError: true,
		},
	}
	for _, tc := range testCases {
		test.ExecuteNodeTestCase(t, math.NewAdd(), tc)
	}
}

func TestSubtract(t *testing.T) {
	test.ExecuteNodeTestCase(t, math.NewSubtract(), test.NodeTestCase{
		Name:            "subtracts",
		Inputs:          map[string]types.Value{"a": types.Int(10), "b": types.Int(4)},
		ExpectedOutputs: map[string]types.Value{"result": types.Int(6)},
	})
}

func TestMultiply(t *testing.T) {
	test.ExecuteNodeTestCase(t, math.NewMultiply(), test.NodeTestCase{
		Name:            "multiplies",
		Inputs:          map[string]types.Value{"a": types.Int(5), "b": types.Int(5)},
		ExpectedOutputs: map[string]types.Value{"result": types.Int(25)},
	})
}

func TestDivide(t *testing.T) {
	testCases := []test.NodeTestCase{
		{
			Name:            "divides and fires done",
			Inputs:          map[string]types.Value{"a": types.Int(10), "b": types.Int(2)},
			ExpectedOutputs: map[string]types.Value{"result": types.Int(5)},
			ExpectedFlow:    "exec_out",
		},
		{
			Name:            "fractional quotient",
			Inputs:          map[string]types.Value{"a": types.Int(1), "b": types.Int(2)},
			ExpectedOutputs: map[string]types.Value{"result": types.Float(0.5)},
			ExpectedFlow:    "exec_out",
		},
		{
			Name:          "division by zero fails",
			Inputs:        map[string]types.Value{"a": types.Int(1), "b": types.Int(0)},
			ExpectedError: true,
			ErrorContains: "division by zero",
		},
	}
	for _, tc := range testCases {
		test.ExecuteNodeTestCase(t, math.NewDivide(), tc)
	}
}

func TestDivideCarriesErrorPins(t *testing.T) {
	desc := math.NewDivide().Describe()
	var hasErrorPin, hasErrorString bool
	for _, pin := range desc.Outputs {
		switch pin.Name {
		case "auto_handle_error":
			hasErrorPin = pin.IsExecution()
		case "auto_handle_error_string":
			hasErrorString = pin.Type == types.TypeString
		}
	}
	if !hasErrorPin || !hasErrorString {
		t.Fatal("divide must carry the error handling pin pair")
	}
}
