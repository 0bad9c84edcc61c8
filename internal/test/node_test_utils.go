// Package test carries shared helpers for node logic tests.
package test

import (
	"strings"
	"testing"

	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/test/mocks"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// NodeTestCase is one table entry for node logic execution.
type NodeTestCase struct {
	Name            string
	Inputs          map[string]types.Value
	ExpectedOutputs map[string]types.Value
	ExpectedFlow    string
	ExpectedError   bool
	ErrorContains   string
}

// ExecuteNodeTestCase runs a node logic against a mock context and checks
// outputs, the activated flow and the error expectation.
func ExecuteNodeTestCase(t *testing.T, logic node.NodeLogic, tc NodeTestCase) {
	t.Helper()

	ctx := mocks.NewMockExecutionContext("test-node")
	for name, v := range tc.Inputs {
		ctx.SetInput(name, v)
	}

	err := logic.Run(ctx)

	if tc.ExpectedError {
		if err == nil {
			t.Fatalf("%s: expected an error, got none", tc.Name)
		}
		if tc.ErrorContains != "" && !strings.Contains(err.Error(), tc.ErrorContains) {
			t.Fatalf("%s: error %q does not contain %q", tc.Name, err.Error(), tc.ErrorContains)
		}
		return
	}
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", tc.Name, err)
	}

	for name, want := range tc.ExpectedOutputs {
		got, ok := ctx.Output(name)
		if !ok {
			t.Fatalf("%s: output %s not set", tc.Name, name)
		}
		if !types.Equal(got, want) {
			t.Fatalf("%s: output %s = %v, want %v", tc.Name, name, got.Raw, want.Raw)
		}
	}

	if tc.ExpectedFlow != "" {
		activated := ctx.Activated()
		if len(activated) == 0 || activated[len(activated)-1] != tc.ExpectedFlow {
			t.Fatalf("%s: expected flow %s, activated %v", tc.Name, tc.ExpectedFlow, activated)
		}
	}
}
