package utility_test

import (
	"testing"

	"github.com/GitBrincie212/flow-like/internal/catalog/utility"
	"github.com/GitBrincie212/flow-like/internal/test"
	"github.com/GitBrincie212/flow-like/internal/test/mocks"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

func TestEntryActivatesStart(t *testing.T) {
	test.ExecuteNodeTestCase(t, utility.NewEntry(), test.NodeTestCase{
		Name:         "fires",
		ExpectedFlow: "exec_out",
	})
}

func TestLog(t *testing.T) {
	testCases := []test.NodeTestCase{
		{
			Name:            "renders numbers",
			Inputs:          map[string]types.Value{"message": types.Int(10)},
			ExpectedOutputs: map[string]types.Value{"logged": types.String("10")},
			ExpectedFlow:    "exec_out",
		},
		{
			Name:            "passes strings through",
			Inputs:          map[string]types.Value{"message": types.String("hello")},
			ExpectedOutputs: map[string]types.Value{"logged": types.String("hello")},
			ExpectedFlow:    "exec_out",
		},
	}
	for _, tc := range testCases {
		test.ExecuteNodeTestCase(t, utility.NewLog(), tc)
	}
}

func TestLogWritesTraceEntry(t *testing.T) {
	ctx := mocks.NewMockExecutionContext("log-1")
	ctx.SetInput("message", types.String("traced"))

	if err := utility.NewLog().Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := ctx.Entries()
	if len(entries) != 1 || entries[0].Message != "traced" {
		t.Fatalf("expected one trace entry %q, got %v", "traced", entries)
	}
}
