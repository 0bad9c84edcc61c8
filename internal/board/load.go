package board

import (
	"encoding/json"
	"fmt"

	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// Spec is the serialized form of a board as authoring tools emit it.
type Spec struct {
	Name        string              `json:"name,omitempty"`
	Nodes       []NodeSpec          `json:"nodes"`
	Relays      []types.Pin         `json:"relays,omitempty"`
	Connections []ConnectionSpec    `json:"connections,omitempty"`
	Events      map[string][]string `json:"events,omitempty"`
}

// NodeSpec places one node on the board. Defaults override the descriptor's
// pin defaults, keyed by pin name.
type NodeSpec struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Defaults map[string]types.Value `json:"defaults,omitempty"`
}

// ConnectionSpec wires one producer pin to one consumer pin by full pin id
// ("nodeID:pinName", or a relay pin id).
type ConnectionSpec struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// LogicResolver maps a node type id to a fresh logic instance.
type LogicResolver func(typeID string) (node.NodeLogic, error)

// Load decodes a serialized board and resolves it into runtime form.
func Load(data []byte, resolve LogicResolver) (*InMemory, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	return FromSpec(&spec, resolve)
}

// FromSpec resolves a parsed board spec into runtime form.
func FromSpec(spec *Spec, resolve LogicResolver) (*InMemory, error) {
	builder := NewBuilder()

	for _, ns := range spec.Nodes {
		logic, err := resolve(ns.Type)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", ns.ID, err)
		}
		n := builder.AddNode(ns.ID, logic)
		for pinName, value := range ns.Defaults {
			pin, err := n.PinByName(pinName)
			if err != nil {
				return nil, fmt.Errorf("node %s: default for unknown pin %s", ns.ID, pinName)
			}
			pin.Def().SetDefault(value)
		}
	}

	for i := range spec.Relays {
		builder.AddRelayPin(&spec.Relays[i])
	}

	for _, conn := range spec.Connections {
		builder.Connect(conn.From, conn.To)
	}

	for event, nodeIDs := range spec.Events {
		for _, nodeID := range nodeIDs {
			builder.BindEvent(event, nodeID)
		}
	}

	return builder.Build()
}
