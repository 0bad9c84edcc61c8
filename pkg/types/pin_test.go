package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinSerializationRoundTrip(t *testing.T) {
	step := 0.5
	pin := Pin{
		ID:           "n1:a",
		Name:         "a",
		FriendlyName: "A",
		Description:  "first operand",
		Direction:    DirectionInput,
		Type:         TypeFloat,
		Shape:        ShapeScalar,
		DependsOn:    []string{"n0:value"},
		Index:        2,
		Options: &PinOptions{
			Range: &[2]float64{0, 10},
			Step:  &step,
		},
	}
	pin.SetDefault(Float(1.5))

	data, err := json.Marshal(&pin)
	require.NoError(t, err)

	var decoded Pin
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, pin.ID, decoded.ID)
	assert.Equal(t, pin.Name, decoded.Name)
	assert.Equal(t, pin.Direction, decoded.Direction)
	assert.Equal(t, pin.Type, decoded.Type)
	assert.Equal(t, pin.Shape, decoded.Shape)
	assert.Equal(t, pin.DependsOn, decoded.DependsOn)
	assert.Equal(t, pin.Index, decoded.Index)
	require.NotNil(t, decoded.Options)
	assert.Equal(t, *pin.Options.Range, *decoded.Options.Range)

	def, err := decoded.DecodeDefault()
	require.NoError(t, err)
	assert.True(t, Equal(Float(1.5), def))
}

func TestPinDefaults(t *testing.T) {
	pin := &Pin{ID: "p", Name: "p", Direction: DirectionInput, Type: TypeInteger}
	assert.False(t, pin.HasDefault())
	_, err := pin.DecodeDefault()
	assert.Error(t, err)

	pin.SetDefault(Int(3))
	assert.True(t, pin.HasDefault())
	v, err := pin.DecodeDefault()
	require.NoError(t, err)
	assert.True(t, Equal(Int(3), v))
}

func TestValidateConnection(t *testing.T) {
	execOut := &Pin{Name: "exec_out", Direction: DirectionOutput, Type: TypeExecution}
	execIn := &Pin{Name: "exec", Direction: DirectionInput, Type: TypeExecution}
	intOut := &Pin{Name: "value", Direction: DirectionOutput, Type: TypeInteger}
	intIn := &Pin{Name: "a", Direction: DirectionInput, Type: TypeInteger}
	genericIn := &Pin{Name: "any", Direction: DirectionInput, Type: TypeGeneric}
	strIn := &Pin{Name: "s", Direction: DirectionInput, Type: TypeString}

	assert.NoError(t, execOut.ValidateConnection(execIn))
	assert.NoError(t, intOut.ValidateConnection(intIn))
	assert.NoError(t, intOut.ValidateConnection(genericIn))

	assert.Error(t, execOut.ValidateConnection(intIn), "exec cannot feed data")
	assert.Error(t, intOut.ValidateConnection(execIn), "data cannot feed exec")
	assert.Error(t, intOut.ValidateConnection(strIn), "incompatible kinds")
	assert.Error(t, intIn.ValidateConnection(intOut), "direction reversed")
}

func TestPinClone(t *testing.T) {
	pin := &Pin{
		ID:        "p",
		Name:      "p",
		Direction: DirectionOutput,
		Type:      TypeString,
		DependsOn: []string{"x"},
	}
	clone := pin.Clone()
	clone.DependsOn[0] = "changed"
	assert.Equal(t, "x", pin.DependsOn[0])
}
