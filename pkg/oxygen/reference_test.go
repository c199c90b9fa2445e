package oxygen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceTable_Defaults(t *testing.T) {
	rows, err := ReferenceTable(DefaultReferenceFlows)
	require.NoError(t, err)
	require.Len(t, rows, len(DefaultReferenceFlows))

	want := []float64{21, 25, 29, 33, 37, 41, 45, 52, 60, 66, 75}
	for i, row := range rows {
		assert.Equal(t, DefaultReferenceFlows[i], row.FlowRate)
		assert.Equal(t, want[i], row.Percentage, "flow %v", row.FlowRate)
	}
	assert.Equal(t, RoomAir, rows[0].Device)
	assert.Equal(t, SimpleMask, rows[7].Device)
	assert.Equal(t, NonRebreather, rows[10].Device)
}

func TestReferenceTable_SkipsInvalid(t *testing.T) {
	rows, err := ReferenceTable([]float64{2, -1, 60, 8})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFlowRate)
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[0].FlowRate)
	assert.Equal(t, 8.0, rows[1].FlowRate)
}
