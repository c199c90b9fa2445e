package repl

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
)

// fakeBackend evaluates locally and counts calls.
type fakeBackend struct {
	estimates int
	err       error
}

func (f *fakeBackend) Estimate(_ context.Context, flow float64) (types.EstimateResponse, error) {
	f.estimates++
	if f.err != nil {
		return types.EstimateResponse{}, f.err
	}
	res, err := oxygen.Estimate(flow)
	if err != nil {
		return types.EstimateResponse{}, err
	}
	return types.NewEstimateResponse(res, nil, nil), nil
}

func (f *fakeBackend) Reference(context.Context) ([]types.ReferenceRow, error) {
	rows, err := oxygen.ReferenceTable(oxygen.DefaultReferenceFlows)
	return types.NewReferenceRows(rows), err
}

func (f *fakeBackend) Devices(context.Context) ([]types.DeviceBand, error) {
	return types.NewDeviceBands(oxygen.Bands()), nil
}

func run(b Backend, line string) (string, bool) {
	var buf bytes.Buffer
	quit := Handle(context.Background(), b, line, &buf)
	return buf.String(), quit
}

func TestHandle_Flow(t *testing.T) {
	b := &fakeBackend{}
	out, quit := run(b, "  6 ")
	assert.False(t, quit)
	assert.Equal(t, 1, b.estimates)
	assert.Contains(t, out, "45.0%")
	assert.Contains(t, out, "Nasal Cannula")
}

func TestHandle_InvalidFlow(t *testing.T) {
	cases := map[string]string{
		"negative":  "-1",
		"above max": "51",
		"two words": "4 LPM",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			b := &fakeBackend{}
			out, quit := run(b, line)
			assert.False(t, quit)
			assert.Zero(t, b.estimates)
			assert.Contains(t, out, "invalid flow rate")
		})
	}
}

func TestHandle_UnknownCommand(t *testing.T) {
	out, quit := run(&fakeBackend{}, "frobnicate")
	assert.False(t, quit)
	assert.Contains(t, out, "Unknown command: frobnicate")
}

func TestHandle_BackendError(t *testing.T) {
	b := &fakeBackend{err: errors.New("connection refused")}
	out, _ := run(b, "2")
	assert.Contains(t, out, "error: connection refused")
}

func TestHandle_Commands(t *testing.T) {
	out, _ := run(&fakeBackend{}, "table")
	assert.Contains(t, out, "Flow Rate (LPM)")

	out, _ = run(&fakeBackend{}, "d")
	assert.Contains(t, out, "high_flow")

	out, _ = run(&fakeBackend{}, "help")
	assert.Contains(t, out, "o2calc commands")

	out, _ = run(&fakeBackend{}, "")
	assert.Empty(t, out)

	for _, q := range []string{"quit", "exit", "Q"} {
		_, quit := run(&fakeBackend{}, q)
		assert.True(t, quit, q)
	}
}
