package main

import (
	"context"

	"github.com/o2calc/o2calc/pkg/clinical"
	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
)

// local evaluates everything in-process without a server.
type local struct {
	flows []float64
}

func (l local) Estimate(_ context.Context, flow float64) (types.EstimateResponse, error) {
	res, err := oxygen.Estimate(flow)
	if err != nil {
		return types.EstimateResponse{}, err
	}
	return types.NewEstimateResponse(res, clinical.Hints(res), nil), nil
}

func (l local) Reference(context.Context) ([]types.ReferenceRow, error) {
	rows, err := oxygen.ReferenceTable(l.flows)
	return types.NewReferenceRows(rows), err
}

func (l local) Devices(context.Context) ([]types.DeviceBand, error) {
	return types.NewDeviceBands(oxygen.Bands()), nil
}
