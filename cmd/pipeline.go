package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"bikeways/internal/boundary"
	"bikeways/internal/config"
	"bikeways/internal/lanes"
	"bikeways/internal/spatial"
	"bikeways/internal/types"
)

// loadAndJoin loads both inputs and runs the spatial join. It also returns
// the lane file's columns in header order.
func loadAndJoin(ctx context.Context, c *config.Config) ([]string, []types.JoinedLane, error) {
	start := time.Now()

	hoods, err := boundary.Load(c.Boundary.Path, c.Boundary.NameField)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load neighborhoods")
	}
	zap.L().Info("neighborhoods loaded",
		zap.String("path", c.Boundary.Path),
		zap.Int("count", len(hoods)),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)

	mark := time.Now()
	ds, err := lanes.ReadFile(c.Lanes.Path, lanes.Options{
		Delimiter:  []rune(c.Lanes.Delimiter)[0],
		PointField: c.Lanes.PointField,
		YearField:  c.Lanes.YearField,
		AAAField:   c.Lanes.AAAField,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "load bike lanes")
	}
	zap.L().Info("bike lanes loaded",
		zap.String("path", c.Lanes.Path),
		zap.Int("count", len(ds.Lanes)),
		zap.Duration("elapsed", time.Since(mark).Truncate(time.Millisecond)),
	)

	project, ok := spatial.ProjectorFor(c.Boundary.CRS)
	if !ok {
		return nil, nil, eris.Errorf("unsupported boundary crs %q", c.Boundary.CRS)
	}

	joined, err := spatial.Join(ctx, spatial.NewIndex(hoods, project), ds.Lanes, c.Join.Workers)
	if err != nil {
		return nil, nil, err
	}
	return ds.Columns, joined, nil
}
