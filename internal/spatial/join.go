// Package spatial assigns bike lanes to the neighborhood polygons that
// contain them.
package spatial

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bikeways/internal/types"
)

// Index is an R-tree of neighborhood bounding boxes.
type Index struct {
	hoods   []types.Neighborhood
	tree    rtree.RTreeG[int]
	project Projector
}

// NewIndex builds the bbox index. A nil projector means the boundary layer
// is already in WGS-84.
func NewIndex(hoods []types.Neighborhood, project Projector) *Index {
	if project == nil {
		project = Identity
	}
	idx := &Index{hoods: hoods, project: project}
	for i := range hoods {
		h := &hoods[i]
		idx.tree.Insert([2]float64{h.MinX, h.MinY}, [2]float64{h.MaxX, h.MaxY}, i)
	}
	return idx
}

// Lookup returns the first neighborhood, in boundary-file order, that
// contains pt.
func (x *Index) Lookup(pt types.Point) (*types.Neighborhood, bool) {
	p := x.project(pt)
	best := -1
	x.tree.Search([2]float64{p.X, p.Y}, [2]float64{p.X, p.Y},
		func(_, _ [2]float64, i int) bool {
			if (best < 0 || i < best) && Contains(&x.hoods[i], p) {
				best = i
			}
			return true
		},
	)
	if best < 0 {
		return nil, false
	}
	return &x.hoods[best], true
}

// Join performs a left spatial join: every lane comes back exactly once, in
// input order, with Neighborhood set when a polygon contains it. Work is
// spread over workers goroutines (one per CPU when workers <= 0).
func Join(ctx context.Context, idx *Index, lanes []types.BikeLane, workers int) ([]types.JoinedLane, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]types.JoinedLane, len(lanes))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	const chunk = 1024
	for start := 0; start < len(lanes); start += chunk {
		end := min(start+chunk, len(lanes))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				out[i] = types.JoinedLane{BikeLane: lanes[i]}
				if h, ok := idx.Lookup(lanes[i].Point); ok {
					out[i].Neighborhood = h.Name
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "spatial: join")
	}

	var matched int
	for i := range out {
		if out[i].Matched() {
			matched++
		}
	}
	zap.L().Info("spatial: joined lanes to neighborhoods",
		zap.Int("lanes", len(out)),
		zap.Int("matched", matched),
		zap.Int("unmatched", len(out)-matched),
	)
	return out, nil
}
