package pointcloud

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/depthcloud/logging"
	"go.viam.com/depthcloud/rimage"
)

// Merge concatenates the valid points of every source, in the order given and row-major
// within each source. Duplicates are kept.
func Merge(sources ...PointCloud) []r3.Vector {
	total := lo.SumBy(sources, func(pc PointCloud) int { return pc.Size() })
	merged := make([]r3.Vector, 0, total)
	for _, pc := range sources {
		pc.Iterate(func(_, _ int, p Point) bool {
			if p.Valid {
				merged = append(merged, p.Vector)
			}
			return true
		})
	}
	return merged
}

// Records are the compacted points of one or more clouds, ready to be exported. Normals is
// either empty or exactly as long as Points.
type Records struct {
	Points  []r3.Vector
	Normals []r3.Vector
}

// HasNormals reports whether every point carries a normal.
func (r Records) HasNormals() bool {
	return len(r.Points) > 0 && len(r.Normals) == len(r.Points)
}

// Len returns the number of points.
func (r Records) Len() int {
	return len(r.Points)
}

type source struct {
	points  PointCloud
	normals PointCloud
}

// An Aggregator collects the clouds of several cameras and flattens them into Records.
type Aggregator struct {
	// ZeroIsInvalid also drops points that sit exactly on the origin, for inputs that
	// used the zero vector to mark missing samples.
	ZeroIsInvalid bool

	logger  logging.Logger
	sources []source
}

// NewAggregator returns an empty Aggregator.
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Add registers the points of one camera and, optionally, its normals. Normals whose
// dimensions differ from the points are dropped with a warning.
func (a *Aggregator) Add(points, normals PointCloud) error {
	if points == nil {
		return errors.New("cannot add a nil point cloud")
	}
	if normals != nil && (normals.Width() != points.Width() || normals.Height() != points.Height()) {
		err := rimage.NewDimensionMismatchError("normals are %dx%d but points are %dx%d",
			normals.Width(), normals.Height(), points.Width(), points.Height())
		a.logger.Warnw("dropping normals", "source", len(a.sources), "error", err)
		normals = nil
	}
	a.sources = append(a.sources, source{points: points, normals: normals})
	return nil
}

// Len returns the number of registered sources.
func (a *Aggregator) Len() int {
	return len(a.sources)
}

// Records merges every source. Normals are only emitted when every source supplied them;
// a valid point whose normal could not be estimated gets the zero vector.
func (a *Aggregator) Records() Records {
	withNormals := len(a.sources) > 0 && lo.EveryBy(a.sources, func(s source) bool { return s.normals != nil })

	total := lo.SumBy(a.sources, func(s source) int { return s.points.Size() })
	records := Records{Points: make([]r3.Vector, 0, total)}
	if withNormals {
		records.Normals = make([]r3.Vector, 0, total)
	}

	for _, s := range a.sources {
		s.points.Iterate(func(x, y int, p Point) bool {
			if !p.Valid || (a.ZeroIsInvalid && p.IsZero()) {
				return true
			}
			records.Points = append(records.Points, p.Vector)
			if withNormals {
				n := s.normals.At(x, y)
				records.Normals = append(records.Normals, lo.Ternary(n.Valid, n.Vector, r3.Vector{}))
			}
			return true
		})
	}

	a.logger.Debugw("merged point clouds", "sources", len(a.sources), "points", len(records.Points),
		"normals", withNormals)
	return records
}
