package geodata

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// ErrNoBoundingRect reports a geometry with no derivable bounding
// rectangle, e.g. an empty collection.
var ErrNoBoundingRect = errors.New("could not derive bounding rectangle")

// Feature pairs a geometry with its minimal axis-aligned bounding
// rectangle. The rectangle is computed once at construction; features are
// never mutated afterwards.
type Feature struct {
	Geometry orb.Geometry
	Bound    orb.Bound
}

// NewFeature builds a Feature from g. It fails with ErrNoBoundingRect when
// g is nil or has an empty bound.
func NewFeature(g orb.Geometry) (Feature, error) {
	if g == nil {
		return Feature{}, ErrNoBoundingRect
	}

	b := g.Bound()
	if b.IsEmpty() {
		return Feature{}, ErrNoBoundingRect
	}

	return Feature{Geometry: g, Bound: b}, nil
}

// Contains reports whether the feature's exact geometry contains p. The
// bounding rectangle is checked first as a fast reject.
func (f Feature) Contains(p orb.Point) bool {
	if f.Geometry == nil || !f.Bound.Contains(p) {
		return false
	}

	return geometryContains(f.Geometry, p)
}

func geometryContains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Point:
		return g.Equal(p)
	case orb.MultiPoint:
		for _, q := range g {
			if q.Equal(p) {
				return true
			}
		}
		return false
	case orb.LineString:
		return lineStringContains(g, p)
	case orb.MultiLineString:
		for _, ls := range g {
			if lineStringContains(ls, p) {
				return true
			}
		}
		return false
	case orb.Ring:
		return planar.RingContains(g, p)
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Collection:
		for _, member := range g {
			if geometryContains(member, p) {
				return true
			}
		}
		return false
	case orb.Bound:
		return g.Contains(p)
	}

	return false
}

func lineStringContains(ls orb.LineString, p orb.Point) bool {
	for i := 1; i < len(ls); i++ {
		if onSegment(ls[i-1], ls[i], p) {
			return true
		}
	}

	return false
}

const segmentEpsilon = 1e-9

// onSegment reports whether p is collinear with the segment ab and within
// its extent.
func onSegment(a, b, p orb.Point) bool {
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if math.Abs(cross) > segmentEpsilon {
		return false
	}

	return math.Min(a[0], b[0])-segmentEpsilon <= p[0] &&
		p[0] <= math.Max(a[0], b[0])+segmentEpsilon &&
		math.Min(a[1], b[1])-segmentEpsilon <= p[1] &&
		p[1] <= math.Max(a[1], b[1])+segmentEpsilon
}
