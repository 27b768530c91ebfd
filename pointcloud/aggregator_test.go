package pointcloud

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/depthcloud/logging"
)

func TestMerge(t *testing.T) {
	a := makeTestCloud(t, 2, 2, 1, 1)
	b := makeTestCloud(t, 2, 1, 2, 0)

	merged := Merge(a, b)
	test.That(t, merged, test.ShouldResemble, []r3.Vector{
		{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
		{X: 1, Y: 0, Z: 2},
	})

	// order follows the arguments
	test.That(t, Merge(b, a)[0], test.ShouldResemble, NewVector(1, 0, 2))
	// duplicates are kept
	test.That(t, Merge(a, a), test.ShouldHaveLength, 6)
	test.That(t, Merge(), test.ShouldBeEmpty)
}

func TestAggregatorPointsOnly(t *testing.T) {
	logger := logging.NewTestLogger(t)
	agg := NewAggregator(logger)
	test.That(t, agg.Add(makeTestCloud(t, 2, 2, 1, 3), nil), test.ShouldBeNil)
	test.That(t, agg.Add(makeTestCloud(t, 2, 2, 2), makeTestCloud(t, 2, 2, 0)), test.ShouldBeNil)
	test.That(t, agg.Len(), test.ShouldEqual, 2)

	records := agg.Records()
	test.That(t, records.Len(), test.ShouldEqual, 7)
	test.That(t, records.Normals, test.ShouldBeEmpty)
	test.That(t, records.HasNormals(), test.ShouldBeFalse)

	test.That(t, agg.Add(nil, nil), test.ShouldNotBeNil)
}

func TestAggregatorNormals(t *testing.T) {
	logger := logging.NewTestLogger(t)
	agg := NewAggregator(logger)

	points := makeTestCloud(t, 3, 1, 4)
	normals, err := NewDense(3, 1)
	test.That(t, err, test.ShouldBeNil)
	normals.Set(1, 0, NewPoint(NewVector(0, 0, -1)))
	test.That(t, agg.Add(points, normals), test.ShouldBeNil)

	records := agg.Records()
	test.That(t, records.HasNormals(), test.ShouldBeTrue)
	test.That(t, records.Normals, test.ShouldResemble, []r3.Vector{{}, {X: 0, Y: 0, Z: -1}, {}})
}

func TestAggregatorMismatchedNormals(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	agg := NewAggregator(logger)

	test.That(t, agg.Add(makeTestCloud(t, 2, 2, 1), makeTestCloud(t, 3, 2, 0)), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("dropping normals").Len(), test.ShouldEqual, 1)

	records := agg.Records()
	test.That(t, records.Len(), test.ShouldEqual, 4)
	test.That(t, records.HasNormals(), test.ShouldBeFalse)
}

func TestAggregatorZeroIsInvalid(t *testing.T) {
	agg := NewAggregator(logging.NewTestLogger(t))
	// slot (0, 0) holds the origin
	test.That(t, agg.Add(makeTestCloud(t, 2, 1, 0), nil), test.ShouldBeNil)

	test.That(t, agg.Records().Len(), test.ShouldEqual, 2)
	agg.ZeroIsInvalid = true
	test.That(t, agg.Records().Points, test.ShouldResemble, []r3.Vector{{X: 1, Y: 0, Z: 0}})
}

func TestAggregatorEmpty(t *testing.T) {
	records := NewAggregator(logging.NewTestLogger(t)).Records()
	test.That(t, records.Len(), test.ShouldEqual, 0)
	test.That(t, records.HasNormals(), test.ShouldBeFalse)
}
