package pipeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/viewstream/viewstream/internal/utils/path"
)

func TestMinMaxAverage(t *testing.T) {
	Convey("Given a group of temperature readings", t, func() {
		in := NewInput()
		root, err := NewGroupBy(in, path.New(), []string{"station"}, "readings", stringHash)
		So(err, ShouldBeNil)

		min, err := NewMin(root, path.New("readings"), "temp")
		So(err, ShouldBeNil)
		max, err := NewMax(root, path.New("readings"), "temp")
		So(err, ShouldBeNil)
		avg, err := NewAverage(root, path.New("readings"), "temp")
		So(err, ShouldBeNil)

		var lastMin, lastMax, lastAvg interface{}
		min.OnModified(path.New(), func(kp path.Path, parentKey, name string, v interface{}) { lastMin = v })
		max.OnModified(path.New(), func(kp path.Path, parentKey, name string, v interface{}) { lastMax = v })
		avg.OnModified(path.New(), func(kp path.Path, parentKey, name string, v interface{}) { lastAvg = v })

		Convey("null readings are skipped entirely", func() {
			in.Add("r1", Item{"station": "abq", "temp": nil})
			So(lastMin, ShouldBeNil)
			So(lastMax, ShouldBeNil)
			So(lastAvg, ShouldBeNil)
		})

		Convey("three readings track min/max/average as they arrive and leave", func() {
			in.Add("r1", Item{"station": "abq", "temp": 70.0})
			So(lastMin, ShouldEqual, 70.0)
			So(lastMax, ShouldEqual, 70.0)
			So(lastAvg, ShouldEqual, 70.0)

			in.Add("r2", Item{"station": "abq", "temp": 80.0})
			So(lastMin, ShouldEqual, 70.0)
			So(lastMax, ShouldEqual, 80.0)
			So(lastAvg, ShouldEqual, 75.0)

			in.Add("r3", Item{"station": "abq", "temp": 60.0})
			So(lastMin, ShouldEqual, 60.0)
			So(lastMax, ShouldEqual, 80.0)
			So(lastAvg, ShouldEqual, 70.0)

			in.Remove("r3", Item{"station": "abq", "temp": 60.0})
			So(lastMin, ShouldEqual, 70.0)
			So(lastMax, ShouldEqual, 80.0)
			So(lastAvg, ShouldEqual, 75.0)
		})
	})
}
