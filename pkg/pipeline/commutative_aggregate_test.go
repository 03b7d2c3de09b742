package pipeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/viewstream/viewstream/internal/utils/path"
)

func TestSum(t *testing.T) {
	Convey("Given orders with a nested lineItems array", t, func() {
		in := NewInput()
		// A GroupBy over the input supplies the nested lineItems array
		// that Sum aggregates over.
		root, err := NewGroupBy(in, path.New(), []string{"orderId"}, "lineItems", stringHash)
		So(err, ShouldBeNil)

		sum, err := Sum(root, path.New("lineItems"), "amount")
		So(err, ShouldBeNil)

		var mods []float64
		sum.OnModified(path.New(), func(kp path.Path, parentKey string, name string, v interface{}) {
			if name == "amount" {
				mods = append(mods, v.(float64))
			}
		})

		Convey("summing two line items on the same order", func() {
			in.Add("li1", Item{"orderId": "o1", "amount": 10.0})
			in.Add("li2", Item{"orderId": "o1", "amount": 5.0})

			So(mods, ShouldResemble, []float64{10.0, 15.0})

			Convey("removing one line item subtracts its amount", func() {
				in.Remove("li1", Item{"orderId": "o1", "amount": 10.0})
				So(mods, ShouldResemble, []float64{10.0, 15.0, 5.0})
			})
		})

		Convey("two different orders accumulate independently", func() {
			in.Add("li1", Item{"orderId": "o1", "amount": 10.0})
			in.Add("li2", Item{"orderId": "o2", "amount": 7.0})
			So(mods, ShouldResemble, []float64{10.0, 7.0})
		})

		Convey("removing the last line item of an order emits no final Modified", func() {
			in.Add("li1", Item{"orderId": "o1", "amount": 10.0})
			So(mods, ShouldResemble, []float64{10.0})

			in.Remove("li1", Item{"orderId": "o1", "amount": 10.0})
			So(mods, ShouldResemble, []float64{10.0})

			Convey("and a later order starting fresh accumulates from the seed, not the stale accumulator", func() {
				in.Add("li2", Item{"orderId": "o1", "amount": 3.0})
				So(mods, ShouldResemble, []float64{10.0, 3.0})
			})
		})
	})
}

func TestCount(t *testing.T) {
	Convey("Given groups of items", t, func() {
		in := NewInput()
		root, err := NewGroupBy(in, path.New(), []string{"tag"}, "members", stringHash)
		So(err, ShouldBeNil)

		count, err := Count(root, path.New("members"), "tag")
		So(err, ShouldBeNil)

		var last float64
		count.OnModified(path.New(), func(kp path.Path, parentKey string, name string, v interface{}) {
			last = v.(float64)
		})

		in.Add("a", Item{"tag": "x"})
		So(last, ShouldEqual, 1)
		in.Add("b", Item{"tag": "x"})
		So(last, ShouldEqual, 2)
		in.Remove("a", Item{"tag": "x"})
		So(last, ShouldEqual, 1)
	})
}
