package pipeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/viewstream/viewstream/internal/utils/path"
)

func TestDropArray(t *testing.T) {
	Convey("Given orders grouped with a nested lineItems array", t, func() {
		in := NewInput()
		grouped, err := NewGroupBy(in, path.New(), []string{"orderId"}, "lineItems", stringHash)
		So(err, ShouldBeNil)

		dropped, err := NewDropArray(grouped, path.New("lineItems"))
		So(err, ShouldBeNil)

		Convey("the array disappears from the descriptor", func() {
			d := dropped.TypeDescriptor()
			So(len(d.Arrays), ShouldEqual, 0)
		})

		Convey("no events for the dropped subtree ever reach a subscriber", func() {
			var itemAdds int
			dropped.OnAdded(path.New("lineItems"), func(kp path.Path, key string, props Item) {
				itemAdds++
			})

			var groupAdds int
			dropped.OnAdded(path.New(), func(kp path.Path, key string, props Item) {
				groupAdds++
			})

			in.Add("li1", Item{"orderId": "o1", "amount": 10.0})
			So(groupAdds, ShouldEqual, 1)
			So(itemAdds, ShouldEqual, 0)
		})

		Convey("a step upstream of DropArray still sees everything", func() {
			sum, err := Sum(grouped, path.New("lineItems"), "amount")
			So(err, ShouldBeNil)

			var lastSum float64
			sum.OnModified(path.New(), func(kp path.Path, parentKey, name string, v interface{}) {
				lastSum = v.(float64)
			})

			in.Add("li1", Item{"orderId": "o1", "amount": 10.0})
			So(lastSum, ShouldEqual, 10.0)
		})
	})
}
