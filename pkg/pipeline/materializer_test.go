package pipeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/viewstream/viewstream/internal/utils/path"
)

func TestMaterializer(t *testing.T) {
	Convey("Given ungrouped visits, materialized directly off Input", t, func() {
		in := NewInput()
		m := NewMaterializer(in, nil)

		in.Add("v1", Item{"city": "austin"})
		in.Add("v2", Item{"city": "dallas"})

		Convey("root-level adds land directly in the top-level array", func() {
			So(m.State().Len(), ShouldEqual, 2)
			v1, ok := m.State().Get("v1")
			So(ok, ShouldBeTrue)
			So(v1["city"], ShouldEqual, "austin")
		})

		Convey("a root-level removal drops the entry", func() {
			in.Remove("v1", Item{"city": "austin"})
			So(m.State().Len(), ShouldEqual, 1)
			_, ok := m.State().Get("v1")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a full group+sum pipeline", t, func() {
		in := NewInput()
		group, err := NewGroupBy(in, path.New(), []string{"customerId"}, "orders", stringHash)
		So(err, ShouldBeNil)
		step, err := Sum(group, path.New("orders"), "amount")
		So(err, ShouldBeNil)

		m := NewMaterializer(step, nil)

		in.Add("o1", Item{"customerId": "c1", "amount": 12.0})
		in.Add("o2", Item{"customerId": "c1", "amount": 8.0})
		in.Add("o3", Item{"customerId": "c2", "amount": 5.0})

		Convey("each customer is one group with a nested orders array and a summed amount", func() {
			So(m.State().Len(), ShouldEqual, 2)

			groupKey, err := stringHash(map[string]interface{}{"customerId": "c1"}, []string{"customerId"})
			So(err, ShouldBeNil)

			group, ok := m.State().Get(groupKey)
			So(ok, ShouldBeTrue)
			So(group["amount"], ShouldEqual, 20.0)

			orders, ok := group["orders"].(KeyedArray)
			So(ok, ShouldBeTrue)
			So(orders.Len(), ShouldEqual, 2)

			o1, ok := orders.Get("o1")
			So(ok, ShouldBeTrue)
			So(o1["amount"], ShouldEqual, 12.0)
			So(o1, ShouldNotContainKey, "customerId")
		})

		Convey("removing every order in a group removes the group itself", func() {
			in.Remove("o3", Item{"customerId": "c2", "amount": 5.0})
			So(m.State().Len(), ShouldEqual, 1)
			groupKey, err := stringHash(map[string]interface{}{"customerId": "c2"}, []string{"customerId"})
			So(err, ShouldBeNil)
			_, ok := m.State().Get(groupKey)
			So(ok, ShouldBeFalse)
		})
	})
}
