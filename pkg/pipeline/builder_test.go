package pipeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuilder(t *testing.T) {
	Convey("Given an input grouped and summed via the builder", t, func() {
		in := NewInput()

		var root KeyedArray
		source, err := From(in).
			In().
			GroupByWithHash("orders", stringHash, "customerId").
			Sum("orders", "amount").
			Build(func(r KeyedArray) { root = r })
		So(err, ShouldBeNil)
		So(source, ShouldEqual, Step(in))

		in.Add("o1", Item{"customerId": "c1", "amount": 12.0})
		in.Add("o2", Item{"customerId": "c1", "amount": 8.0})

		groupKey, err := stringHash(map[string]interface{}{"customerId": "c1"}, []string{"customerId"})
		So(err, ShouldBeNil)
		group, ok := root.Get(groupKey)
		So(ok, ShouldBeTrue)
		So(group["amount"], ShouldEqual, 20.0)
	})

	Convey("an unknown scope fails construction and short-circuits the chain", t, func() {
		in := NewInput()
		_, err := From(in).
			In("nonexistent").
			DefineProperty("x", func(props Item) interface{} { return 1 }).
			Build(nil)
		So(err, ShouldNotBeNil)
		So(err, ShouldHaveSameTypeAs, UnknownSegmentPathError{})
	})

	Convey("TypeDescriptor reflects the chain composed so far", t, func() {
		in := NewInput()
		b := From(in).In().GroupByWithHash("orders", stringHash, "customerId")
		td := b.TypeDescriptor()
		_, ok := td.Array("orders")
		So(ok, ShouldBeTrue)
	})
}
