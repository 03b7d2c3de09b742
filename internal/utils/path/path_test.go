package path

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPath(t *testing.T) {
	Convey("Given segment paths", t, func() {
		root := New()
		cities := New("cities")
		venues := New("cities", "venues")

		Convey("the empty path is the root", func() {
			So(root.Empty(), ShouldBeTrue)
			So(root.String(), ShouldEqual, "$")
		})

		Convey("Equal compares segments in order", func() {
			So(cities.Equal(New("cities")), ShouldBeTrue)
			So(cities.Equal(venues), ShouldBeFalse)
		})

		Convey("Contains is a prefix predicate, inclusive", func() {
			So(root.Contains(venues), ShouldBeTrue)
			So(cities.Contains(venues), ShouldBeTrue)
			So(cities.Contains(cities), ShouldBeTrue)
			So(venues.Contains(cities), ShouldBeFalse)
		})

		Convey("Under is a strict-descendant predicate", func() {
			So(venues.Under(cities), ShouldBeTrue)
			So(cities.Under(cities), ShouldBeFalse)
			So(cities.Under(venues), ShouldBeFalse)
		})

		Convey("Push/Pop round-trip", func() {
			pushed := cities.Push("venues")
			So(pushed.Equal(venues), ShouldBeTrue)

			popped, last := pushed.Pop()
			So(last, ShouldEqual, "venues")
			So(popped.Equal(cities), ShouldBeTrue)
		})

		Convey("TrimPrefix strips the common ancestor", func() {
			rest := venues.TrimPrefix(cities)
			So(rest.Equal(New("venues")), ShouldBeTrue)
		})

		Convey("WithLast replaces the final key", func() {
			kp := New("tx", "dallas")
			So(kp.WithLast("austin").Equal(New("tx", "austin")), ShouldBeTrue)
			So(root.WithLast("k").Equal(New("k")), ShouldBeTrue)
		})

		Convey("Join uses a custom delimiter", func() {
			So(venues.Join("::"), ShouldEqual, "cities::venues")
		})

		Convey("Key distinguishes paths for map lookups", func() {
			So(root.Key(), ShouldNotEqual, cities.Key())
			So(cities.Key(), ShouldNotEqual, venues.Key())
			So(New("cities").Key(), ShouldEqual, cities.Key())
		})
	})
}
