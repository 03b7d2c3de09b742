package pipeline

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/viewstream/viewstream/internal/utils/path"
)

// stringHash is a deterministic stand-in for DefaultHash: the grouping
// key is just the sorted names' values joined, so test expectations don't
// depend on hashstructure's exact encoding.
func stringHash(dict map[string]interface{}, names []string) (string, error) {
	s := ""
	for _, n := range names {
		s += fmt.Sprintf("%s=%v;", n, dict[n])
	}
	return s, nil
}

func TestGroupBy(t *testing.T) {
	Convey("Given visits grouped by city", t, func() {
		in := NewInput()
		gb, err := NewGroupBy(in, path.New(), []string{"city"}, "visits", stringHash)
		So(err, ShouldBeNil)

		type groupEvent struct {
			keyPath path.Path
			key     string
			props   Item
		}
		var groupAdds, groupRemoves []groupEvent
		var itemAdds, itemRemoves []groupEvent

		gb.OnAdded(path.New(), func(kp path.Path, key string, props Item) {
			groupAdds = append(groupAdds, groupEvent{kp, key, props})
		})
		gb.OnRemoved(path.New(), func(kp path.Path, key string, props Item) {
			groupRemoves = append(groupRemoves, groupEvent{kp, key, props})
		})
		gb.OnAdded(path.New("visits"), func(kp path.Path, key string, props Item) {
			itemAdds = append(itemAdds, groupEvent{kp, key, props})
		})
		gb.OnRemoved(path.New("visits"), func(kp path.Path, key string, props Item) {
			itemRemoves = append(itemRemoves, groupEvent{kp, key, props})
		})

		Convey("TypeDescriptor nests the member array under the group scope", func() {
			d := gb.TypeDescriptor()
			So(len(d.Arrays), ShouldEqual, 1)
			So(d.Arrays[0].Name, ShouldEqual, "visits")
		})

		Convey("the first item into a city creates the group", func() {
			in.Add("v1", Item{"city": "austin", "minutes": 5.0})

			So(groupAdds, ShouldHaveLength, 1)
			So(groupAdds[0].props["city"], ShouldEqual, "austin")
			So(itemAdds, ShouldHaveLength, 1)
			So(itemAdds[0].key, ShouldEqual, "v1")
			So(itemAdds[0].props, ShouldNotContainKey, "city")

			Convey("a second item in the same city joins without a new group", func() {
				in.Add("v2", Item{"city": "austin", "minutes": 8.0})
				So(groupAdds, ShouldHaveLength, 1)
				So(itemAdds, ShouldHaveLength, 2)

				Convey("removing one item leaves the group alive", func() {
					in.Remove("v1", Item{"city": "austin", "minutes": 5.0})
					So(itemRemoves, ShouldHaveLength, 1)
					So(groupRemoves, ShouldHaveLength, 0)

					Convey("removing the last item removes the group", func() {
						in.Remove("v2", Item{"city": "austin", "minutes": 8.0})
						So(itemRemoves, ShouldHaveLength, 2)
						So(groupRemoves, ShouldHaveLength, 1)
						So(groupRemoves[0].props["city"], ShouldEqual, "austin")
					})
				})
			})

			Convey("a different city creates its own group", func() {
				in.Add("v2", Item{"city": "dallas", "minutes": 3.0})
				So(groupAdds, ShouldHaveLength, 2)
				So(itemAdds, ShouldHaveLength, 2)
			})
		})
	})
}
