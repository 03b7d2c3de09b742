package pipeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/viewstream/viewstream/internal/utils/path"
)

func TestPickByMin(t *testing.T) {
	Convey("Given a group of bids", t, func() {
		in := NewInput()
		root, err := NewGroupBy(in, path.New(), []string{"auction"}, "bids", stringHash)
		So(err, ShouldBeNil)

		pick, err := NewPickByMin(root, path.New("bids"), "amount", "lowestBid")
		So(err, ShouldBeNil)

		var winner Item
		pick.OnModified(path.New(), func(kp path.Path, parentKey, name string, v interface{}) {
			if v == nil {
				winner = nil
				return
			}
			winner = v.(Item)
		})

		in.Add("b1", Item{"auction": "a1", "amount": 50.0, "bidder": "alice"})
		So(winner["bidder"], ShouldEqual, "alice")

		in.Add("b2", Item{"auction": "a1", "amount": 30.0, "bidder": "bob"})
		So(winner["bidder"], ShouldEqual, "bob")

		Convey("a tie keeps the earlier bidder", func() {
			in.Add("b3", Item{"auction": "a1", "amount": 30.0, "bidder": "carol"})
			So(winner["bidder"], ShouldEqual, "bob")
		})

		Convey("removing the winner promotes the next-lowest", func() {
			in.Remove("b2", Item{"auction": "a1", "amount": 30.0, "bidder": "bob"})
			So(winner["bidder"], ShouldEqual, "alice")
		})

		Convey("removing every bid clears the winner", func() {
			in.Remove("b1", Item{"auction": "a1", "amount": 50.0, "bidder": "alice"})
			in.Remove("b2", Item{"auction": "a1", "amount": 30.0, "bidder": "bob"})
			So(winner, ShouldBeNil)
		})
	})
}
