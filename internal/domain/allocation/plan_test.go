package allocation

import (
	"testing"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlanSizes(t *testing.T) {
	Convey("Given the default policy", t, func() {
		pol := DefaultPolicy()

		Convey("When a split into 4s and 5s exists it uses the fewest teams", func() {
			cases := map[int][]int{
				4:  {4},
				5:  {5},
				8:  {4, 4},
				9:  {4, 5},
				10: {5, 5},
				12: {4, 4, 4},
				13: {4, 4, 5},
				14: {4, 5, 5},
				16: {4, 4, 4, 4},
				30: {5, 5, 5, 5, 5, 5},
			}
			for n, want := range cases {
				got, err := planSizes(n, pol)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}
		})

		Convey("When only the three-team totals fit they use the fewest 3s", func() {
			cases := map[int][]int{
				3:  {3},
				6:  {3, 3},
				7:  {4, 3},
				11: {4, 4, 3},
			}
			for n, want := range cases {
				got, err := planSizes(n, pol)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}
		})

		Convey("When no legal split exists it fails", func() {
			for _, n := range []int{1, 2} {
				_, err := planSizes(n, pol)
				So(err, ShouldNotBeNil)
			}
			pol.ThreeTeamTotals = []int{3, 7}
			_, err := planSizes(6, pol)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Given hand-built teams", t, func() {
		pol := DefaultPolicy()
		p := func(id string, tier model.Tier) model.Participant { return model.Participant{ID: id, Tier: tier} }

		Convey("A legal novice host scores zero", func() {
			team := model.Team{TargetSize: 4, Members: []model.Participant{
				p("s", model.Supervisor), p("c", model.Competent), p("n1", model.Novice), p("n2", model.Novice),
			}}
			So(score(team, pol), ShouldEqual, 0)
		})

		Convey("An unplanned 3-team carries only the soft penalty", func() {
			team := model.Team{TargetSize: 4, Members: []model.Participant{
				p("c1", model.Competent), p("c2", model.Competent), p("e", model.Expert),
			}}
			So(score(team, pol), ShouldEqual, softWeight)
			team.TargetSize = 3
			So(score(team, pol), ShouldEqual, 0)
		})

		Convey("Every broken rule adds hard units", func() {
			team := model.Team{TargetSize: 5, Members: []model.Participant{
				p("n", model.Novice), p("a", model.NoviceAssisted), p("c", model.Competent),
				p("x", model.Competent), p("y", model.Competent),
			}}
			// novice off a 4-team, no supervisor, mixed five
			So(score(team, pol), ShouldEqual, 3*hardWeight)
		})

		Convey("Empty teams are free", func() {
			So(score(model.Team{TargetSize: 4}, pol), ShouldEqual, 0)
		})
	})
}

func TestDistributeWantsSupervisorGroup(t *testing.T) {
	Convey("Given an assisted member who wants a supervisor group", t, func() {
		a := model.Participant{ID: "a", Tier: model.NoviceAssisted, WantsSupervisorGroup: true}
		teams := []model.Team{
			{TargetSize: 5, Members: []model.Participant{{ID: "c", Tier: model.Competent}}},
			{TargetSize: 5, Members: []model.Participant{{ID: "s", Tier: model.Supervisor}, {ID: "e", Tier: model.Expert}}},
		}
		p := &pools{assisted: []model.Participant{a}}

		placeAssisted(teams, p)

		So(teams[0].Size(), ShouldEqual, 1)
		So(teams[1].IDs(), ShouldResemble, []string{"s", "e", "a"})
		So(p.assisted, ShouldBeEmpty)
	})
}

func TestRepairPrefersLargestGain(t *testing.T) {
	Convey("Given a stray novice on a planned 3-team", t, func() {
		pol := DefaultPolicy()
		p := func(id string, tier model.Tier) model.Participant { return model.Participant{ID: id, Tier: tier} }
		teams := []model.Team{
			{TargetSize: 4, Members: []model.Participant{p("S1", model.Supervisor), p("C2", model.Competent), p("C5", model.Competent), p("N1", model.Novice)}},
			{TargetSize: 3, Members: []model.Participant{p("C1", model.Competent), p("C4", model.Competent), p("N4", model.Novice)}},
		}

		r := &repairer{policy: pol, log: logger.Nop()}
		out, moves := r.repair(t.Context(), teams)

		So(moves, ShouldEqual, 1)
		So(out[0].IDs(), ShouldResemble, []string{"S1", "C5", "N1", "N4"})
		So(out[1].IDs(), ShouldResemble, []string{"C1", "C4", "C2"})
		So(Validate(pol, append(teams[0].Members, teams[1].Members...), out), ShouldBeNil)
	})
}
