package rostergen_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/squad/internal/adapters/http/api"
	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/internal/domain/tier"
	"github.com/okian/squad/internal/rostergen"
	"github.com/okian/squad/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g, err := rostergen.New(rostergen.WithSeed(42))
		So(err, ShouldBeNil)

		Convey("When generating twice", func() {
			a := g.Generate(40)
			b := g.Generate(40)

			Convey("Then the rosters are identical", func() {
				So(cmp.Diff(a, b), ShouldBeEmpty)
			})

			Convey("And every ID is unique", func() {
				seen := map[string]bool{}
				for _, s := range a {
					So(seen[s.ID], ShouldBeFalse)
					seen[s.ID] = true
				}
			})
		})

		Convey("When a different seed is used", func() {
			other, err := rostergen.New(rostergen.WithSeed(43))
			So(err, ShouldBeNil)

			Convey("Then the roster differs", func() {
				So(cmp.Diff(g.Generate(10), other.Generate(10)), ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a mix of only one tier", t, func() {
		c := tier.New()

		for _, tc := range []struct {
			mix  rostergen.Mix
			want model.Tier
		}{
			{rostergen.Mix{Supervisor: 1}, model.Supervisor},
			{rostergen.Mix{Expert: 1}, model.Expert},
			{rostergen.Mix{Competent: 1}, model.Competent},
			{rostergen.Mix{Assisted: 1}, model.NoviceAssisted},
			{rostergen.Mix{Novice: 1}, model.Novice},
		} {
			g, err := rostergen.New(rostergen.WithMix(tc.mix), rostergen.WithSeed(3))
			So(err, ShouldBeNil)

			for _, s := range g.Generate(25) {
				got, err := c.Classify(s)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, tc.want)
			}
		}
	})

	Convey("Given every signup is malformed", t, func() {
		g, err := rostergen.New(rostergen.WithMalformedRate(1), rostergen.WithMix(rostergen.Mix{Competent: 1}))
		So(err, ShouldBeNil)

		Convey("Then classification reports each one", func() {
			for _, s := range g.Generate(10) {
				_, err := tier.New().Classify(s)
				So(errors.Is(err, tier.ErrMalformedRecord), ShouldBeTrue)
			}
		})
	})

	Convey("Given an empty mix", t, func() {
		_, err := rostergen.New(rostergen.WithMix(rostergen.Mix{}))

		Convey("Then the generator is rejected", func() {
			So(errors.Is(err, rostergen.ErrInvalidOption), ShouldBeTrue)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a roster and a result", t, func() {
		roster := []model.Signup{{ID: "a"}, {ID: "b"}, {ID: "c"}}
		team := model.Team{TargetSize: 3, Members: []model.Participant{
			{ID: "a", Tier: model.Competent}, {ID: "b", Tier: model.Competent}, {ID: "c", Tier: model.Expert},
		}}
		pol := allocation.DefaultPolicy()

		Convey("Then a complete valid result passes", func() {
			So(rostergen.Verify(pol, roster, model.Result{Teams: []model.Team{team}}), ShouldBeNil)
		})

		Convey("Then a missing signup fails", func() {
			roster = append(roster, model.Signup{ID: "d"})
			err := rostergen.Verify(pol, roster, model.Result{Teams: []model.Team{team}})
			So(errors.Is(err, rostergen.ErrVerification), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service behind an HTTP server", t, func() {
		svc, err := service.New(service.WithLogger(logger.Nop()), service.WithWorkerCount(2))
		So(err, ShouldBeNil)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		cfg := rostergen.Config{
			BaseURL:      srv.URL,
			Workers:      8,
			Timeout:      5 * time.Second,
			PollInterval: 10 * time.Millisecond,
			ClearFirst:   true,
			Policy:       svc.Policy(),
		}

		Convey("When a generated roster is loaded", func() {
			g, err := rostergen.New(rostergen.WithSeed(9))
			So(err, ShouldBeNil)
			roster := g.Generate(30)

			rep, err := rostergen.Run(ctx, cfg, roster)

			Convey("Then every signup is accepted and the job finishes", func() {
				So(err, ShouldBeNil)
				So(rep.Submitted, ShouldEqual, 30)
				So(rep.Failed, ShouldEqual, 0)
				So(rep.Status, ShouldNotEqual, repository.StatusPending)
				if rep.Status == repository.StatusFailed {
					So(rep.Failure, ShouldNotBeNil)
				} else {
					So(rep.Teams, ShouldBeGreaterThan, 0)
				}
			})
		})

		Convey("When the roster is too small to form a team", func() {
			g, err := rostergen.New(rostergen.WithSeed(1))
			So(err, ShouldBeNil)

			rep, err := rostergen.Run(ctx, cfg, g.Generate(2))

			Convey("Then the failure is reported", func() {
				So(err, ShouldBeNil)
				So(rep.Status, ShouldEqual, repository.StatusFailed)
				So(rep.Failure.Invariant, ShouldEqual, string(allocation.TeamSize))
			})
		})

		Convey("When the service is unreachable", func() {
			cfg.BaseURL = "http://127.0.0.1:1"
			_, err := rostergen.Run(ctx, cfg, nil)

			Convey("Then the health check fails", func() {
				So(errors.Is(err, rostergen.ErrUnhealthy), ShouldBeTrue)
			})
		})
	})
}
