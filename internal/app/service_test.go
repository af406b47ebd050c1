package service_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func signup(id string, kc int) model.Signup {
	return model.Signup{ID: id, DisplayName: id, KillCount: model.KillCount(strconv.Itoa(kc))}
}

func supervisor(id string, kc int) model.Signup {
	s := signup(id, kc)
	s.SupervisorRole = true
	return s
}

// feasibleRoster splits into teams of 4, 4 and 5 without repair.
func feasibleRoster() []model.Signup {
	return []model.Signup{
		supervisor("S1", 500), supervisor("S2", 400),
		signup("C1", 90), signup("C2", 80), signup("C3", 70), signup("C4", 60),
		signup("A1", 20), signup("A2", 19), signup("A3", 18),
		signup("N1", 5), signup("N2", 4), signup("N3", 3), signup("N4", 2),
	}
}

func newService(opts ...service.Option) *service.Service {
	svc, err := service.New(append([]service.Option{service.WithLogger(logger.Nop())}, opts...)...)
	So(err, ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := newService()

		Convey("Then it should use the default policy and be stopped", func() {
			So(svc.Policy(), ShouldResemble, allocation.DefaultPolicy())
			So(svc.GetStats(context.Background()).Started, ShouldBeFalse)
		})
	})

	Convey("Given an invalid policy", t, func() {
		p := allocation.DefaultPolicy()
		p.MaxNovicesPerTeam = 0
		_, err := service.New(service.WithLogger(logger.Nop()), service.WithPolicy(p))

		Convey("Then New should fail", func() {
			So(errors.Is(err, allocation.ErrInvalidPolicy), ShouldBeTrue)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService(service.WithWorkerCount(2), service.WithQueueSize(8))
		ctx := context.Background()

		Convey("When starting the service twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then it should report the pipeline", func() {
				st := svc.GetStats(ctx)
				So(st.Started, ShouldBeTrue)
				So(st.WorkerCount, ShouldEqual, 2)
				So(st.QueueCapacity, ShouldEqual, 8)
			})
		})

		Convey("When stopping a started service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
			svc.Stop()

			Convey("Then it should be marked as stopped and refuse jobs", func() {
				So(svc.GetStats(ctx).Started, ShouldBeFalse)
				_, err := svc.RequestAllocation(ctx, "", nil)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When restarting after a stop", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then a fresh queue should accept jobs", func() {
				_, err := svc.RequestAllocation(ctx, "", feasibleRoster())
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_Signups(t *testing.T) {
	Convey("Given a service with a small roster limit", t, func() {
		svc := newService(service.WithMaxRosterSize(2))
		ctx := context.Background()

		Convey("When the same participant signs up twice", func() {
			created, err := svc.SubmitSignup(ctx, signup("a", 5))
			So(err, ShouldBeNil)
			So(created, ShouldBeTrue)

			created, err = svc.SubmitSignup(ctx, signup("a", 50))
			So(err, ShouldBeNil)

			Convey("Then the later record replaces the earlier one", func() {
				So(created, ShouldBeFalse)
				list := svc.Signups(ctx)
				So(len(list), ShouldEqual, 1)
				So(list[0].KillCount, ShouldEqual, model.KillCount("50"))
			})
		})

		Convey("When the roster is full", func() {
			_, _ = svc.SubmitSignup(ctx, signup("a", 5))
			_, _ = svc.SubmitSignup(ctx, signup("b", 5))
			_, err := svc.SubmitSignup(ctx, signup("c", 5))

			Convey("Then new signups are refused", func() {
				So(errors.Is(err, repository.ErrRosterFull), ShouldBeTrue)
			})
		})

		Convey("When the roster is cleared", func() {
			_, _ = svc.SubmitSignup(ctx, signup("a", 5))
			n := svc.ClearSignups(ctx)

			Convey("Then it should be empty", func() {
				So(n, ShouldEqual, 1)
				So(svc.Signups(ctx), ShouldBeEmpty)
			})
		})
	})
}

func TestService_AllocateNow(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("When allocating a feasible roster inline", func() {
			rec, err := svc.AllocateNow(ctx, feasibleRoster())

			Convey("Then the job is stored as done and becomes the latest", func() {
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, repository.StatusDone)
				So(len(rec.Result.Teams), ShouldEqual, 3)
				So(rec.CompletedAt.IsZero(), ShouldBeFalse)

				latest, err := svc.LatestAllocation(ctx)
				So(err, ShouldBeNil)
				So(latest.ID, ShouldEqual, rec.ID)
			})
		})

		Convey("When allocating an infeasible roster inline", func() {
			rec, err := svc.AllocateNow(ctx, []model.Signup{signup("a", 5), signup("b", 5)})

			Convey("Then the failure is stored with the invariant", func() {
				So(errors.Is(err, allocation.ErrInfeasible), ShouldBeTrue)
				So(rec.Status, ShouldEqual, repository.StatusFailed)
				So(rec.Failure.Invariant, ShouldEqual, string(allocation.TeamSize))

				_, err := svc.LatestAllocation(ctx)
				So(errors.Is(err, repository.ErrNoResult), ShouldBeTrue)
			})
		})

		Convey("When allocating the current roster", func() {
			for _, s := range feasibleRoster() {
				_, err := svc.SubmitSignup(ctx, s)
				So(err, ShouldBeNil)
			}
			rec, err := svc.AllocateNow(ctx, nil)

			Convey("Then every signup is placed", func() {
				So(err, ShouldBeNil)
				So(rec.Result.Participants(), ShouldEqual, 13)
			})
		})
	})
}

func TestService_RequestAllocation(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the same request ID is submitted twice", func() {
			first, err := svc.RequestAllocation(ctx, "req-1", feasibleRoster())
			So(err, ShouldBeNil)
			second, err := svc.RequestAllocation(ctx, "req-1", feasibleRoster())
			So(err, ShouldBeNil)

			Convey("Then both tickets name the same job", func() {
				So(first.Duplicate, ShouldBeFalse)
				So(second.Duplicate, ShouldBeTrue)
				So(second.JobID, ShouldEqual, first.JobID)
			})
		})

		Convey("When requests carry no ID", func() {
			a, err := svc.RequestAllocation(ctx, "", feasibleRoster())
			So(err, ShouldBeNil)
			b, err := svc.RequestAllocation(ctx, "", feasibleRoster())
			So(err, ShouldBeNil)

			Convey("Then each gets its own job", func() {
				So(a.JobID, ShouldNotEqual, b.JobID)
				So(a.Status, ShouldEqual, repository.StatusPending)
			})
		})

		Convey("When the job is unknown", func() {
			_, err := svc.Allocation(ctx, "missing")

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
