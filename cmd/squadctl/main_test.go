package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/squad/internal/adapters/http/api"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/pkg/logger"
)

func init() {
	color.NoColor = true
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func execute(stdin string, args ...string) (string, string, error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

const roster = `
signups:
  - {id: S1, display_name: "Vex (main)", supervisor_role: true, kill_count: 500}
  - {id: S2, display_name: Kat, supervisor_role: true, kill_count: 400}
  - {id: C1, display_name: C1, kill_count: 90}
  - {id: C2, display_name: C2, kill_count: 80}
  - {id: C3, display_name: C3, kill_count: "70"}
  - {id: C4, display_name: C4, kill_count: 60}
  - {id: A1, display_name: A1, kill_count: 20}
  - {id: A2, display_name: A2, kill_count: 19}
  - {id: A3, display_name: A3, kill_count: 18}
  - {id: N1, display_name: N1, kill_count: 5}
  - {id: N2, display_name: N2, kill_count: 4}
  - {id: N3, display_name: N3, kill_count: 3}
  - {id: N4, display_name: N4, kill_count: 2}
`

func TestAllocateCommand(t *testing.T) {
	convey.Convey("Given a roster on stdin", t, func() {
		convey.Convey("When allocating as text", func() {
			out, _, err := execute(roster, "allocate")

			convey.Convey("Then three teams are printed with tier tags", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.Count(out, "Team "), convey.ShouldEqual, 3)
				convey.So(out, convey.ShouldContainSubstring, "  - Vex — ID: S1 [supervisor]")
			})
		})

		convey.Convey("When allocating as JSON", func() {
			out, _, err := execute(roster, "allocate", "--format", "json")

			convey.Convey("Then the result is JSON", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"repair_moves": 0`)
			})
		})

		convey.Convey("When the roster cannot form a team", func() {
			_, errOut, err := execute("[{id: a, kill_count: 3}, {id: b, kill_count: 4}]", "allocate")

			convey.Convey("Then the invariant is reported", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errOut, convey.ShouldContainSubstring, "no valid allocation")
			})
		})

		convey.Convey("When writing to a file", func() {
			path := filepath.Join(t.TempDir(), "teams.txt")
			_, _, err := execute(roster, "allocate", "-o", path)

			convey.Convey("Then the file holds the plain text export", func() {
				convey.So(err, convey.ShouldBeNil)
				data, err := os.ReadFile(path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldStartWith, "Team 1\n")
				convey.So(string(data), convey.ShouldNotContainSubstring, "[supervisor]")
			})
		})

		convey.Convey("When the format is unknown", func() {
			_, _, err := execute(roster, "allocate", "--format", "csv")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestGenerateCommand(t *testing.T) {
	convey.Convey("Given the generate command", t, func() {
		convey.Convey("When the same seed is used twice", func() {
			a, _, err := execute("", "generate", "-n", "12", "--seed", "5")
			convey.So(err, convey.ShouldBeNil)
			b, _, err := execute("", "generate", "-n", "12", "--seed", "5")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the output is identical and readable by allocate", func() {
				convey.So(a, convey.ShouldEqual, b)
				list, err := readRoster("-", strings.NewReader(a))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(list), convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When JSON is requested", func() {
			out, _, err := execute("", "generate", "-n", "3", "--format", "json")

			convey.Convey("Then a JSON list is written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.TrimSpace(out), convey.ShouldStartWith, "[")
			})
		})
	})
}

func TestLoadCommand(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		svc, err := service.New(service.WithLogger(logger.Nop()), service.WithWorkerCount(2))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When a roster is loaded", func() {
			out, _, err := execute("", "load", "--url", srv.URL, "-n", "25", "--seed", "3")

			convey.Convey("Then the run is summarised", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "submitted 25 signups (0 rejected)")
				convey.So(svc.Signups(ctx), convey.ShouldHaveLength, 25)
			})
		})
	})
}
