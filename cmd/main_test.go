package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/squad/internal/config"
	"github.com/okian/squad/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("SQUAD_QUEUE_SIZE", "16")
			_ = os.Setenv("SQUAD_WORKER_COUNT", "2")
			_ = os.Setenv("SQUAD_POLICY__STRONG_ROUNDS", "1")
			defer func() {
				_ = os.Unsetenv("SQUAD_QUEUE_SIZE")
				_ = os.Unsetenv("SQUAD_WORKER_COUNT")
				_ = os.Unsetenv("SQUAD_POLICY__STRONG_ROUNDS")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the service is built with it", func() {
				svc, err := newService(cfg, logger.Nop())
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Policy().StrongRounds, convey.ShouldEqual, 1)
				convey.So(svc.GetStats(context.Background()).QueueCapacity, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When the policy is invalid", func() {
			cfg := config.New()
			cfg.Policy.MaxNovicesPerTeam = 5

			convey.Convey("Then the service cannot be built", func() {
				_, err := newService(cfg, logger.Nop())
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the assembled HTTP handler", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc, err := newService(config.New(), logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, svc)

		for _, path := range []string{"/healthz", "/stats", "/signups", "/openapi.yaml", "/api-docs"} {
			convey.Convey("Then GET "+path+" is served", func() {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		}

		convey.Convey("Then a synchronous allocation of an empty roster succeeds", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/allocations?sync=true", strings.NewReader(`{"participants":[]}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"teams":[]`)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a config on a free port", t, func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := l.Addr().String()
		_ = l.Close()

		cfg := config.New()
		cfg.Addr = addr
		cfg.WorkerCount = 1
		cfg.ShutdownTimeout = 2 * time.Second

		convey.Convey("When run is cancelled after the server is up", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()

			var resp *http.Response
			for i := 0; i < 50; i++ {
				resp, err = http.Get("http://" + addr + "/stats")
				if err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return")
				}
			})
		})
	})

	convey.Convey("Given the port is already taken", t, func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = l.Close() }()

		cfg := config.New()
		cfg.Addr = l.Addr().String()
		cfg.WorkerCount = 1

		convey.Convey("Then run reports the listen error", func() {
			err := run(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
