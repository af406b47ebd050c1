package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/squad/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SQUAD_ADDR", ":8080")
			_ = os.Setenv("SQUAD_QUEUE_SIZE", "64")
			_ = os.Setenv("SQUAD_WORKER_COUNT", "4")
			_ = os.Setenv("SQUAD_POLICY__STRONG_ROUNDS", "3")
			_ = os.Setenv("SQUAD_POLICY__CONSOLIDATE_UNDER_SUPERVISED", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.Policy.StrongRounds, convey.ShouldEqual, 3)
				convey.So(cfg.Policy.ConsolidateUnderSupervised, convey.ShouldBeTrue)
				convey.So(cfg.Policy.RepairBudgetFloor, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			yamlContent := `
addr: ":9090"
log_format: json
history_size: 10
shutdown_timeout: 5s
policy:
  novice_max_kc: 5
  three_team_totals: [3, 6]
  max_novices_per_team: 1
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SQUAD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep defaults elsewhere", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.HistorySize, convey.ShouldEqual, 10)
				convey.So(cfg.ShutdownTimeout.Seconds(), convey.ShouldEqual, 5)
				convey.So(cfg.Policy.NoviceMaxKC, convey.ShouldEqual, 5)
				convey.So(cfg.Policy.AssistedMaxKC, convey.ShouldEqual, 25)
				convey.So(cfg.Policy.ThreeTeamTotals, convey.ShouldResemble, []int{3, 6})
				convey.So(cfg.AllocationPolicy().MaxNovicesPerTeam, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nworker_count: 24\nqueue_size: 300\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SQUAD_CONFIG", tmpFile)
			_ = os.Setenv("SQUAD_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SQUAD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SQUAD_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SQUAD_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid policy", func() {
			_ = os.Setenv("SQUAD_POLICY__MAX_NOVICES_PER_TEAM", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should reject the policy", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SQUAD_CONFIG",
		"SQUAD_ADDR",
		"SQUAD_QUEUE_SIZE",
		"SQUAD_WORKER_COUNT",
		"SQUAD_POLICY__STRONG_ROUNDS",
		"SQUAD_POLICY__CONSOLIDATE_UNDER_SUPERVISED",
		"SQUAD_POLICY__MAX_NOVICES_PER_TEAM",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "squad-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
