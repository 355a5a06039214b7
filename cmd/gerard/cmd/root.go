package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TipTopTap/super-doodle/internal/config"
	"github.com/TipTopTap/super-doodle/internal/logger"
	"github.com/TipTopTap/super-doodle/internal/pipeline"
	"github.com/TipTopTap/super-doodle/internal/provision"
	"github.com/TipTopTap/super-doodle/pkg/report"
)

var rootCmd = &cobra.Command{
	Use:   "gerard",
	Short: "Gerard provisions the environment for the GÉRARD multi-agent orchestrator",
	Long: `gerard bootstraps the execution environment the GÉRARD multi-agent
orchestrator runs in. Invoked with no arguments it executes the full
ten-step provisioning pipeline:

  preflight → system packages → runtime sandbox → installer upgrade →
  dependencies → directory layout → script permissions → state store →
  config file → verification

Every step is idempotent: a failed run is recovered by simply running
gerard again. The pipeline is fail-fast — the first fatal error aborts
the remaining steps and the process exits non-zero.

Common workflows:

  Provision the host (Termux):
    gerard

  Image-build bootstrap (directories and schema only):
    gerard --bootstrap-only

  Container health probe:
    gerard healthcheck

  Build and run the container image:
    gerard deploy --entry demo

Configuration:
  GERARD_ROOT             Project root (default: current directory)
  GERARD_TERMUX_PREFIX    Runtime marker path checked by preflight
  GERARD_PYTHON           Host interpreter used to build the sandbox`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProvision(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("root", "", "project root (default is the current directory)")
	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))

	rootCmd.Flags().Bool("bootstrap-only", false, "run only the directory and state store steps (used at image build time)")
	rootCmd.Flags().Bool("skip-preflight", false, "skip the runtime environment check")

	viper.SetEnvPrefix("GERARD")
	viper.AutomaticEnv()
}

func loadSettings() (*config.Settings, error) {
	// viper resolves the --root flag over the GERARD_ROOT env binding.
	return config.Load(viper.GetString("root"))
}

func newLogger(cfg *config.Settings) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return logger.NewConsole(level)
}

func runProvision(cmd *cobra.Command) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	runID := uuid.New().String()
	ctx := logger.WithRunID(cmd.Context(), runID)
	log = logger.FromContext(ctx, log)

	bootstrapOnly, _ := cmd.Flags().GetBool("bootstrap-only")
	skipPreflight, _ := cmd.Flags().GetBool("skip-preflight")

	var steps []pipeline.Step
	if bootstrapOnly {
		steps = provision.BootstrapSteps(cfg, log)
	} else {
		steps = provision.Steps(cfg, provision.NewExecCommander(cfg.Root), log)
		if skipPreflight {
			steps = steps[1:]
		}
	}

	log.Info("starting provisioning run", "steps", len(steps), "root", cfg.Root)
	started := time.Now()

	results, runErr := pipeline.NewRunner(log, steps).Run(ctx)

	if runErr != nil {
		printFailure(cmd, runErr)
		return runErr
	}

	if !bootstrapOnly {
		writeReport(cfg, log, runID, started, results)
		printSuccess(cmd, cfg)
	}
	return nil
}

// writeReport persists the run summary under data/reports. A report
// write failure is only a warning: the provisioning itself succeeded.
func writeReport(cfg *config.Settings, log *slog.Logger, runID string, started time.Time, results []pipeline.StepResult) {
	r := &report.RunReport{
		RunID:       runID,
		StartedAt:   started,
		CompletedAt: time.Now(),
		Success:     true,
	}
	for _, res := range results {
		r.Steps = append(r.Steps, report.StepOutcome{
			Name:       res.Name,
			Status:     string(res.Status),
			DurationMs: res.Duration.Milliseconds(),
			Error:      res.Error,
		})
	}

	dir := filepath.Join(cfg.Root, "data", "reports")
	path, err := r.Write(dir)
	if err != nil {
		log.Warn("could not write run report", "error", err)
		return
	}
	log.Info("run report written", "path", path)
}

func printFailure(cmd *cobra.Command, err error) {
	cmd.PrintErrln()
	if errors.Is(err, pipeline.ErrVerificationFailure) {
		cmd.PrintErrf("%s✗ Verification failed%s\n", colorRed+colorBold, colorReset)
		cmd.PrintErrln("  All provisioning steps completed, but the final acceptance check did not pass.")
	} else {
		cmd.PrintErrf("%s✗ Provisioning failed%s\n", colorRed+colorBold, colorReset)
	}
	cmd.PrintErrf("  %v\n", err)
	cmd.PrintErrln()
	cmd.PrintErrln("Every step is idempotent — fix the cause and re-run gerard.")
}

func printSuccess(cmd *cobra.Command, cfg *config.Settings) {
	cmd.Println()
	cmd.Printf("%s✓ Environment ready%s\n", colorGreen+colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Println("Next steps:")
	cmd.Printf("  1. Edit the placeholder secrets in %s%s%s\n", colorCyan, cfg.EnvFile, colorReset)
	cmd.Printf("  2. Run the demo: %spython quick_gerard.py%s\n", colorCyan, colorReset)
	cmd.Printf("  3. Deploy: %sgerard deploy%s\n", colorCyan, colorReset)
}

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)
