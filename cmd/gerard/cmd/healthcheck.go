package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TipTopTap/super-doodle/internal/health"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe the state store health",
	Long: `healthcheck is the container health probe: it succeeds only when the
state store file exists, opens, and accepts a trivial read against the
bootstrap schema.

The image HEALTHCHECK invokes it on a fixed schedule (interval 30s,
timeout 10s, start period 30s, 3 retries); three consecutive failures
mark the container unhealthy. It works equally on the host:

  gerard healthcheck`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		if err := health.Check(cmd.Context(), cfg.DBPath); err != nil {
			cmd.PrintErrf("%s✗ unhealthy:%s %v\n", colorRed, colorReset, err)
			return err
		}
		cmd.Printf("%s✓ healthy%s %s\n", colorGreen, colorReset, cfg.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
