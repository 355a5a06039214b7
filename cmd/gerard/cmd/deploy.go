package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TipTopTap/super-doodle/internal/deploy"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Build the container image and run it",
	Long: `deploy builds the GÉRARD image from the repository Dockerfile and
starts a container from it. The image performs the same idempotent
directory and schema bootstrap as the host pipeline, baked into its
layers, and runs as a non-root user.

Exactly one of three entry points is active per container:

  demo          interactive demo process (default, port 8080)
  api           HTTP API process (port 8000)
  orchestrator  headless orchestrator process (port 9090)

By default deploy waits for the container's health probe to report
healthy before returning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		entry, err := deploy.ParseEntryPoint(viper.GetString("entry"))
		if err != nil {
			return err
		}
		tag := viper.GetString("tag")
		name := viper.GetString("name")

		d, err := deploy.New(log)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		log.Info("building image", "tag", tag, "context", cfg.Root)
		if err := d.BuildImage(ctx, cfg.Root, tag); err != nil {
			return err
		}

		id, err := d.StartContainer(ctx, tag, name, entry)
		if err != nil {
			return err
		}

		if viper.GetBool("no-wait") {
			cmd.Printf("%s✓ container started%s %s\n", colorGreen, colorReset, id[:12])
			return nil
		}

		log.Info("waiting for container health", "container", id[:12])
		if err := d.WaitHealthy(ctx, id, 3*time.Minute); err != nil {
			return err
		}
		cmd.Printf("%s✓ container healthy%s %s (entry: %s)\n", colorGreen, colorReset, id[:12], entry)
		return nil
	},
}

func init() {
	deployCmd.Flags().String("tag", "gerard:latest", "image tag to build")
	viper.BindPFlag("tag", deployCmd.Flags().Lookup("tag"))

	deployCmd.Flags().String("entry", string(deploy.EntryDemo), "container entry point: demo, api, or orchestrator")
	viper.BindPFlag("entry", deployCmd.Flags().Lookup("entry"))

	deployCmd.Flags().String("name", "gerard", "container name")
	viper.BindPFlag("name", deployCmd.Flags().Lookup("name"))

	deployCmd.Flags().Bool("no-wait", false, "do not wait for the health probe")
	viper.BindPFlag("no-wait", deployCmd.Flags().Lookup("no-wait"))

	rootCmd.AddCommand(deployCmd)
}
