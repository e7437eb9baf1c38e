package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/gogpu/rvt"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rvtsim",
		Short: "Simulate runtime virtual texture page management.",
		Long: `rvtsim drives the virtual texture frame loop against a synthetic ` +
			`scene: feedback readback, request analysis, LRU residency and ` +
			`page-table updates, without a GPU.`,
		Version:       rvt.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if env, _ := cmd.Flags().GetString("env"); env != "" {
				if err := godotenv.Load(env); err != nil {
					return fmt.Errorf("load %s: %w", env, err)
				}
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				rvt.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			return nil
		},
	}
	root.PersistentFlags().String("env", "", "load RVT_* defaults from a .env file")
	root.PersistentFlags().BoolP("verbose", "v", false, "log per-frame diagnostics to stderr")

	root.AddCommand(newRunCmd(), newShadersCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags
// appropriately. On failure it exits through atexit, so open trace writers
// are flushed.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}
}

// envInt returns the integer in the environment variable key, or def if it
// is unset.
func envInt(key string, def int) (int, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
