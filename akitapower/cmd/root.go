// Package cmd provides the command-line interface of akitapower.
package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/akitapower/config"
)

var (
	envFile string
	cfg     = config.Default()
	logger  = logrus.StandardLogger()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "akitapower",
	Short: "akitapower estimates the energy and the area of hardware primitives.",
	Long: `akitapower estimates the per-action energy and the area of ` +
		`hardware primitives, such as register files, arithmetic units, ` +
		`and SRAM arrays, with characterization tables and a memory ` +
		`compiler.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var (
			c   config.Config
			err error
		)

		if envFile != "" {
			c, err = config.Load(envFile)
		} else {
			c, err = config.Load()
		}

		if err != nil {
			return err
		}

		cfg = c
		cfg.Apply(logger)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "",
		"The .env file to load. Defaults to .env in the working directory.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
