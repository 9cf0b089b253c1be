package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/segmenta"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Build the catalog from the configured sources and report diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := cmd.Context()

		cfg, err := LoadConfig(configFile)
		if err != nil {
			return err
		}

		ctrl := cfg.Controller()
		sources, err := cfg.Sources(ctx, ctrl)
		if err != nil {
			return err
		}

		eng, err := segmenta.New(ctx, sources, cfg.EngineOptions(newLogger(), ctrl)...)
		if err != nil {
			return err
		}
		defer eng.Close()

		info := eng.Info()
		fmt.Printf("Sources:      %d\n", info.Sources)
		fmt.Printf("Rows read:    %d\n", info.RowsRead)
		fmt.Printf("Replaced:     %d\n", info.Replaced)
		fmt.Printf("Descriptors:  %d\n", info.Descriptors)
		fmt.Printf("Version:      %d\n", eng.Catalog().Version())

		return nil
	},
}
