package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/segmenta"
	"github.com/hupe1980/segmenta/cluster"
	"github.com/hupe1980/segmenta/codec"
	"github.com/hupe1980/segmenta/model"
)

var (
	partitionMatrix string
	partitionOut    string
	partitionK      int
	partitionSeed   int64
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Split a record matrix into size-bounded segments",
	Long: `partition reads a columnar record matrix from a JSON file, runs the
capacity-constrained partitioner and writes the result as JSON.

The size band comes from the configuration file (partition.min_frac /
partition.max_frac); unset values fall back to the defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := cmd.Context()

		cfg, err := LoadConfig(configFile)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(partitionMatrix)
		if err != nil {
			return fmt.Errorf("read matrix: %w", err)
		}

		var m model.Matrix
		if err := codec.Default.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parse matrix: %w", err)
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

		res, err := eng.Partition(ctx, &m, cluster.Params{
			K:       partitionK,
			MinFrac: cfg.Partition.MinFrac,
			MaxFrac: cfg.Partition.MaxFrac,
			Seed:    partitionSeed,
		})
		if err != nil {
			return err
		}

		out, err := codec.Default.Marshal(res)
		if err != nil {
			return err
		}

		if partitionOut == "" || partitionOut == "-" {
			fmt.Println(string(out))
			return nil
		}
		return os.WriteFile(partitionOut, out, 0o644)
	},
}

func init() {
	partitionCmd.Flags().StringVarP(&partitionMatrix, "matrix", "m", "", "Path to the record matrix JSON file")
	partitionCmd.Flags().StringVarP(&partitionOut, "out", "o", "-", "Output path (- for stdout)")
	partitionCmd.Flags().IntVarP(&partitionK, "segments", "k", 10, "Number of segments")
	partitionCmd.Flags().Int64Var(&partitionSeed, "seed", 0, "Deterministic seed")
	_ = partitionCmd.MarkFlagRequired("matrix")
}
