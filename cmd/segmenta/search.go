package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/segmenta"
	"github.com/hupe1980/segmenta/model"
	"github.com/hupe1980/segmenta/rank"
)

var (
	searchTopK     int
	searchCategory string
	searchExclude  []string
)

var searchCmd = &cobra.Command{
	Use:   "search <description>",
	Short: "Rank catalog variables against a free-text audience description",
	Args:  cobra.MinimumNArgs(1),
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

		var searchOpts []func(*rank.SearchOptions)
		if searchCategory != "" {
			cat, err := model.ParseCategory(searchCategory)
			if err != nil {
				return err
			}
			searchOpts = append(searchOpts, rank.WithCategoryFilter(cat))
		}
		if len(searchExclude) > 0 {
			searchOpts = append(searchOpts, rank.WithExcludeCodes(searchExclude...))
		}

		query := strings.Join(args, " ")
		results, err := eng.Search(ctx, query, searchTopK, searchOpts...)
		if err != nil {
			return err
		}

		for i, c := range results {
			boost := ""
			if c.Boosted {
				boost = " (boosted)"
			}
			fmt.Printf("%2d. %-24s %-14s %.4f%s\n",
				i+1, c.Descriptor.Code, c.Descriptor.Category, c.Score, boost)
			fmt.Printf("    %s\n", c.Descriptor.Description)
		}

		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top", "k", 20, "Number of results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Restrict results to one category")
	searchCmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "Variable codes to exclude")
}
