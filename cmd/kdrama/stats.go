package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kdrama-dashboard/internal/aggregate"
	"kdrama-dashboard/internal/cli"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Dashboard aggregates over the dataset",
	}

	statsCmd.AddCommand(&cobra.Command{
		Use:   "years",
		Short: "Series released per year",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ctx.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			cli.WriteYearCounts(cmd.OutOrStdout(), aggregate.SortedYearCounts(aggregate.CountsByYear(data)))
			return nil
		},
	})

	var genreLimit int
	genresCmd := &cobra.Command{
		Use:   "genres",
		Short: "Most frequent genre tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ctx.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			cli.WriteTagCounts(cmd.OutOrStdout(), "Genre", aggregate.TopGenres(data, genreLimit))
			return nil
		},
	}
	genresCmd.Flags().IntVarP(&genreLimit, "top", "k", 10, "Number of genres to show (0 for all)")
	statsCmd.AddCommand(genresCmd)

	var wordLimit int
	wordsCmd := &cobra.Command{
		Use:   "words",
		Short: "Most frequent title words",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ctx.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			cli.WriteTagCounts(cmd.OutOrStdout(), "Word", aggregate.TopTitleWords(data, wordLimit))
			return nil
		},
	}
	wordsCmd.Flags().IntVarP(&wordLimit, "top", "k", 50, "Number of words to show (0 for all)")
	statsCmd.AddCommand(wordsCmd)

	return statsCmd
}

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List series released in a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ctx.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if year == 0 {
				fmt.Fprintf(out, "Available years: %v\n", data.DistinctYears())
				return fmt.Errorf("--year is required")
			}
			cli.WriteRecords(out, data.FilterByYear(year))
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year")
	return cmd
}
