package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MJE43/powerball-superposition/internal/analysis"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		special int
		top     int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <number>...",
		Short: "Score a set against historical draws",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			main, err := parseInts(args)
			if err != nil {
				return err
			}
			analyzer, err := a.newAnalyzer()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top") {
				top = a.cfg.Analysis.Top
			}

			report, err := analyzer.Analyze(main, special, top)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report)
			}
			printMatches(out, report.Matches)
			s := report.Summary
			fmt.Fprintf(out, "analyzed %d draws: average %.2f, best %.2f (%s)\n",
				s.TotalAnalyzed, s.AverageSimilarity, s.MaxSimilarity, s.TopGrade)
			fmt.Fprintf(out, "sum %d, average %.2f, zones %d/%d/%d\n",
				s.Profile.Sum, s.Profile.Average, s.Profile.Zones.Low, s.Profile.Zones.Mid, s.Profile.Zones.High)
			return nil
		},
	}
	cmd.Flags().IntVarP(&special, "special", "s", 0, "Special (Powerball) number")
	cmd.Flags().IntVar(&top, "top", 0, "Number of matches to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func newCompareCommand() *cobra.Command {
	var (
		left, right []int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "compare --left 1,2,3 --right 4,5,6",
		Short: "Compare two number sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(left) == 0 || len(right) == 0 {
				return fmt.Errorf("both --left and --right are required")
			}
			cmp := analysis.CompareSets(left, right)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, cmp)
			}
			t := newTable(out, "Component", "Value")
			t.Append([]string{"Exact matches", fmt.Sprintf("%d (%s)", cmp.Exact.Count, joinInts(cmp.Exact.Numbers))})
			t.Append([]string{"Pattern similarity", strconv.FormatFloat(cmp.Patterns.Similarity, 'f', 2, 64)})
			t.Append([]string{"Distance", strconv.FormatFloat(cmp.Distance.Normalized, 'f', 2, 64)})
			t.Append([]string{"Resonance", strconv.FormatFloat(cmp.Resonance.Overall, 'f', 2, 64)})
			t.Append([]string{"Coherence", strconv.FormatFloat(cmp.Coherence.Score, 'f', 2, 64)})
			t.Append([]string{"Overall", strconv.FormatFloat(cmp.Score, 'f', 2, 64)})
			t.Render()
			for _, line := range cmp.Insights {
				fmt.Fprintln(out, "- "+line)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&left, "left", nil, "First set")
	cmd.Flags().IntSliceVar(&right, "right", nil, "Second set")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the comparison as JSON")
	return cmd
}

func newDrawsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "draws",
		Short: "List the historical draws used for analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, err := a.newAnalyzer()
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "Date", "Numbers", "PB", "Jackpot")
			for _, d := range analyzer.Draws() {
				t.Append([]string{d.Date, joinInts(d.Numbers), strconv.Itoa(d.Powerball), d.Jackpot.StringFixed(0)})
			}
			t.Render()
			return nil
		},
	}
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out = append(out, n)
	}
	return out, nil
}
