package cli

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/MJE43/powerball-superposition/internal/analysis"
	"github.com/MJE43/powerball-superposition/internal/engine"
	"github.com/MJE43/powerball-superposition/internal/store"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res engine.Result) {
	t := newTable(w, "Main", "Special", "Source", "Quality", "Attempts", "Fallback")
	t.Append([]string{
		joinInts(res.Numbers.Main),
		strconv.Itoa(res.Numbers.Special),
		string(res.Quality.Source),
		strconv.FormatFloat(res.Quality.Score, 'f', 1, 64),
		strconv.Itoa(res.Stats.Attempts),
		strconv.FormatBool(res.Stats.UsedFallback),
	})
	t.Render()
}

func printMatches(w io.Writer, matches []analysis.Match) {
	t := newTable(w, "Date", "Numbers", "PB", "Score", "Grade", "Direct", "Jackpot")
	for _, m := range matches {
		t.Append([]string{
			m.Draw.Date,
			joinInts(m.Draw.Numbers),
			strconv.Itoa(m.Draw.Powerball),
			strconv.FormatFloat(m.Similarity.OverallScore, 'f', 2, 64),
			m.Grade,
			strconv.Itoa(m.Similarity.DirectMatches),
			m.Draw.Jackpot.StringFixed(0),
		})
	}
	t.Render()
}

func printCombinations(w io.Writer, list []store.Combination) {
	t := newTable(w, "ID", "Main", "PB", "Entropy", "Saved")
	for _, c := range list {
		t.Append([]string{
			c.ID,
			joinInts(c.Main),
			strconv.Itoa(c.Powerball),
			c.Entropy,
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t.Render()
}
