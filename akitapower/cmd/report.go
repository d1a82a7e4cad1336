package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/akitapower/recording"
)

var reportCmd = &cobra.Command{
	Use:   "report [recording.sqlite3]",
	Short: "Summarize a recording.",
	Long: "`report` reads a recording created with --record and prints " +
		"the number of estimates and their total value, grouped by " +
		"estimator, quantity, and class.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := recording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		estimates, err := reader.Estimates(cmd.Context())
		if err != nil {
			return err
		}

		return printReport(summarize(estimates), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

type reportKey struct {
	Estimator string
	Quantity  string
	Class     string
}

type reportLine struct {
	reportKey
	Count int
	Total float64
}

func summarize(estimates []recording.EstimateEntry) []reportLine {
	index := make(map[reportKey]int)

	var lines []reportLine

	for _, e := range estimates {
		key := reportKey{e.Estimator, e.Quantity, e.Class}

		i, ok := index[key]
		if !ok {
			i = len(lines)
			index[key] = i
			lines = append(lines, reportLine{reportKey: key})
		}

		lines[i].Count++
		lines[i].Total += e.Value
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Estimator != b.Estimator {
			return a.Estimator < b.Estimator
		}

		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}

		return a.Class < b.Class
	})

	return lines
}

func printReport(lines []reportLine, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "estimator\tquantity\tclass\tcount\ttotal")

	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\n",
			l.Estimator, l.Quantity, l.Class, l.Count, l.Total)
	}

	return w.Flush()
}
