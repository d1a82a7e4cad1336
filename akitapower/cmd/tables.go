package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/akitapower/latencytable"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the reference tables.",
	Long: "`tables` prints the characterization tables, including the " +
		"files of AKITAPOWER_TABLE_DIR that replace the embedded ones.",
	RunE: func(cmd *cobra.Command, args []string) error {
		set := latencytable.Embedded()

		if cfg.TableDir != "" {
			var err error

			set, err = latencytable.LoadDir(cfg.TableDir)
			if err != nil {
				return err
			}
		}

		return printTables(set, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

// printTables prints the tables whose names are given, or all the tables.
func printTables(set *latencytable.Set, names []string, out io.Writer) error {
	ids := latencytable.IDs()

	if len(names) > 0 {
		ids = ids[:0:0]

		for _, name := range names {
			id, ok := findTable(name)
			if !ok {
				return fmt.Errorf("unknown table %s", name)
			}

			ids = append(ids, id)
		}
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "%s (%s)\n", id, id.FileName())

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "latency(ns)\tidle(pJ)\tdynamic(pJ)\tarea(um^2)")

		for _, row := range set.Table(id).Rows {
			fmt.Fprintf(w, "%d\t%g\t%g\t%g\n",
				row.Latency, row.IdleEnergy, row.DynamicEnergy, row.Area)
		}

		if err := w.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func findTable(name string) (latencytable.ID, bool) {
	for _, id := range latencytable.IDs() {
		if id.String() == name || id.FileName() == name {
			return id, true
		}
	}

	return 0, false
}
