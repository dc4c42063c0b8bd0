package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/ps2sim/datarecording"
	"github.com/sarchlab/ps2sim/tracing"
	"github.com/spf13/cobra"
)

type traceOptions struct {
	page    datarecording.Page
	asJSON  bool
	rawName bool
}

func newTraceCmd() *cobra.Command {
	opts := traceOptions{}

	cmd := &cobra.Command{
		Use:   "trace DB [KIND]",
		Short: "Inspect a trace database written by run --trace-db.",
		Long: "`trace out` lists the tables in out.sqlite3 with their row " +
			"counts. `trace out syscall --limit 20 --offset 40` prints the " +
			"third page of syscall records.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := datarecording.OpenReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			if len(args) == 1 {
				return listTables(cmd, r)
			}

			table := args[1]
			if !opts.rawName {
				table = tracing.TableName(table)
			}

			return printTable(cmd, r, table, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.page.Limit, "limit", 50, "rows per page, 0 prints all")
	f.IntVar(&opts.page.Offset, "offset", 0, "rows to skip")
	f.StringVar(&opts.page.Filter, "where", "", "SQL condition on the columns")
	f.StringVar(&opts.page.Order, "order", "", "SQL ordering, e.g. \"Cycle DESC\"")
	f.BoolVar(&opts.asJSON, "json", false, "print the page as JSON")
	f.BoolVar(&opts.rawName, "table", false,
		"treat the second argument as a table name, not a record kind")

	return cmd
}

func listTables(cmd *cobra.Command, r *datarecording.Reader) error {
	tables, err := r.Tables(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")

	for _, t := range tables {
		page, err := r.Read(cmd.Context(), t, datarecording.Page{Limit: 1})
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%d\n", t, page.Total)
	}

	return w.Flush()
}

func printTable(
	cmd *cobra.Command,
	r *datarecording.Reader,
	table string,
	opts traceOptions,
) error {
	page, err := r.Read(cmd.Context(), table, opts.page)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(page)
	}

	return writeRows(cmd.OutOrStdout(), page, opts.page.Offset)
}

func writeRows(out io.Writer, page datarecording.Rows, offset int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for i, c := range page.Columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}

		fmt.Fprint(w, c)
	}

	fmt.Fprintln(w)

	for _, row := range page.Values {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}

			fmt.Fprint(w, v)
		}

		fmt.Fprintln(w)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "rows %d-%d of %d\n",
		min(offset+1, page.Total), offset+len(page.Values), page.Total)

	return err
}
