package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"employee-directory/directory/domain"
	"employee-directory/internal/app"
)

type searchFlags struct {
	org    string
	term   string
	status string
	page   int
	limit  int
	asJSON bool
}

// search roda a engine direto no store, sem passar pelo admission gate.
func newSearchCmd(o *rootOptions) *cobra.Command {
	sf := &searchFlags{}
	c := &cobra.Command{
		Use:   "search",
		Short: "Search employees of one organization from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.Engine.Search(cmd.Context(), domain.SearchRequest{
				OrgID:  sf.org,
				Search: sf.term,
				Status: sf.status,
				Page:   sf.page,
				Limit:  sf.limit,
			})
			if err != nil {
				return err
			}
			if sf.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			renderTable(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	f := c.Flags()
	f.StringVar(&sf.org, "org", "", "organization (tenant) id")
	f.StringVar(&sf.term, "search", "", "free-text term")
	f.StringVar(&sf.status, "status", "", "status filter")
	f.IntVar(&sf.page, "page", domain.DefaultPage, "page number (1-based)")
	f.IntVar(&sf.limit, "limit", domain.DefaultLimit, "page size (max 100)")
	f.BoolVar(&sf.asJSON, "json", false, "print JSON instead of a table")
	_ = c.MarkFlagRequired("org")
	return c
}

func renderTable(w io.Writer, rows []domain.Projection) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	if len(rows) == 0 {
		t.AppendHeader(table.Row{"result"})
		t.AppendRow(table.Row{"no employees found"})
		t.Render()
		return
	}

	fields := rows[0].Fields()
	header := make(table.Row, 0, len(fields))
	for _, f := range fields {
		header = append(header, string(f))
	}
	t.AppendHeader(header)

	for _, p := range rows {
		row := make(table.Row, 0, len(fields))
		for _, f := range fields {
			v, _ := p.Get(f)
			if v == nil {
				v = "-"
			}
			row = append(row, v)
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(rows))})
	t.Render()
}
