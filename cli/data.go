package cli

import (
	"strconv"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/ncruces/go-strftime"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newDataCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "data <table-id>",
		Short: "Show a table with all of its entries",
		Long: heredoc.Doc(`
			Fetch a table together with its fields and entries. Cells are shown
			according to their field kind: enumeration labels, progress as
			done/total and dates in the field's display format.

			Examples:
			  chronicle data 1
			  chronicle data 1 --format json`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runData(cmd, s, args[0])
		},
	}
}

func runData(cmd *cobra.Command, s *session, arg string) error {
	tableID, err := parseID(arg, "table id")
	if err != nil {
		return err
	}

	data, err := s.client.GetDataTable(cmd.Context(), tableID)
	if err != nil {
		return err
	}

	header := make([]string, 0, len(data.Fields)+1)
	header = append(header, "ID")
	for _, f := range data.Fields {
		header = append(header, f.Name)
	}

	rows := make([][]string, 0, len(data.Entries))
	for _, e := range data.Entries {
		row := make([]string, 0, len(header))
		row = append(row, formatID(e.EntryID))
		for _, f := range data.Fields {
			row = append(row, formatCell(f.FieldKind, e.Cells[f.FieldID]))
		}
		rows = append(rows, row)
	}

	if err := s.printer.done("%s (table %d)", data.Table.Name, data.Table.TableID); err != nil {
		return err
	}
	return s.printer.render(data, header, rows)
}

// formatCell renders a cell for display according to the kind of its field.
func formatCell(kind types.FieldKind, cell types.Cell) string {
	switch cell.(type) {
	case nil, types.NullCell:
		return ""
	}

	switch k := kind.(type) {
	case types.EnumerationKind:
		if n, ok := cell.(types.NumberCell); ok {
			if label, ok := k.Values[int64(n)]; ok {
				return label
			}
		}
	case types.ProgressKind:
		if n, ok := cell.(types.NumberCell); ok {
			return strconv.FormatInt(int64(n), 10) + "/" + strconv.FormatInt(k.TotalSteps, 10)
		}
	case types.MoneyKind:
		if n, ok := cell.(types.NumberCell); ok {
			return decimal.NewFromFloat(float64(n)).StringFixed(2)
		}
	case types.DecimalKind:
		if n, ok := cell.(types.NumberCell); ok {
			if k.ScientificNotation {
				return strconv.FormatFloat(float64(n), 'e', -1, 64)
			}
			if k.NumberScale != nil {
				return decimal.NewFromFloat(float64(n)).StringFixed(int32(*k.NumberScale))
			}
		}
	case types.DateTimeKind:
		switch c := cell.(type) {
		case types.DateTimeCell:
			return formatDate(k, c.Time())
		case types.StringCell:
			if t, err := types.ParseDateTime(string(c)); err == nil {
				return formatDate(k, t)
			}
		}
	}

	switch c := cell.(type) {
	case types.StringCell:
		return string(c)
	case types.NumberCell:
		return strconv.FormatFloat(float64(c), 'f', -1, 64)
	case types.BoolCell:
		return strconv.FormatBool(bool(c))
	case types.DateTimeCell:
		return types.FormatDateTime(c.Time())
	}
	return ""
}

// formatDate uses the field's strftime format when it has one.
func formatDate(k types.DateTimeKind, t time.Time) string {
	if k.DateTimeFormat == "" {
		return types.FormatDateTime(t)
	}
	return strftime.Format(k.DateTimeFormat, t)
}
