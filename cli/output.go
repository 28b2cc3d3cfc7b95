package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// printer renders command results either as a table for people or as JSON
// for scripts.
type printer struct {
	out    io.Writer
	format string
}

func newPrinter(out io.Writer, format string) *printer {
	return &printer{out: out, format: format}
}

// resolveFormat picks the output format. Without an explicit choice a
// terminal gets a table and anything else gets JSON.
func resolveFormat(format string, out io.Writer) (string, error) {
	switch format {
	case "":
		if isTerminal(out) {
			return FormatTable, nil
		}
		return FormatJSON, nil
	case FormatTable, FormatJSON:
		return format, nil
	}
	return "", errors.Newf(ErrInvalidFormat, "invalid output format %q (use table or json)", format).
		AddContext("format", format)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// render prints v as JSON, or header and rows as a table.
func (p *printer) render(v any, header []string, rows [][]string) error {
	if p.format == FormatJSON {
		return p.json(v)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.out, "No results")
		return err
	}

	data := pterm.TableData{header}
	data = append(data, rows...)

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(ErrOutputFailed, err, "failed to render table")
	}
	if !isTerminal(p.out) {
		table = pterm.RemoveColorFromString(table)
	}

	_, err = fmt.Fprintln(p.out, table)
	return err
}

// record prints a single object as a two column table, or as JSON.
func (p *printer) record(v any, pairs [][2]string) error {
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair[0], pair[1]})
	}
	return p.render(v, []string{"Property", "Value"}, rows)
}

// done reports the outcome of a command that returns nothing. JSON output
// stays silent so that scripts only ever see data on stdout.
func (p *printer) done(format string, args ...any) error {
	if p.format == FormatJSON {
		return nil
	}
	_, err := fmt.Fprintf(p.out, format+"\n", args...)
	return err
}

func (p *printer) json(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(ErrOutputFailed, err, "failed to encode output")
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}
