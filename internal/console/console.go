// Package console renders tables and status lines for the terminal.
package console

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// MissingMarker is shown in place of an absent tag value.
const MissingMarker = "Missing"

// Row is one line of a tag table.
type Row struct {
	Tag     string
	Value   string
	Missing bool
}

// RenderTagTable writes a two-column Tag/Value table titled with title.
func RenderTagTable(w io.Writer, title string, rows []Row) {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Title.Align = text.AlignCenter

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Tag", "Value"})
	for _, row := range rows {
		value := row.Value
		if row.Missing {
			value = text.FgRed.Sprint(MissingMarker)
		}
		t.AppendRow(table.Row{row.Tag, value})
	}
	t.Render()
}

// Warnf writes a red status line.
func Warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, text.FgRed.Sprintf(format, args...))
}

// Printf writes a plain status line.
func Printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
