package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/poiesic/jobtrail"
	"github.com/poiesic/jobtrail/core"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// renderStatus prints the workspace summary as tables.
func renderStatus(w io.Writer, st *jobtrail.Status) {
	stores := newTable(w, "Stores")
	stores.AppendHeader(table.Row{"Store", "Rows"})
	stores.AppendRows([]table.Row{
		{"raw", st.RawItems},
		{"classified", st.ClassifiedRows},
		{"labelled", st.Labelled},
		{"accepted", st.Accepted},
		{"index", st.IndexEntries},
	})
	stores.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	stores.Render()

	statuses := newTable(w, "Accepted by status")
	statuses.AppendHeader(table.Row{"Status", "Count"})
	for _, status := range core.Statuses {
		statuses.AppendRow(table.Row{status, st.ByStatus[status]})
	}
	statuses.AppendFooter(table.Row{"Total", st.Accepted})
	statuses.Render()

	checkpoints := newTable(w, "Checkpoints")
	checkpoints.AppendHeader(table.Row{"Stage", "Run", "Items", "Added", "Completed"})
	if len(st.Checkpoints) == 0 {
		checkpoints.AppendRow(table.Row{"-", "never run", "", "", ""})
	}
	for _, cp := range st.Checkpoints {
		checkpoints.AppendRow(table.Row{cp.Stage, cp.RunID, cp.Items, cp.Added, cp.CompletedAt.Local().Format(time.DateTime)})
	}
	checkpoints.Render()

	if len(st.Drift) == 0 {
		fmt.Fprintln(w, "Index is in sync with the classified store.")
		return
	}
	drift := newTable(w, fmt.Sprintf("Index drift (%d)", len(st.Drift)))
	drift.AppendHeader(table.Row{"Doc", "Message", "Reason"})
	for _, d := range st.Drift {
		drift.AppendRow(table.Row{d.DocID, d.SourceID, d.Reason})
	}
	drift.Render()
	fmt.Fprintln(w, "Drift is informational; indexed documents are never embedded again.")
}
