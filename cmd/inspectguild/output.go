package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

type printer struct {
	w      io.Writer
	asJSON bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, asJSON: asJSON}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) render(headers table.Row, rows []table.Row) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(p.w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(headers)
	tw.AppendRows(rows)
	tw.Render()
	return nil
}

func (p *printer) inspectors(is []*inspector.Inspector) error {
	if p.asJSON {
		return p.json(is)
	}
	rows := make([]table.Row, 0, len(is))
	for _, i := range is {
		rows = append(rows, table.Row{i.ID, i.Name, i.Email, i.Timezone})
	}
	return p.render(table.Row{"ID", "NAME", "EMAIL", "TIMEZONE"}, rows)
}

func (p *printer) tasks(ts []*task.Task) error {
	if p.asJSON {
		return p.json(ts)
	}
	rows := make([]table.Row, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, table.Row{t.ID, t.Title, formatTime(t.Deadline), t.Location, text.Trim(t.Description, 40)})
	}
	return p.render(table.Row{"ID", "TITLE", "DEADLINE", "LOCATION", "DESCRIPTION"}, rows)
}

func (p *printer) assignments(as []*assignment.Assignment) error {
	if p.asJSON {
		return p.json(as)
	}
	rows := make([]table.Row, 0, len(as))
	for _, a := range as {
		rating, evaluated := "", ""
		if ev := a.Evaluation; ev != nil {
			rating = strconv.FormatFloat(ev.Rating, 'f', -1, 64)
			evaluated = formatTime(ev.EvaluatedAt)
		}
		rows = append(rows, table.Row{a.ID, a.InspectorID, a.TaskID, formatTime(a.ScheduledAt), statusColor(a.Status).Sprint(a.Status), rating, evaluated})
	}
	return p.render(table.Row{"ID", "INSPECTOR", "TASK", "SCHEDULED", "STATUS", "RATING", "EVALUATED"}, rows)
}

func (p *printer) deleted(kind, id string) error {
	if p.asJSON {
		return p.json(map[string]string{"deleted": kind, "id": id})
	}
	_, err := fmt.Fprintf(p.w, "%s %s deleted\n", kind, id)
	return err
}

func statusColor(s assignment.Status) *color.Color {
	switch s {
	case assignment.StatusCompleted:
		return color.New(color.FgGreen)
	case assignment.StatusInProgress:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgYellow)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	var ce *cerr.Error
	if !errors.As(err, &ce) {
		red.Fprintf(w, "error: %v\n", err)
		return
	}
	red.Fprintf(w, "%s: %s\n", ce.Code, ce.Msg)
	for _, d := range ce.DetailMessages() {
		fmt.Fprintf(w, "  - %s\n", d)
	}
}
