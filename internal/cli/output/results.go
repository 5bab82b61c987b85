package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlpad/internal/engine"
	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
)

// RenderResult writes one execution result. In table mode an error result
// goes to the error writer.
func (r *Renderer) RenderResult(res sqlexec.Result) error {
	switch r.mode {
	case ModeJSON:
		return r.encodeJSON(res)
	case ModeYAML:
		return r.encodeYAML(res)
	}

	switch res := res.(type) {
	case sqlexec.QueryResult:
		r.Println(r.styles.Success.Render(res.Message))
		renderRows(r.w, nil, res.Data)
	case sqlexec.DualQueryResult:
		r.Println(r.styles.Success.Render(res.Message))
		r.Println(r.styles.Muted.Render(fmt.Sprintf("(%d rows affected)", res.AffectedRows)))
		r.renderSnapshot("Before", res.PreviousData)
		r.renderSnapshot("After", res.UpdatedData)
	case sqlexec.ErrorResult:
		r.Errorf("%s", res.Message)
	default:
		return fmt.Errorf("unknown result type %T", res)
	}
	return nil
}

// RenderSchema writes a schema summary with tables in name order.
func (r *Renderer) RenderSchema(s sqlexec.SchemaSummary) error {
	switch r.mode {
	case ModeJSON:
		return r.encodeJSON(s)
	case ModeYAML:
		return r.encodeYAML(s)
	}

	if len(s) == 0 {
		r.Println(r.styles.Muted.Render("(no tables)"))
		return nil
	}

	for i, name := range s.Tables() {
		if i > 0 {
			r.Println()
		}
		r.RenderTable(name, s[name])
	}
	return nil
}

// RenderTable writes the columns of one table as a table.
func (r *Renderer) RenderTable(name string, t sqlexec.TableSummary) {
	r.Printf("%s %s\n", r.styles.Header.Render(name), r.styles.Muted.Render(fmt.Sprintf("(%d rows)", t.Rows)))

	tw := table.NewWriter()
	tw.SetOutputMirror(r.w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Column", "Type", "PK"})
	for _, col := range t.Columns {
		pk := ""
		if col.PrimaryKey {
			pk = "yes"
		}
		tw.AppendRow(table.Row{col.Name, col.Type, pk})
	}
	tw.Render()
}

func (r *Renderer) renderSnapshot(title string, snap sqlexec.TableSnapshot) {
	if len(snap.Columns) == 0 && len(snap.Rows) == 0 {
		return
	}
	r.Println()
	r.Println(r.styles.Header.Render(title + ":"))

	header := make([]string, len(snap.Columns))
	for i, col := range snap.Columns {
		header[i] = col.Name
	}
	renderRows(r.w, header, snap.Rows)
}

// renderRows writes rows as a table. The header comes from the first row
// when present, so the caller's header is only used for an empty result.
func renderRows(w io.Writer, header []string, rows []engine.Row) {
	if len(rows) > 0 {
		header = rows[0].Columns
	}
	if len(rows) == 0 && len(header) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, col := range header {
		headerRow[i] = col
	}
	tw.AppendHeader(headerRow)

	for _, row := range rows {
		out := make(table.Row, len(row.Values))
		for i, v := range row.Values {
			out[i] = formatValue(v)
		}
		tw.AppendRow(out)
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func (r *Renderer) encodeJSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// encodeYAML goes through JSON so custom marshalers apply and row keys keep
// their column order.
func (r *Renderer) encodeYAML(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("failed to convert result to YAML: %w", err)
	}
	clearStyle(&node)

	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// clearStyle drops the flow and quoting styles inherited from JSON.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
