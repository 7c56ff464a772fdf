package layout

import (
	"fmt"
	"strconv"

	"github.com/ByLCY/linefold/dsl"
)

const cellPadding = 1.2

var tableBorderColor = Color{R: 200, G: 200, B: 200}

// handleTable 布局 `table { header { cell {..} } row { cell {..} } }`，列宽平均分配。
// 表格整体放不下当前页时换页后重排一次。
func handleTable(cmd *dsl.Command, ctx *flowContext) error {
	if cmd.Block == nil {
		return fmt.Errorf("%s: table 语句缺少内容", cmd.Pos)
	}
	_, attrs := commandAttrs(cmd, false, ctx.env.res.Styles)

	width := ctx.width
	if w := parseDimension(attrs["width"], ctx.width); w > 0 {
		width = w
	}
	gap := attrs["row-gap"]
	if gap == "" {
		gap = attrs["rowGap"]
	}
	rowGap := max(parseLength(gap), 0)
	columns := 0
	if c, err := strconv.Atoi(attrs["columns"]); err == nil && c > 0 {
		columns = c
	}
	if columns == 0 {
		for _, stmt := range cmd.Block.Statements {
			if c := stmt.Command; c != nil && (c.Name == "header" || c.Name == "row") {
				columns = max(columns, len(c.Block.Commands("cell")))
			}
		}
	}
	if columns == 0 {
		return fmt.Errorf("%s: table 需要至少一个单元格", cmd.Pos)
	}

	build := func(top float64) (TableBox, float64, error) {
		table := TableBox{X: ctx.baseX, Y: top, Width: width, RowGap: rowGap, BorderColor: tableBorderColor}
		colWidth := width / float64(columns)
		table.ColumnWidths = make([]float64, columns)
		for i := range table.ColumnWidths {
			table.ColumnWidths[i] = colWidth
		}
		y := top
		for _, stmt := range cmd.Block.Statements {
			c := stmt.Command
			if c == nil || (c.Name != "header" && c.Name != "row") {
				continue
			}
			row, err := buildTableRow(c, ctx, colWidth, table.X, y, c.Name == "header")
			if err != nil {
				return TableBox{}, 0, err
			}
			table.Rows = append(table.Rows, row)
			y += row.Height + rowGap
		}
		if len(table.Rows) > 0 {
			y -= rowGap
		}
		return table, y - top, nil
	}

	table, height, err := build(ctx.cursorY)
	if err != nil {
		return err
	}
	if ctx.allowPageBreak && ctx.cursorY > ctx.margin.Top && ctx.cursorY+height > ctx.collector.contentBottom() {
		ctx.pageBreak()
		if table, height, err = build(ctx.cursorY); err != nil {
			return err
		}
	}
	ctx.acc().tables = append(ctx.acc().tables, table)
	ctx.cursorY += height + blockSpacing
	return nil
}

func buildTableRow(cmd *dsl.Command, ctx *flowContext, colWidth, x, y float64, header bool) (TableRow, error) {
	row := TableRow{Y: y, IsHeader: header}
	cells := cmd.Block.Commands("cell")
	if len(cells) == 0 {
		return row, fmt.Errorf("%s: row/header 中至少需要一个 cell", cmd.Pos)
	}
	inner := colWidth - 2*cellPadding
	if inner <= 0 {
		inner = colWidth
	}
	tallest := 0.0
	for i, cell := range cells {
		style, attrs := commandAttrs(cell, true, ctx.env.res.Styles)
		wrap := ctx.textWrap
		if v := attrs["wrap"]; v != "" {
			wrap = normalizeWrap(v)
		}
		cx := x + float64(i)*colWidth + cellPadding
		tb, h, err := ctx.env.composeTextBox(style, attrs, textSource{block: cell.Block}, cx, y+cellPadding, inner, wrap)
		if err != nil {
			return row, fmt.Errorf("%s: cell: %w", cell.Pos, err)
		}
		row.Cells = append(row.Cells, TableCell{Text: tb})
		tallest = max(tallest, h)
	}
	row.Height = tallest + 2*cellPadding
	return row, nil
}
