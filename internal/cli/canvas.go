package cli

import (
	"strings"

	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// linesPerRow is the number of terminal lines one grid row occupies.
const linesPerRow = 3

// maxDrawRows bounds the canvas height. Rectangles below it are cut off.
const maxDrawRows = 256

// pxPerColumn converts terminal columns to the pixel widths breakpoints use.
const pxPerColumn = 10

type boxStyle struct {
	tl, tr, bl, br, h, v rune
}

var (
	boxNormal   = boxStyle{'┌', '┐', '└', '┘', '─', '│'}
	boxSelected = boxStyle{'╔', '╗', '╚', '╝', '═', '║'}
)

// drawLayout renders l as a character grid of columns × rows cells, each
// cellW characters wide. The widget with id selected gets a double border.
// Empty cells show a dot in their middle.
func drawLayout(l grid.Layout, columns, rows, cellW int, selected string) string {
	cellW = max(cellW, 3)
	rows = min(max(rows, l.Rows(), 1), maxDrawRows)
	width := columns * cellW
	height := rows * linesPerRow

	c := make([][]rune, height)
	for y := range c {
		c[y] = []rune(strings.Repeat(" ", width))
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			c[row*linesPerRow+linesPerRow/2][col*cellW+cellW/2] = '·'
		}
	}

	for _, r := range l {
		box := boxNormal
		if r.WidgetID == selected {
			box = boxSelected
		}
		x0, x1 := r.X*cellW, min(r.Right()*cellW, width)-1
		y0, y1 := r.Y*linesPerRow, min(r.Bottom()*linesPerRow, height)-1
		if x0 >= width || x1 <= x0 || y0 >= height {
			continue
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				ch := ' '
				switch {
				case y == y0 && x == x0:
					ch = box.tl
				case y == y0 && x == x1:
					ch = box.tr
				case y == y1 && x == x0:
					ch = box.bl
				case y == y1 && x == x1:
					ch = box.br
				case y == y0 || y == y1:
					ch = box.h
				case x == x0 || x == x1:
					ch = box.v
				}
				c[y][x] = ch
			}
		}
		label := []rune(r.WidgetID)
		if room := x1 - x0 - 1; len(label) > room {
			label = label[:room]
		}
		copy(c[y0+1][x0+1:], label)
	}

	lines := make([]string, height)
	for y, line := range c {
		lines[y] = strings.TrimRight(string(line), " ")
	}
	return strings.Join(lines, "\n")
}

// pixelHeight converts a number of terminal lines to the pixel height of the
// grid rows that fit into them.
func pixelHeight(lines, rowHeight, rowMargin int) int {
	rows := lines / linesPerRow
	if rows < 1 {
		return 0
	}
	return rows*(rowHeight+rowMargin) + rowMargin
}

// lineSpan maps a pixel scroll target back to terminal lines.
func lineSpan(top, height, rowHeight, rowMargin int) (first, count int) {
	pitch := rowHeight + rowMargin
	if pitch <= 0 {
		return 0, linesPerRow
	}
	row := max(top-rowMargin, 0) / pitch
	span := max((height+rowMargin+pitch-1)/pitch, 1)
	return row * linesPerRow, span * linesPerRow
}
