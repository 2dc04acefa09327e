package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders a single-color column chart with a y axis.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	return columnChart(values, labels, func(int) lipgloss.Color { return color }, -1, width, height)
}

// BalanceChart renders a projected balance curve. Each column is colored by
// the point's status and the threshold is drawn as a dashed line.
func BalanceChart(points []model.ProjectionPoint, threshold int64, labels []string, width, height int) string {
	t := theme.Active
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = float64(p.Balance)
	}
	colorAt := func(i int) lipgloss.Color {
		return t.StatusColor(points[i].Status)
	}
	return columnChart(values, labels, colorAt, float64(threshold), width, height)
}

// columnChart draws values as columns. A non-negative threshold is drawn as
// a dashed row across empty cells.
func columnChart(values []float64, labels []string, colorAt func(int) lipgloss.Color, threshold float64, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	if width < 15 || height < 3 {
		return Sparkline(values, colorAt(len(values)-1))
	}

	maxVal := math.Max(threshold, 0)
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Y axis ticks
	tickStep := chartTickStep(maxVal)
	maxIntervals := max(2, height/2)
	for int(math.Ceil(maxVal/tickStep)) > maxIntervals {
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := max(1, int(math.Round(ceiling/tickStep)))
	rowsPerTick := max(2, height/numIntervals)
	chartH := rowsPerTick * numIntervals

	yLabelW := max(4, len(formatChartLabel(ceiling))+1)
	tickLabels := make(map[int]string, numIntervals)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	chartW := max(5, width-yLabelW-1)

	// Down-sample when columns would be narrower than 2 cells.
	n := len(values)
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 2 && n > 1 {
		keep := max(2, (chartW+1)/3)
		index = make([]int, keep)
		for i := range index {
			index[i] = i * (n - 1) / (keep - 1)
		}
		n = keep
		barW = 2
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)*gap

	thresholdRow := -1
	if threshold >= 0 {
		thresholdRow = int(math.Round(threshold / ceiling * float64(chartH)))
	}

	partial := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)
	dashStyle := lipgloss.NewStyle().Foreground(t.Threshold).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for col, src := range index {
			if col > 0 && gap > 0 {
				if row == thresholdRow {
					b.WriteString(dashStyle.Render(strings.Repeat("┄", gap)))
				} else {
					b.WriteString(blankStyle.Render(strings.Repeat(" ", gap)))
				}
			}
			v := values[src]
			barStyle := lipgloss.NewStyle().Foreground(colorAt(src)).Background(t.Surface)
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				idx = max(1, min(idx, 8))
				b.WriteString(barStyle.Render(strings.Repeat(string(partial[idx]), barW)))
			case row == thresholdRow:
				b.WriteString(dashStyle.Render(strings.Repeat("┄", barW)))
			default:
				b.WriteString(blankStyle.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == len(values) {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, index, barW+gap, axisLen)))
	}
	return b.String()
}

// axisLabels places labels under their columns, skipping any that would
// overlap the previous one.
func axisLabels(labels []string, index []int, stride, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for col, src := range index {
		lbl := labels[src]
		pos := col * stride
		if pos <= lastEnd || pos+len(lbl) > axisLen {
			continue
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	if v >= math.MaxInt64 {
		return cli.FormatCompact(math.MaxInt64)
	}
	return cli.FormatCompact(int64(math.Round(v)))
}
