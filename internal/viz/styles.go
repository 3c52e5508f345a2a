package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/stiffode/internal/dynamo"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusFail = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	// explicit steps in green, implicit in amber
	ExplicitStep = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	ImplicitStep = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
	OtherStep    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

// ModeStrip renders one glyph per sampled step: E explicit, I implicit,
// · for the initial point and bootstrap.
func ModeStrip(modes []dynamo.Mode, width int) string {
	if len(modes) == 0 || width <= 0 {
		return ""
	}

	step := sampleStep(len(modes), width)

	var result strings.Builder
	for i := 0; i < width && i*step < len(modes); i++ {
		switch modes[i*step] {
		case dynamo.ModeExplicit:
			result.WriteString(ExplicitStep.Render("E"))
		case dynamo.ModeImplicit:
			result.WriteString(ImplicitStep.Render("I"))
		default:
			result.WriteString(OtherStep.Render("·"))
		}
	}

	return result.String()
}

// SparklineChart renders a mini sparkline from values. High values are
// drawn in red so stiffness spikes stand out.
func SparklineChart(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := sampleStep(len(values), width)

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}

	return result.String()
}

// Table lays out rows under a bold header with column widths taken from
// the widest cell.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = lipgloss.NewStyle().Width(widths[i] + 2).Render(h)
	}
	b.WriteString(HeaderStyle.Render(strings.Join(cells, "")))
	b.WriteString("\n")

	for _, row := range rows {
		for i := range cells {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = lipgloss.NewStyle().Width(widths[i] + 2).Render(cell)
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, ""), " "))
		b.WriteString("\n")
	}

	return b.String()
}

func Separator(width int) string {
	if width < 8 {
		return Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return Subtle.Render(left + " ◆ " + right)
}

func sampleStep(n, width int) int {
	step := n / width
	if step < 1 {
		step = 1
	}
	return step
}
