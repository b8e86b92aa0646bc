package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives status output. Snapshots written to "-" go to os.Stdout
// directly and are never mixed with it.
var stdout io.Writer = os.Stdout

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

// Shared styles.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	// Explorer rows.
	styleCursor   = lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true)
	styleSelected = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleLoading  = lipgloss.NewStyle().Foreground(colorAmber)
	styleBranch   = lipgloss.NewStyle().Foreground(colorTeal)
	styleLeaf     = lipgloss.NewStyle().Foreground(colorGray)
)

// Explorer row markers.
const (
	iconExpanded  = "▾"
	iconCollapsed = "▸"
	iconLeaf      = "·"
	iconLoading   = "…"
	iconError     = "✗"
)

// statusKind is the leading marker of a status line.
type statusKind struct {
	icon  string
	style lipgloss.Style
	body  *lipgloss.Style // nil leaves the message unstyled
}

var (
	statusSuccess = statusKind{icon: "✓", style: lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = statusKind{icon: iconError, style: lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = statusKind{icon: "!", style: StyleWarning, body: &StyleWarning}
	statusInfo    = statusKind{icon: "›", style: lipgloss.NewStyle().Foreground(colorGray)}
)

func (k statusKind) line(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if k.body != nil {
		msg = k.body.Render(msg)
	}
	return k.style.Render(k.icon) + " " + msg
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, statusSuccess.line(format, args...))
}
func printError(format string, args ...any) { fmt.Fprintln(stdout, statusError.line(format, args...)) }
func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, statusWarning.line(format, args...))
}
func printInfo(format string, args ...any) { fmt.Fprintln(stdout, statusInfo.line(format, args...)) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path a snapshot was written to.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printStats(nodes, links int, cached bool) {
	fmt.Fprintln(stdout, statsLine(nodes, links, cached))
}

// statsLine summarizes a render, e.g. "  12 nodes · 11 links · fresh".
func statsLine(nodes, links int, cached bool) string {
	var parts []string
	if nodes > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodes)))
	}
	if links > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d links", links)))
	}
	if cached {
		parts = append(parts, statusSuccess.style.Render("cached"))
	} else {
		parts = append(parts, statusInfo.style.Render("fresh"))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
