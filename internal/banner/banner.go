package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gcibot/gcibot/internal/health"
)

// Logo is the ASCII art logo for gcibot
const Logo = `
    ██████╗  ██████╗██╗██████╗  ██████╗ ████████╗
   ██╔════╝ ██╔════╝██║██╔══██╗██╔═══██╗╚══██╔══╝
   ██║  ███╗██║     ██║██████╔╝██║   ██║   ██║
   ██║   ██║██║     ██║██╔══██╗██║   ██║   ██║
   ╚██████╔╝╚██████╗██║██████╔╝╚██████╔╝   ██║
    ╚═════╝  ╚═════╝╚═╝╚═════╝  ╚═════╝    ╚═╝
`

// Tagline is the project tagline
const Tagline = "Google Code-in task summaries for IRC"

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fixStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6B7280"))
)

// PrintWithVersion prints the banner with version info
func PrintWithVersion(w io.Writer, version string) {
	fmt.Fprint(w, Logo)
	fmt.Fprintf(w, "   %s\n", Tagline)
	fmt.Fprintf(w, "   v%s\n\n", version)
}

// StartupBanner prints the startup banner: version, server and rooms
func StartupBanner(w io.Writer, version, server string, rooms []string) {
	fmt.Fprint(w, Logo)
	fmt.Fprintf(w, "   %s\n", Tagline)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "   %s v%s\n", labelStyle.Render("Version:"), version)
	fmt.Fprintf(w, "   %s %s\n", labelStyle.Render("Server: "), server)
	if len(rooms) > 0 {
		fmt.Fprintf(w, "   %s %s\n", labelStyle.Render("Rooms:  "), strings.Join(rooms, ", "))
	} else {
		fmt.Fprintf(w, "   %s none\n", labelStyle.Render("Rooms:  "))
	}
	fmt.Fprintln(w)
}

// PrintHealth prints a health report, one line per check
func PrintHealth(w io.Writer, version string, report *health.HealthReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("GCIBOT v%s │ doctor", version)))
	fmt.Fprintln(w, rule)

	width := 0
	for _, c := range report.Checks {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}

	for _, c := range report.Checks {
		fmt.Fprintf(w, "%s %-*s  %s\n", c.Status.ColorSymbol(), width, c.Name, c.Message)
		if c.Fix != "" && (c.Status == health.StatusError || c.Status == health.StatusWarning) {
			fmt.Fprintf(w, "  %s\n", fixStyle.Render("→ "+c.Fix))
		}
	}

	if len(report.Rooms) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Rooms: %s\n", strings.Join(report.Rooms, ", "))
	}

	errs, warns := report.Summary()
	fmt.Fprintln(w, rule)
	switch {
	case errs > 0:
		fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
	case warns > 0:
		fmt.Fprintf(w, "Ready with %d warning(s)\n", warns)
	default:
		fmt.Fprintln(w, "Ready")
	}
	fmt.Fprintln(w)
}
