package health

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gcibot/gcibot/internal/config"
)

// Status represents check status
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
	StatusDisabled
)

// pingTimeout bounds the metadata endpoint probe.
const pingTimeout = 5 * time.Second

var (
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Check represents a health check result
type Check struct {
	Name    string
	Status  Status
	Message string
	Fix     string
}

// Pinger probes the task metadata endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks        []Check
	Rooms         []string
	Announcements int
}

// RunChecks performs all health checks based on config. A nil pinger skips
// the network probe.
func RunChecks(ctx context.Context, cfg *config.Config, pinger Pinger) *HealthReport {
	report := &HealthReport{
		Checks:        checkConfig(cfg),
		Announcements: len(cfg.Announcements),
	}
	if cfg.IRC != nil {
		report.Rooms = cfg.IRC.Rooms
	}
	report.Checks = append(report.Checks, checkMetadata(ctx, pinger))
	return report
}

// checkConfig checks the parts of the config the bot needs to run
func checkConfig(cfg *config.Config) []Check {
	checks := []Check{}

	if err := cfg.Validate(); err != nil {
		checks = append(checks, Check{
			Name:    "config",
			Status:  StatusError,
			Message: err.Error(),
			Fix:     fmt.Sprintf("edit %s", config.DefaultConfigPath()),
		})
		return checks
	}
	checks = append(checks, Check{Name: "config", Status: StatusOK, Message: "valid"})

	irc := cfg.IRC
	switch {
	case irc.WebSocketURL != "":
		checks = append(checks, Check{Name: "server", Status: StatusOK, Message: irc.WebSocketURL})
	case irc.TLS:
		checks = append(checks, Check{Name: "server", Status: StatusOK, Message: irc.Server + " (tls)"})
	default:
		checks = append(checks, Check{
			Name:    "server",
			Status:  StatusWarning,
			Message: irc.Server + " (plaintext)",
			Fix:     "set irc.tls: true",
		})
	}

	if len(irc.Rooms) > 0 {
		checks = append(checks, Check{
			Name:    "rooms",
			Status:  StatusOK,
			Message: fmt.Sprintf("%d configured", len(irc.Rooms)),
		})
	} else {
		checks = append(checks, Check{
			Name:    "rooms",
			Status:  StatusWarning,
			Message: "none configured",
			Fix:     "set irc.rooms or pass rooms to 'gcibot run'",
		})
	}

	password := "not set"
	if irc.Password != "" {
		password = "set"
	}
	checks = append(checks, Check{
		Name:    "password",
		Status:  boolToStatus(irc.Password != ""),
		Message: password,
	})

	checks = append(checks, Check{
		Name:    "announcements",
		Status:  boolToStatus(len(cfg.Announcements) > 0),
		Message: fmt.Sprintf("%d scheduled", len(cfg.Announcements)),
	})

	return checks
}

// checkMetadata probes the task metadata endpoint
func checkMetadata(ctx context.Context, pinger Pinger) Check {
	if pinger == nil {
		return Check{Name: "task api", Status: StatusDisabled, Message: "skipped"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		return Check{
			Name:    "task api",
			Status:  StatusError,
			Message: err.Error(),
			Fix:     "check tasks.metadata_url and network access",
		}
	}
	return Check{Name: "task api", Status: StatusOK, Message: "reachable"}
}

// Summary returns the number of errors and warnings
func (r *HealthReport) Summary() (errors, warnings int) {
	for _, c := range r.Checks {
		switch c.Status {
		case StatusError:
			errors++
		case StatusWarning:
			warnings++
		}
	}
	return errors, warnings
}

// boolToStatus converts bool to Status
func boolToStatus(enabled bool) Status {
	if enabled {
		return StatusOK
	}
	return StatusDisabled
}

// Symbol returns the symbol for a status
func (s Status) Symbol() string {
	switch s {
	case StatusOK:
		return "✓"
	case StatusWarning:
		return "○"
	case StatusError:
		return "✗"
	case StatusDisabled:
		return "·"
	default:
		return "?"
	}
}

// ColorSymbol returns the symbol styled for the terminal
func (s Status) ColorSymbol() string {
	switch s {
	case StatusOK:
		return okStyle.Render(s.Symbol())
	case StatusWarning:
		return warningStyle.Render(s.Symbol())
	case StatusError:
		return errorStyle.Render(s.Symbol())
	case StatusDisabled:
		return disabledStyle.Render(s.Symbol())
	default:
		return s.Symbol()
	}
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
