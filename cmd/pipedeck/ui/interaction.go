package ui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	envNoInteraction = "NO_INTERACTION"
	envNoColor       = "NO_COLOR"
	envCI            = "CI"
	envTerm          = "TERM"
)

var interaction struct {
	mu          sync.RWMutex
	configured  bool
	interactive bool
}

// ConfigureInteraction decides once whether this process may use spinners,
// live redraws, and color. disabled forces plain output regardless of the
// environment (the --no-interaction flag).
func ConfigureInteraction(disabled bool) {
	interactive := detectInteractive(disabled)

	interaction.mu.Lock()
	interaction.configured = true
	interaction.interactive = interactive
	interaction.mu.Unlock()

	if interactive && !envSet(envNoColor) {
		lipgloss.SetColorProfile(termenv.ColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// IsInteractive reports whether rich terminal output is allowed, detecting
// the environment on first use when ConfigureInteraction was never called.
func IsInteractive() bool {
	interaction.mu.RLock()
	configured, interactive := interaction.configured, interaction.interactive
	interaction.mu.RUnlock()
	if configured {
		return interactive
	}

	ConfigureInteraction(false)

	interaction.mu.RLock()
	defer interaction.mu.RUnlock()
	return interaction.interactive
}

// IsNoInteraction is the negation of IsInteractive.
func IsNoInteraction() bool {
	return !IsInteractive()
}

func detectInteractive(disabled bool) bool {
	if disabled {
		return false
	}
	if envTruthy(envNoInteraction) || envTruthy(envCI) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envTerm)), "dumb") {
		return false
	}
	return stderrIsTerminal()
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func envSet(key string) bool {
	return strings.TrimSpace(os.Getenv(key)) != ""
}

func envTruthy(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
