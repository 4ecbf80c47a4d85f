package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

// Message is a problem report with optional suggestions and follow-up commands
type Message struct {
	Level       Level
	Context     string
	Problem     string
	Suggestions []string
	Help        []string
	NoColor     bool
}

// Format renders the message, e.g.
//
//	✗ RESOURCE NOT FOUND: Cannot find resource 'modl'.
//
//	   Did you mean: model?
//
//	   → See all routes: restgen routes
func (m Message) Format() string {
	var b strings.Builder

	head := color.New(color.FgRed, color.Bold)
	symbol := "✗"
	if m.Level == LevelWarning {
		head = color.New(color.FgYellow, color.Bold)
		symbol = "!"
	}
	hint := color.New(color.FgYellow)
	cmd := color.New(color.FgCyan)
	if m.NoColor {
		head.DisableColor()
		hint.DisableColor()
		cmd.DisableColor()
	}

	if m.Context != "" {
		head.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		head.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}

	if len(m.Suggestions) > 0 {
		b.WriteString("\n")
		hint.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}

	if len(m.Help) > 0 {
		b.WriteString("\n")
		for _, h := range m.Help {
			cmd.Fprintf(&b, "   → %s\n", h)
		}
	}

	return b.String()
}

// Write writes the formatted message to w
func (m Message) Write(w io.Writer) {
	fmt.Fprint(w, m.Format())
}

// ResourceNotFound reports an unknown resource name with close matches
func ResourceNotFound(name string, known []string, noColor bool) Message {
	return Message{
		Context:     "resource not found",
		Problem:     fmt.Sprintf("Cannot find resource '%s'.", name),
		Suggestions: FindSimilar(name, known, nil),
		Help:        []string{"See all routes: restgen routes"},
		NoColor:     noColor,
	}
}

// ConfigError reports a configuration file that could not be used
func ConfigError(err error, noColor bool) Message {
	return Message{
		Context: "configuration error",
		Problem: err.Error(),
		Help: []string{
			"Check restgen.yaml or pass --config",
			"Get help: restgen --help",
		},
		NoColor: noColor,
	}
}

// Success formats a success line
func Success(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}
