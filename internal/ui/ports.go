package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter shows blocking dialogs.
type Prompter interface {
	// Confirm asks a yes/no question and reports whether the user accepted.
	Confirm(msg string) bool
	// Alert shows a message the user must acknowledge.
	Alert(msg string)
}

// Navigator moves the user to another page, replacing the current one.
type Navigator interface {
	Replace(location string)
}

// Form exposes the values of input fields by element id.
type Form interface {
	Value(id string) string
}

// FormValues is a Form backed by a map.
type FormValues map[string]string

func (f FormValues) Value(id string) string { return f[id] }

// TerminalPrompter asks on in and reports on out.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
	// AssumeYes answers every confirmation with yes without reading input.
	AssumeYes bool
}

func NewTerminalPrompter(in io.Reader, out io.Writer, assumeYes bool) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out, AssumeYes: assumeYes}
}

func (p *TerminalPrompter) Confirm(msg string) bool {
	if p.AssumeYes {
		fmt.Fprintf(p.out, "%s [y/N]: y\n", msg)
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", msg)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "예", "네", "ㅇ":
		return true
	default:
		return false
	}
}

func (p *TerminalPrompter) Alert(msg string) {
	fmt.Fprintln(p.out, msg)
}

// PrintNavigator reports the follow-up location instead of opening it.
type PrintNavigator struct {
	Out      io.Writer
	Location string
}

func (n *PrintNavigator) Replace(location string) {
	n.Location = location
	if n.Out != nil {
		fmt.Fprintf(n.Out, "-> %s\n", location)
	}
}
