package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

// nonInteractiveMode tracks whether prompts should be disabled.
// Uses atomic.Bool for thread-safe access from concurrent operations.
var nonInteractiveMode atomic.Bool

// SetNonInteractive sets non-interactive mode (disables prompts).
// This function is thread-safe.
func SetNonInteractive(v bool) {
	nonInteractiveMode.Store(v)
}

// CanPrompt returns true if interactive prompts are allowed
// (terminal is available and non-interactive mode is not set).
// This function is thread-safe.
func CanPrompt() bool {
	return !nonInteractiveMode.Load() && IsInteractive()
}

// Prompt handles interactive prompts
type Prompt struct {
	reader *bufio.Reader
}

// NewPrompt creates a new prompt handler
func NewPrompt() *Prompt {
	return &Prompt{
		reader: bufio.NewReader(os.Stdin),
	}
}

// Confirm asks for a yes/no confirmation
func (p *Prompt) Confirm(message string, defaultYes bool) (bool, error) {
	defaultStr := "y/N"
	if defaultYes {
		defaultStr = "Y/n"
	}

	fmt.Fprintf(os.Stderr, "%s [%s]: ", message, defaultStr)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	input = strings.TrimSpace(strings.ToLower(input))

	if input == "" {
		return defaultYes, nil
	}

	return input == "y" || input == "yes", nil
}

// String asks for a string input
func (p *Prompt) String(message string, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", message, defaultValue)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", message)
	}

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}

	return input, nil
}

// StringList asks for a comma-separated list
func (p *Prompt) StringList(message string, defaults []string) ([]string, error) {
	input, err := p.String(message, strings.Join(defaults, ","))
	if err != nil {
		return nil, err
	}

	var values []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	return values, nil
}

// IsInteractive returns true if stdin is a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
