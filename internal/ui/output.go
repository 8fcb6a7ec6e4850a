package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Output handles formatted output to the terminal
type Output struct {
	out     io.Writer
	err     io.Writer
	verbose bool
	json    bool
}

// NewOutput creates a new output handler
func NewOutput(verbose, jsonOutput bool) *Output {
	return &Output{
		out:     os.Stdout,
		err:     os.Stderr,
		verbose: verbose,
		json:    jsonOutput,
	}
}

// NewOutputWithWriters creates an output handler with custom writers (for testing)
func NewOutputWithWriters(out, err io.Writer, verbose, jsonOutput bool) *Output {
	return &Output{
		out:     out,
		err:     err,
		verbose: verbose,
		json:    jsonOutput,
	}
}

// Println prints a message to stdout with a newline
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.out, args...)
}

// Printf prints a formatted message to stdout
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.out, format, args...)
}

// Error prints an error message to stderr
func (o *Output) Error(format string, args ...interface{}) {
	fmt.Fprintf(o.err, "Error: "+format+"\n", args...)
}

// Warn prints a warning message to stderr
func (o *Output) Warn(format string, args ...interface{}) {
	fmt.Fprintf(o.err, "Warning: "+format+"\n", args...)
}

// Verbose prints a message only if verbose mode is enabled
func (o *Output) Verbose(format string, args ...interface{}) {
	if o.verbose {
		fmt.Fprintf(o.err, format+"\n", args...)
	}
}

// Success prints a success message
func (o *Output) Success(format string, args ...interface{}) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// JSON outputs data as JSON
func (o *Output) JSON(data interface{}) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// IsJSON returns true if JSON output mode is enabled
func (o *Output) IsJSON() bool {
	return o.json
}

// IsVerbose returns true if verbose mode is enabled
func (o *Output) IsVerbose() bool {
	return o.verbose
}
