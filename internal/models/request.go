package models

import (
	"strings"
)

// Request holds the three positional arguments of a resample run.
// Values are passed to the external tool exactly as the caller typed them.
type Request struct {
	// Input is the path of the original image
	Input string

	// Output is the path the resampled image is written to
	Output string

	// Resolution is the isotropic voxel size in mm
	Resolution string
}

// Invocation is a fully constructed external command
type Invocation struct {
	// Path is the executable to run
	Path string

	// Args are the arguments following Path
	Args []string
}

// String renders the invocation as a single space-separated command line
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Path)
	parts = append(parts, inv.Args...)
	return strings.Join(parts, " ")
}

// Result is the outcome of running an Invocation
type Result struct {
	// ExitCode is the exit status of the external process, 128+n when it
	// was killed by signal n
	ExitCode int

	// Stdout and Stderr hold whatever the process wrote to each stream
	Stdout []byte
	Stderr []byte
}

// Success reports whether the process exited with status 0
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}
