// Package cli turns the nodegraph command line into an app.Config. It owns
// flag parsing, usage text and the exit codes of usage errors.
package cli
