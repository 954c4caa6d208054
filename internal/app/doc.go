// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the execution lifecycle: loading a graph
// document, running it, and optionally saving it back, decoupled from any
// specific entrypoint like a CLI.
package app
