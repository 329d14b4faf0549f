// Package cli implements the command-line interface for hackhunt.
//
// The cli package provides the Cobra-based command tree: the root command
// and "ingest" run one ingestion, and "version" prints the build version.
// Ingestion flags are shared with the config package, which merges them with
// the environment, a .env file and an optional YAML file. The run summary is
// printed to stdout as a JSON line or a text block; logs go to stderr.
package cli
