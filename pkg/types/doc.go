// Package types defines the Garden entity, the caller Identity, the Store and
// GardenService interfaces, configuration, and the coded error type shared by
// the registry, the store backends, and the CLI.
package types
