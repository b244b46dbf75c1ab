// Package gardens holds release metadata for the garden registry.
package gardens

// Version is the current release of the garden CLI and registry.
const Version = "0.1.0"
