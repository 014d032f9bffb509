// Package types defines the task ledger entities, the probe result and run
// records, the resolved configuration, and the standard errors shared by the
// ledger, probe, history and gateway packages.
package types
