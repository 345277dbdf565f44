// Package types defines core domain types for splimer.
//
//nolint:revive // types is a common Go package naming convention
package types

// Version is the canonical project version.
// The CLI, the manifest frame and completion events share this version.
const Version = "0.3.0"

// ContractVersion is the version stamped on manifests and completion events.
// Lockstep with Version.
const ContractVersion = Version
