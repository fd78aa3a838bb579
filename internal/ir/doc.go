// Package ir provides the foundational types for favnum: identities, derived
// addresses, the two fixed-layout record kinds and the typed record errors.
//
// This package contains no I/O. All other internal packages import ir; ir
// imports nothing internal.
//
// Key design constraints:
//   - Record locations are never stored. They are recomputed from a namespace
//     tag and an optional owner identity via Derive.
//   - Derivation is versioned by its domain prefix (DomainAddress). Changing
//     the algorithm requires a new prefix.
//   - Record layouts are fixed-size and versionless. A blob of the wrong size
//     or discriminator is corruption, never a migration.
package ir
