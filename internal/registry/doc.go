// Package registry implements the favnum operations.
//
// Each operation runs as one store transaction and derives every address it
// touches from identities; no address is ever accepted from the caller.
//
//   - Initialize: install the caller as admin. First caller wins, forever.
//   - SetOwnRecord: create or overwrite the caller's own record.
//   - ReadRecord: read any owner's record. No authorization.
//   - AdminResetRecord: overwrite any owner's value; caller must equal the
//     admin stored in GlobalConfig.
//   - ReadConfig: read the GlobalConfig singleton.
//
// Callers are identities already verified by the authentication layer. The
// registry compares identities and never inspects signatures.
//
// Errors are *ir.RecordError values surfaced unchanged; a failed operation
// commits nothing and publishes nothing.
package registry
