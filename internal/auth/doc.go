// Package auth turns local ed25519 keys into verified identities.
//
// Keys live in a keyring directory, one hex-encoded seed per alias. The CLI
// signs a short-lived EdDSA token with the selected key and verifies it
// before handing the resulting ir.Identity to the registry. The registry
// itself never sees keys or tokens.
package auth
