// Package harness runs conformance scenarios against the registry.
//
// # Scenario Format
//
// Scenarios are YAML files. Identities are referred to by fixture name and
// resolved through testutil, so traces never contain raw keys:
//
//	name: admin_reset
//	description: "Admin overwrites a user's value"
//	steps:
//	  - op: initialize
//	    caller: A
//	  - op: set
//	    caller: B
//	    value: 5
//	  - op: reset
//	    caller: B
//	    target: B
//	    value: 1
//	    expect:
//	      case: UNAUTHORIZED
//	assertions:
//	  - type: final_record
//	    owner: B
//	    value: 5
//
// A step without expect must succeed. expect.case is "ok" or an error code.
//
// # Assertion Types
//
//   - final_record: the record for owner exists with value, or is absent
//   - final_config: the registry admin is admin
//   - record_count: exactly count records exist
//   - trace_count: op (optionally with case) appears exactly count times
//
// # Determinism
//
// Every scenario runs against a fresh in-memory store. The trace holds only
// fixture names, ops, outcomes and values, so it is stable across runs and
// compared against golden files in testdata/golden.
package harness
