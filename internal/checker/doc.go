// Package checker holds the SecuriScan probe set.
//
// Architecture overview:
//
//   - ParseTarget validates and normalizes the raw URL once and derives
//     IsLocal, which probes consult before touching sensitive paths.
//   - Every probe implements Probe (Name + Section + Check). Probes are
//     stateless, fetch through the injected Fetcher, and always return their
//     output as findings: a probe that cannot obtain data reports an
//     informational sentinel instead of failing.
//   - The detection rules are deliberately blunt substring heuristics (script
//     src names and versions, a literal anti-CSRF input, the "../" sequence)
//     and false-positive by nature.
//
// The orchestrator in internal/application/scan runs the probes concurrently
// and assembles their findings into a scan.Result.
package checker
