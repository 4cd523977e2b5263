// Callisto is an AI-assisted host security and configuration auditor.
//
// It collects hardware, OS, network, and security data from the local
// host, scores the findings (with an optional AI provider behind a
// rate-limited, circuit-broken client), and writes JSON/HTML reports
// plus optional remediation scripts.
//
// Usage:
//
//	# Run one audit with the default configuration
//	callisto run
//
//	# Run with a custom configuration file
//	callisto run --config /etc/callisto/callisto.yaml
//
//	# Run audits on a schedule with config hot-reload and metrics
//	callisto daemon
//
//	# List stored audit history
//	callisto history --limit 10
//
//	# Show one stored run in full
//	callisto history --id 20260830_120000_abcd1234
package main

func main() {
	Execute()
}
