// Package main provides the entry point for the walaw CLI.
//
// walaw catalogues the Washington State legal codes (RCW and WAC) into
// versioned registry snapshots and downloads the referenced page content.
//
// Usage:
//
//	walaw generate wac
//	walaw scrape-content wac --rate-limit
//
// See --help for all available options.
package main

// main is the entry point for walaw.
func main() {
	Execute()
}
