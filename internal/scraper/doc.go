// Package scraper walks the three-level hierarchy of a legal-code site
// (titles on the index page, chapters on title pages, sections on chapter
// pages) and assembles an in-memory registry. Page structure is extracted
// with golang.org/x/net/html; identifiers come from the cite= query
// parameter the site embeds in every hierarchy link.
package scraper
