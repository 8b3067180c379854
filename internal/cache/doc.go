// Package cache implements the persistent audio cache. Entries are
// stored one file per key under a base directory with a JSON index
// carrying metadata and insertion times. Payloads above a threshold are
// zstd compressed when that saves space. Corrupt or missing entries
// are treated as misses and dropped, never as failures.
package cache
