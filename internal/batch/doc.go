// Package batch reads minimal pairs from CSV input files.
package batch
