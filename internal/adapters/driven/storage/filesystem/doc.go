// Package filesystem implements the driven ports that touch the local disk:
// listing and reading descriptor files, and persisting rendered artifacts.
//
// Artifacts are written with github.com/moby/sys/atomicwriter, so the
// downstream deployment pipeline watching the output directories never
// observes a truncated file.
package filesystem
