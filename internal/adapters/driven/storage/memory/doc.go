// Package memory provides in-memory implementations of the driven store
// ports. State is lost when the process exits, so every file is
// reprocessed on the first scan after a restart; the change gate keeps
// that from rewriting unchanged artifacts.
package memory
