// Package memory provides an in-memory search backend.
// It implements the same driven ports as the remote backend with a
// brute-force scan over a map, which makes it suitable for tests and
// for single-process development without a running search cluster.
// Contents are lost when the process exits.
package memory
