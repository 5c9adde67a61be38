// Package storage declares the Local Store contract for the editor origin.
//
// The store holds a single document under a fixed key; it is the only state
// the editor keeps between sessions.
package storage
