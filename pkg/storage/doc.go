// Package storage holds the durable key/value slots the engines persist to.
// Every backend runs operations as atomic units of work: either all writes of a
// unit land or none do.
package storage
