// Package clock provides the monotonic timestamp source used to stamp
// record modifications.
package clock
