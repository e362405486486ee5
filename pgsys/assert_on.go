//go:build !pgext_release

package pgsys

// AssertEnabled reports whether engine debug assertions are compiled in.
// Freed and vacated memory is clobbered with ClobberByte when enabled.
const AssertEnabled = true
