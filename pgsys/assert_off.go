//go:build pgext_release

package pgsys

// AssertEnabled reports whether engine debug assertions are compiled in.
const AssertEnabled = false
