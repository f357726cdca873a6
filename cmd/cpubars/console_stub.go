//go:build !windows

package main

// enableVirtualTerminal is a no-op on non-Windows platforms.
func enableVirtualTerminal() {}
