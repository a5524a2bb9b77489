//go:build windows

package sys

import "golang.org/x/sys/windows"

// CString returns a NUL-terminated copy of s. It fails with EINVAL when s
// contains a NUL byte.
func CString(s string) (*byte, error) { return windows.BytePtrFromString(s) }

// GoString copies a NUL-terminated C string. nil yields "".
func GoString(p *byte) string { return windows.BytePtrToString(p) }

// GoStringN copies a fixed char array up to its first NUL.
func GoStringN(b []byte) string { return windows.ByteSliceToString(b) }
