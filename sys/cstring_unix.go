//go:build unix

package sys

import "golang.org/x/sys/unix"

// CString returns a NUL-terminated copy of s. It fails with EINVAL when s
// contains a NUL byte.
func CString(s string) (*byte, error) { return unix.BytePtrFromString(s) }

// GoString copies a NUL-terminated C string. nil yields "".
func GoString(p *byte) string { return unix.BytePtrToString(p) }

// GoStringN copies a fixed char array up to its first NUL.
func GoStringN(b []byte) string { return unix.ByteSliceToString(b) }
