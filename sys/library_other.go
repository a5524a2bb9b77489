//go:build !windows

package sys

// Open always fails off Windows.
func Open(string) (Library, error) {
	return nil, ErrUnsupportedPlatform
}
