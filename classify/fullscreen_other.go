//go:build !windows

package classify

// Fullscreen detection relies on user32 window enumeration; on other
// platforms the signal is simply absent.
func isFullscreen(_ int32) bool {
	return false
}
