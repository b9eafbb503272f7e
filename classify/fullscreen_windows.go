//go:build windows

package classify

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procGetSystemMetrics         = user32.NewProc("GetSystemMetrics")
)

const (
	smCxScreen = 0
	smCyScreen = 1

	// Window dimensions within this many pixels of the display count as
	// fullscreen (borderless windows are slightly off the exact size).
	fullscreenTolerance = 50
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

// isFullscreen reports whether the process owns a visible top-level
// window whose size matches the primary display resolution.
func isFullscreen(pid int32) bool {
	screenW, _, _ := procGetSystemMetrics.Call(uintptr(smCxScreen))
	screenH, _, _ := procGetSystemMetrics.Call(uintptr(smCyScreen))
	if screenW == 0 || screenH == 0 {
		return false
	}

	found := false
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1 // continue enumeration
		}

		var windowPID uint32
		procGetWindowThreadProcessID.Call(hwnd, uintptr(unsafe.Pointer(&windowPID)))
		if int32(windowPID) != pid {
			return 1
		}

		var rect winRect
		ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect)))
		if ret == 0 {
			return 1
		}
		width := rect.Right - rect.Left
		height := rect.Bottom - rect.Top
		if abs32(width-int32(screenW)) < fullscreenTolerance &&
			abs32(height-int32(screenH)) < fullscreenTolerance {
			found = true
			return 0 // stop enumeration
		}
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return found
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
