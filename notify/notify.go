// Package notify surfaces OS-level alerts to the user. Both operations
// are fire-and-forget: failures are logged and never reach the caller.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// Notifier is the collaborator the enforcement loop talks to.
type Notifier interface {
	// Warn tells the user a game exceeded its limit (maxTime minutes).
	Warn(exeName string, maxTime int)
	// ForceKill tells the user the game was terminated.
	ForceKill(exeName string)
}

// OSNotifier shows alerts through whatever the host OS offers:
// a PowerShell message box on Windows, notify-send elsewhere.
type OSNotifier struct{}

func NewOSNotifier() *OSNotifier {
	return &OSNotifier{}
}

func (n *OSNotifier) Warn(exeName string, maxTime int) {
	message := fmt.Sprintf(
		"%s has exceeded the time limit! Please stop playing. Max time: %d",
		exeName, maxTime,
	)
	n.show(message, "Warning")
}

func (n *OSNotifier) ForceKill(exeName string) {
	message := fmt.Sprintf("%s has been running for too long, it was killed.", exeName)
	n.show(message, "Error")
}

func (n *OSNotifier) show(message, icon string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		script := fmt.Sprintf(
			"[System.Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms') | Out-Null; "+
				"[System.Windows.Forms.MessageBox]::Show(%q, 'Game Tracker Alert', "+
				"[System.Windows.Forms.MessageBoxButtons]::OK, "+
				"[System.Windows.Forms.MessageBoxIcon]::%s)",
			message, icon,
		)
		cmd = exec.Command("powershell.exe", "-Command", script)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title \"Game Tracker Alert\"", message)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", "-u", "critical", "Game Tracker Alert", message)
	}
	if err := cmd.Start(); err != nil {
		log.Error().Err(err).Str("message", message).Msg("notification failed")
		return
	}
	// Reap the child without waiting for the user to dismiss anything.
	go func() { _ = cmd.Wait() }()
}
