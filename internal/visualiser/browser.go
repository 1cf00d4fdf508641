package visualiser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// startCommand launches a detached process; replaced in tests.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// browserCommand returns the platform command that opens target in the
// default browser.
func browserCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// Open shows an HTML figure in the user's browser.
func Open(path string) error {
	name, args := browserCommand(runtime.GOOS, path)
	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}
