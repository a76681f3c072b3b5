// Package platform provides host detection and Homebrew discovery.
package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"strings"
)

// Supported operating system identifiers.
const (
	// OSDarwin represents macOS
	OSDarwin = "darwin"
	// OSLinux represents Linux operating systems
	OSLinux = "linux"
)

// ErrBrewNotFound is returned when no brew binary can be located.
var ErrBrewNotFound = errors.New("brew not found")

// Standard brew install locations.
const (
	BrewAppleSilicon = "/opt/homebrew/bin/brew"
	BrewIntelMac     = "/usr/local/bin/brew"
	BrewLinux        = "/home/linuxbrew/.linuxbrew/bin/brew"
)

// Platform holds detected host information.
type Platform struct {
	OS       string
	Arch     string
	Hostname string
	User     string
}

// Detect detects the current operating system, hostname, and user.
func Detect() *Platform {
	return &Platform{
		OS:       detectOS(),
		Arch:     runtime.GOARCH,
		Hostname: detectHostname(),
		User:     detectUser(),
	}
}

func detectOS() string {
	if runtime.GOOS == OSDarwin {
		return OSDarwin
	}

	return OSLinux
}

func detectHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		slog.Debug("unable to detect hostname",
			slog.String("error", err.Error()),
			slog.String("fallback", "empty"))
		return ""
	}

	return hostname
}

func detectUser() string {
	u, err := user.Current()
	if err != nil {
		slog.Debug("unable to detect current user",
			slog.String("error", err.Error()),
			slog.String("fallback", "empty"))
		return ""
	}

	return u.Username
}

// IsAppleSilicon reports whether the host is an arm64 Mac.
func (p *Platform) IsAppleSilicon() bool {
	return p.OS == OSDarwin && p.Arch == "arm64"
}

// WithHostname returns a copy of the Platform with the Hostname field overridden.
func (p *Platform) WithHostname(hostname string) *Platform {
	newP := *p
	newP.Hostname = hostname

	return &newP
}

// BrewLocations returns the standard brew paths, the native prefix for this
// host first. A Rosetta install under /usr/local is still found on Apple
// Silicon.
func (p *Platform) BrewLocations() []string {
	switch {
	case p.IsAppleSilicon():
		return []string{BrewAppleSilicon, BrewIntelMac}
	case p.OS == OSDarwin:
		return []string{BrewIntelMac, BrewAppleSilicon}
	}

	return []string{BrewLinux}
}

// DetectBrew returns the path of the brew binary, checking BrewLocations
// and then PATH.
func (p *Platform) DetectBrew() (string, error) {
	return FindBrew(p.BrewLocations())
}

// FindBrew returns the first executable among candidates, or the brew found
// in PATH when none of them exist.
func FindBrew(candidates []string) (string, error) {
	for _, c := range candidates {
		if isExecutable(c) {
			slog.Debug("found brew", slog.String("path", c))
			return c, nil
		}
	}

	path, err := exec.LookPath("brew")
	if err != nil {
		return "", fmt.Errorf("%w: checked %s and PATH", ErrBrewNotFound, strings.Join(candidates, ", "))
	}

	slog.Debug("found brew in PATH", slog.String("path", path))

	return path, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode().Perm()&0o111 != 0
}
