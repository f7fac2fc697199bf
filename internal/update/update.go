// Package update checks GitHub releases and replaces the running binary.
package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creativeprojects/go-selfupdate"
)

// Repository is the GitHub slug releases are published under.
const Repository = "skim-satellite/adder"

// InstallMethod describes how the running binary was installed.
type InstallMethod int

const (
	InstallBinary InstallMethod = iota
	InstallHomebrew
	InstallGoInstall
)

// Release describes an available release.
type Release struct {
	Version string
	URL     string
}

// DetectInstallMethod guesses how the executable was installed from its path.
func DetectInstallMethod() InstallMethod {
	exe, err := os.Executable()
	if err != nil {
		return InstallBinary
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return installMethodForPath(exe)
}

func installMethodForPath(exe string) InstallMethod {
	slashed := filepath.ToSlash(exe)
	switch {
	case strings.Contains(slashed, "/Cellar/") || strings.Contains(slashed, "/homebrew/"):
		return InstallHomebrew
	case strings.Contains(slashed, "/go/bin/"):
		return InstallGoInstall
	default:
		return InstallBinary
	}
}

// isDevVersion reports whether current is an unreleased build.
func isDevVersion(current string) bool {
	return current == "" || current == "dev" || strings.Contains(current, "-dirty")
}

// CheckForUpdate returns the latest release and whether it is newer than current.
func CheckForUpdate(current string) (*Release, bool, error) {
	if isDevVersion(current) {
		return nil, false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Repository))
	if err != nil {
		return nil, false, fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	rel := &Release{Version: latest.Version(), URL: latest.URL}
	return rel, !latest.LessOrEqual(strings.TrimPrefix(current, "v")), nil
}

// Update replaces the running executable with the latest release.
func Update(current string) error {
	if isDevVersion(current) {
		return fmt.Errorf("cannot update a development build")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Repository))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", Repository)
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to install %s: %w", latest.Version(), err)
	}
	return nil
}
