//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Digest runs the full weekly digest with the freshly built binary.
func Digest() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "run")
}

// DryRun generates the report and prints it without sending mail.
func DryRun() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "run", "--dry-run")
}

// Collect prints this week's deduplicated records without calling the model.
func Collect() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "collect")
}
