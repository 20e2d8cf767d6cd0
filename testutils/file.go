// Package testutils contains helpers shared by tests that work with cell description, program and
// scene files.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/robotcell/cellsim/scene"
)

// WriteFile writes contents to name inside dir and fails the test if it cannot.
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

// WriteScene writes the scene description of root to name inside dir.
func WriteScene(t *testing.T, dir, name string, root scene.Node) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.Write(f, root), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)
	return path
}
