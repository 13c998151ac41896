package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		setup        func(tmpDir string)
		args         []string
		expectedExit int
	}{
		{
			name: "Success with valid specfile",
			setup: func(tmpDir string) {
				specContent := `version: "1"
specs:
  - name: hello
    version: "2.12"
    source:
      method: url
      location: https://example.org/hello-2.12.tar.gz
      checksum: abc123
    phases:
      - name: build
        action: "true"
`
				err := os.WriteFile(tmpDir+"/specs.yaml", []byte(specContent), 0o600)
				if err != nil {
					t.Fatalf("failed to write specfile: %v", err)
				}
			},
			args:         []string{"mason", "build", "hello", "--state-dir", ".mason"},
			expectedExit: 0,
		},
		{
			name:         "Error with missing specfile",
			setup:        func(string) {},
			args:         []string{"mason", "build", "hello", "-c", "nonexistent.yaml"},
			expectedExit: 1,
		},
		{
			name:         "Error with unknown target",
			setup:        func(string) {},
			args:         []string{"mason", "build", "no-such-package"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setup(tmpDir)

			originalWd, _ := os.Getwd()
			if err := os.Chdir(tmpDir); err != nil {
				t.Fatalf("failed to chdir: %v", err)
			}
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			os.Args = tt.args
			exitCode := run()
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
