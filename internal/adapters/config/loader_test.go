package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/config"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

func writeSpecfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const helloSpec = `
version: "1"
specs:
  - name: hello
    version: "2.12.1"
    source:
      method: url
      location: https://example.org/hello-2.12.1.tar.gz
      checksum: sha256:deadbeef
    license: GPL-3.0
    description: A program that prints a friendly greeting.
    inputs:
      - name: gcc
        kind: native
      - name: glibc
        kind: regular
    phases:
      - name: unpack
        action: tar xf $src
      - name: configure
        action: ./configure --prefix=$out
      - name: build
        action: make
      - name: check
        override: skip
      - name: install
        action: make install
`

func TestLoader_Load_SingleFile(t *testing.T) {
	path := writeSpecfile(t, t.TempDir(), "hello.yaml", helloSpec)

	specs, err := config.NewLoader(nopLogger{}).Load(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	spec := specs[0]
	require.Equal(t, "hello@2.12.1", spec.ID())
	require.Equal(t, "url", spec.Source.Method)
	require.Len(t, spec.Inputs, 2)
	require.Equal(t, domain.KindNative, spec.Inputs[0].Kind)
	require.Len(t, spec.Phases, 5)

	_, run := spec.Phases[3].Effective()
	require.False(t, run, "check phase is skipped")
}

func TestLoader_Load_Directory_DeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeSpecfile(t, dir, "b.yaml", `
specs:
  - name: beta
    version: "1.0"
    source: {method: url, location: https://example.org/b.tar.gz, checksum: sha256:bb}
`)
	writeSpecfile(t, dir, "a.yaml", `
specs:
  - name: alpha
    version: "1.0"
    source: {method: url, location: https://example.org/a.tar.gz, checksum: sha256:aa}
`)
	writeSpecfile(t, dir, "notes.txt", "not a spec file")

	specs, err := config.NewLoader(nopLogger{}).Load(dir)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	require.Equal(t, "alpha", specs[0].Name.String())
	require.Equal(t, "beta", specs[1].Name.String())
}

func TestLoader_Load_InvalidEntries(t *testing.T) {
	cases := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name: "missing name",
			yaml: `
specs:
  - version: "1.0"
    source: {method: url, location: https://x, checksum: sha256:aa}
`,
			field: "name",
		},
		{
			name: "missing version",
			yaml: `
specs:
  - name: p
    source: {method: url, location: https://x, checksum: sha256:aa}
`,
			field: "version",
		},
		{
			name: "bad source method",
			yaml: `
specs:
  - name: p
    version: "1.0"
    source: {method: ftp, location: ftp://x}
`,
			field: "source.method",
		},
		{
			name: "git without revision",
			yaml: `
specs:
  - name: p
    version: "1.0"
    source: {method: git, location: https://example.org/p.git}
`,
			field: "source.revision",
		},
		{
			name: "bad input kind",
			yaml: `
specs:
  - name: p
    version: "1.0"
    source: {method: url, location: https://x, checksum: sha256:aa}
    inputs: [{name: q, kind: optional}]
`,
			field: "inputs.kind",
		},
		{
			name: "replace without with",
			yaml: `
specs:
  - name: p
    version: "1.0"
    source: {method: url, location: https://x, checksum: sha256:aa}
    phases: [{name: build, action: make, override: replace}]
`,
			field: "phases.with",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSpecfile(t, t.TempDir(), "bad.yaml", tc.yaml)

			_, err := config.NewLoader(nopLogger{}).Load(path)
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrInvalidSpecification))

			var zErr *zerr.Error
			require.True(t, errors.As(err, &zErr))
			require.Equal(t, tc.field, zErr.Metadata()["field"])
		})
	}
}

func TestLoader_Load_DefaultInputKindIsRegular(t *testing.T) {
	path := writeSpecfile(t, t.TempDir(), "spec.yaml", `
specs:
  - name: p
    version: "1.0"
    source: {method: url, location: https://x, checksum: sha256:aa}
    inputs: [{name: q}]
`)

	specs, err := config.NewLoader(nopLogger{}).Load(path)
	require.NoError(t, err)
	require.Equal(t, domain.KindRegular, specs[0].Inputs[0].Kind)
}
