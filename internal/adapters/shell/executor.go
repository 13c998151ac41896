// Package shell provides the phase executor adapter. Each build phase maps
// to exactly one external invocation in a per-node isolated working area.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor by running every effective phase of a
// node through the invoker.
type Executor struct {
	invoker ports.Invoker
	logger  ports.Logger

	// workRoot holds the per-node scratch areas, outRoot the produced
	// artifacts. Both subdivide by fingerprint, so no two nodes ever share
	// a directory.
	workRoot string
	outRoot  string
}

// NewExecutor creates a new Executor.
func NewExecutor(invoker ports.Invoker, logger ports.Logger, workRoot, outRoot string) *Executor {
	return &Executor{
		invoker:  invoker,
		logger:   logger,
		workRoot: filepath.Clean(workRoot),
		outRoot:  filepath.Clean(outRoot),
	}
}

// Execute runs the node's phase sequence. The first failing phase aborts
// the remaining ones. On success the produced artifact directory is hashed
// and returned as a BuildResult tagged with the node's fingerprint.
func (e *Executor) Execute(ctx context.Context, node *domain.Node, inputs map[string]domain.BuildResult) (domain.BuildResult, error) {
	fp := node.Fingerprint.String()
	workDir := filepath.Join(e.workRoot, fp)
	outDir := filepath.Join(e.outRoot, shard(fp))

	// A stale scratch or output area from an interrupted run must not leak
	// into this build; the output tree is hashed into the result.
	for _, dir := range []string{workDir, outDir} {
		if err := os.RemoveAll(dir); err != nil {
			return domain.BuildResult{}, zerr.Wrap(err, "failed to reset build directory")
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return domain.BuildResult{}, zerr.Wrap(err, "failed to create build directory")
		}
	}

	logPath := filepath.Join(workDir, "build.log")
	logFile, err := os.Create(logPath) //nolint:gosec // path derived from fingerprint
	if err != nil {
		return domain.BuildResult{}, zerr.Wrap(err, "failed to create build log")
	}
	defer logFile.Close() //nolint:errcheck // best effort close in defer

	env, err := buildEnvironment(workDir, outDir, inputs)
	if err != nil {
		return domain.BuildResult{}, zerr.With(err, "package", node.Name().String())
	}

	for _, phase := range node.Spec.Phases {
		action, run := phase.Effective()
		if !run {
			fmt.Fprintf(logFile, "--- phase %s: skipped\n", phase.Name)
			continue
		}
		fmt.Fprintf(logFile, "--- phase %s\n", phase.Name)

		err := e.invoker.Invoke(ctx, ports.Invocation{
			Action: action,
			Dir:    workDir,
			Env:    env,
			Log:    logFile,
		})
		if err != nil {
			if ctx.Err() != nil {
				cerr := zerr.With(domain.ErrCancelled, "package", node.Name().String())
				return domain.BuildResult{}, zerr.With(cerr, "phase", phase.Name.String())
			}
			perr := zerr.With(zerr.Wrap(domain.ErrPhaseFailed, err.Error()), "package", node.Name().String())
			perr = zerr.With(perr, "phase", phase.Name.String())
			return domain.BuildResult{}, zerr.With(perr, "log", logPath)
		}
	}

	outputHash, err := hashTree(outDir)
	if err != nil {
		return domain.BuildResult{}, err
	}

	e.logger.Info(fmt.Sprintf("built %s -> %s", node.Spec.ID(), outDir))
	return domain.BuildResult{
		Fingerprint: node.Fingerprint,
		OutputPath:  outDir,
		OutputHash:  outputHash,
		LogPath:     logPath,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// shard returns the <fp[:2]>/<fp> layout used for artifact paths, a pure
// function of the fingerprint.
func shard(fp string) string {
	if len(fp) < 2 {
		return fp
	}
	return filepath.Join(fp[:2], fp)
}

// buildEnvironment exposes $out, $src and one variable per input (named
// after the input package) to phase actions, on top of the ambient
// environment. Two inputs whose names sanitize to the same variable would
// silently shadow each other, so the clash is an error.
func buildEnvironment(workDir, outDir string, inputs map[string]domain.BuildResult) ([]string, error) {
	env := os.Environ()
	env = append(env,
		"out="+outDir,
		"src="+filepath.Join(workDir, "src"),
	)

	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	slices.Sort(names)

	bound := make(map[string]string, len(names))
	for _, name := range names {
		key := sanitizeEnvName(name)
		if prev, ok := bound[key]; ok {
			err := zerr.With(domain.ErrConflictingInputs, "binding", key)
			err = zerr.With(err, "input", name)
			return nil, zerr.With(err, "conflicts_with", prev)
		}
		bound[key] = name
		env = append(env, key+"="+inputs[name].OutputPath)
	}
	return env, nil
}

func sanitizeEnvName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// hashTree hashes every file under root in lexical walk order.
func hashTree(root string) (string, error) {
	h := xxhash.New()

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		_, _ = h.WriteString(rel)
		_, _ = h.Write([]byte{0})

		f, err := os.Open(path) //nolint:gosec // path comes from the walk
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // best effort close in defer
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		_, _ = h.Write([]byte{0})
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", zerr.Wrap(err, "failed to hash build output")
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}
