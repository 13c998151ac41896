// Package config provides the YAML specification loader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.SpecLoader for YAML spec files.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads specifications from a file, or from every *.yaml/*.yml file in
// a directory. Directory entries are loaded concurrently; the merged result
// is ordered by file name and then by position in the file, so loading is
// deterministic.
func (l *Loader) Load(path string) ([]*domain.Specification, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to stat spec path")
	}
	if !info.IsDir() {
		return l.loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read spec directory")
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	slices.Sort(files)

	// Each goroutine writes its own slot; the merge below restores file order.
	perFile := make([][]*domain.Specification, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		g.Go(func() error {
			specs, err := l.loadFile(file)
			if err != nil {
				return err
			}
			perFile[i] = specs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*domain.Specification
	for _, specs := range perFile {
		all = append(all, specs...)
	}
	l.logger.Info(fmt.Sprintf("loaded %d specifications from %s", len(all), path))
	return all, nil
}

func (l *Loader) loadFile(path string) ([]*domain.Specification, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read spec file")
	}

	var specfile Specfile
	if err := yaml.Unmarshal(data, &specfile); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse spec file"), "file", path)
	}

	specs := make([]*domain.Specification, 0, len(specfile.Specs))
	for _, dto := range specfile.Specs {
		spec, err := toDomain(dto)
		if err != nil {
			return nil, zerr.With(err, "file", path)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// toDomain validates one entry and converts it. Malformed entries fail the
// whole load.
func toDomain(dto SpecDTO) (*domain.Specification, error) {
	if dto.Name == "" {
		return nil, invalid("name", "must not be empty", dto)
	}
	if dto.Version == "" {
		return nil, invalid("version", "must not be empty", dto)
	}

	switch dto.Source.Method {
	case "url", "git":
	case "":
		return nil, invalid("source.method", "must not be empty", dto)
	default:
		return nil, invalid("source.method", "must be url or git", dto)
	}
	if dto.Source.Location == "" {
		return nil, invalid("source.location", "must not be empty", dto)
	}
	if dto.Source.Method == "git" && dto.Source.Revision == "" {
		return nil, invalid("source.revision", "required for git sources", dto)
	}
	if dto.Source.Method == "url" && dto.Source.Checksum == "" {
		return nil, invalid("source.checksum", "required for url sources", dto)
	}

	inputs := make([]domain.InputRef, 0, len(dto.Inputs))
	for _, in := range dto.Inputs {
		if in.Name == "" {
			return nil, invalid("inputs.name", "must not be empty", dto)
		}
		kind := domain.InputKind(in.Kind)
		if in.Kind == "" {
			kind = domain.KindRegular
		}
		if !kind.Valid() {
			return nil, invalid("inputs.kind", "must be regular, native or propagated", dto)
		}
		inputs = append(inputs, domain.InputRef{
			Name: domain.NewInternedString(in.Name),
			Kind: kind,
		})
	}

	phases := make([]domain.Phase, 0, len(dto.Phases))
	for _, p := range dto.Phases {
		if p.Name == "" {
			return nil, invalid("phases.name", "must not be empty", dto)
		}
		override := domain.OverrideKind(p.Override)
		switch override {
		case domain.OverrideNone:
			if p.Action == "" {
				return nil, invalid("phases.action", "must not be empty without an override", dto)
			}
		case domain.OverrideSkip:
		case domain.OverrideReplace:
			if p.With == "" {
				return nil, invalid("phases.with", "required for replace overrides", dto)
			}
		default:
			return nil, invalid("phases.override", "must be skip or replace", dto)
		}
		phases = append(phases, domain.Phase{
			Name:     domain.NewInternedString(p.Name),
			Action:   p.Action,
			Override: override,
			With:     p.With,
		})
	}

	return &domain.Specification{
		Name:    domain.NewInternedString(dto.Name),
		Version: domain.NewInternedString(dto.Version),
		Source: domain.SourceDescriptor{
			Method:   dto.Source.Method,
			Location: dto.Source.Location,
			Revision: dto.Source.Revision,
			Checksum: dto.Source.Checksum,
		},
		Inputs:      inputs,
		Phases:      phases,
		License:     dto.License,
		Description: dto.Description,
	}, nil
}

func invalid(field, reason string, dto SpecDTO) error {
	err := zerr.With(domain.ErrInvalidSpecification, "field", field)
	err = zerr.With(err, "reason", reason)
	if dto.Name != "" {
		err = zerr.With(err, "package", dto.Name)
	}
	return err
}
