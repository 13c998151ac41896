package config

// Specfile represents the structure of a specification YAML file.
type Specfile struct {
	Version string    `yaml:"version"`
	Specs   []SpecDTO `yaml:"specs"`
}

// SpecDTO represents one package specification entry.
type SpecDTO struct {
	Name        string     `yaml:"name"`
	Version     string     `yaml:"version"`
	Source      SourceDTO  `yaml:"source"`
	Inputs      []InputDTO `yaml:"inputs"`
	Phases      []PhaseDTO `yaml:"phases"`
	License     string     `yaml:"license"`
	Description string     `yaml:"description"`
}

// SourceDTO describes the source fetch location.
type SourceDTO struct {
	Method   string `yaml:"method"`
	Location string `yaml:"location"`
	Revision string `yaml:"revision"`
	Checksum string `yaml:"checksum"`
}

// InputDTO is one declared input reference.
type InputDTO struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// PhaseDTO is one build phase, optionally overridden.
type PhaseDTO struct {
	Name     string `yaml:"name"`
	Action   string `yaml:"action"`
	Override string `yaml:"override"`
	With     string `yaml:"with"`
}
