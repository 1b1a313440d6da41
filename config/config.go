package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coremetrics "github.com/acdcgrid/ghds/core/metrics"
	"github.com/acdcgrid/ghds/infra/mqtt"
	"github.com/acdcgrid/ghds/infra/nyiso"
	"github.com/acdcgrid/ghds/infra/solver"
)

// Config is the full pipeline configuration. Everything the original
// workflow hard-coded (capacities, entity identifiers, branch ratings,
// calibration constants) lives here and is validated on load.
type Config struct {
	Areas      AreasConfig        `json:"areas"`
	Generators []GeneratorConfig  `json:"generators"`
	Probe      ProbeConfig        `json:"probe"`
	Interface  InterfaceConfig    `json:"interface"`
	Grid       GridConfig         `json:"grid"`
	Mapping    MappingConfig      `json:"mapping"`
	Solver     solver.Config      `json:"solver"`
	NYISO      nyiso.Config       `json:"nyiso"`
	Metrics    coremetrics.Config `json:"metrics"`
	MQTT       mqtt.Config        `json:"mqtt"`
	Export     ExportConfig       `json:"export"`
}

// Load reads the configuration file (yaml or json by extension) and applies
// GHDS_ environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The callback emits dot-separated keys,
	// so the provider delimiter must match it for the unflatten step.
	if err := k.Load(env.Provider("GHDS_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ghds_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.NYISO.SetDefaults()
	cfg.Solver.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Probe.SetDefaults()
	cfg.Export.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration section by section.
func (c Config) Validate() error {
	if err := c.Areas.Validate(); err != nil {
		return fmt.Errorf("areas: %w", err)
	}
	if err := c.validateGenerators(); err != nil {
		return fmt.Errorf("generators: %w", err)
	}
	if err := c.Probe.Validate(); err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	if err := c.Interface.Validate(); err != nil {
		return fmt.Errorf("interface: %w", err)
	}
	if err := c.Grid.Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}

func (c Config) validateGenerators() error {
	if len(c.Generators) == 0 {
		return fmt.Errorf("at least one generator is required")
	}
	residuals := 0
	for _, g := range c.Generators {
		if err := g.Validate(); err != nil {
			return err
		}
		if g.Area != c.Areas.PeakAnchored.Name && g.Area != c.Areas.Quadratic.Name {
			return fmt.Errorf("generator %s references unknown area %s", g.ID, g.Area)
		}
		if g.Residual {
			residuals++
		}
	}
	if residuals != 1 {
		return fmt.Errorf("exactly one residual generator is required, found %d", residuals)
	}
	return nil
}
