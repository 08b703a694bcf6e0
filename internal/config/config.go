// Package config loads the process configuration: server settings and the
// declarative graph definitions (named graphs with their constants).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/duynguyendang/implica/pkg/typing"
)

// ConstantDecl declares one graph constant in the config file.
type ConstantDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// GraphDecl declares one named graph.
type GraphDecl struct {
	Name      string         `yaml:"name"`
	Constants []ConstantDecl `yaml:"constants"`
}

// ServerConfig holds the REST API settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root of the YAML configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Graphs []GraphDecl  `yaml:"graphs"`
}

// Default returns the configuration used when no file is given: one empty
// default graph, server on :8080.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Graphs: []GraphDecl{{Name: "default"}},
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Graphs) == 0 {
		cfg.Graphs = []GraphDecl{{Name: "default"}}
	}
	return cfg, nil
}

// Addr returns the server address, honoring the PORT environment variable
// the way containers expect.
func (c *Config) Addr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return c.Server.Addr
}

// BuildConstants parses a graph declaration's constants.
func (d GraphDecl) BuildConstants() ([]typing.Constant, error) {
	out := make([]typing.Constant, 0, len(d.Constants))
	for _, decl := range d.Constants {
		c, err := typing.NewConstant(decl.Name, decl.Type)
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", d.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}
