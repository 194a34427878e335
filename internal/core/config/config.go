// Package config loads engine settings and per-ability tuning from YAML,
// validates the document against an embedded JSON schema and applies
// environment overrides.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
)

//go:embed schema.json
var schemaSource string

const schemaURL = "mem://bending/config.schema.json"

var schema = jsonschema.MustCompileString(schemaURL, schemaSource)

type Engine struct {
	TickRate      int           `json:"tick_rate_hz" yaml:"tick_rate_hz" env:"BENDING_TICK_RATE_HZ"`
	LogLevel      string        `json:"log_level" yaml:"log_level" env:"BENDING_LOG_LEVEL"`
	FeedAddr      string        `json:"feed_addr,omitempty" yaml:"feed_addr,omitempty" env:"BENDING_FEED_ADDR"`
	FeedToken     string        `json:"feed_token,omitempty" yaml:"feed_token,omitempty" env:"BENDING_FEED_TOKEN"`
	MaxTickBudget time.Duration `json:"max_tick_budget,omitempty" yaml:"max_tick_budget,omitempty" env:"BENDING_MAX_TICK_BUDGET"`
	Worlds        []string      `json:"worlds,omitempty" yaml:"worlds,omitempty"`
}

type Config struct {
	Engine    Engine            `json:"engine" yaml:"engine"`
	Defaults  Tuning            `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Abilities map[string]Tuning `json:"abilities,omitempty" yaml:"abilities,omitempty"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: Engine{
			TickRate:      20,
			LogLevel:      "info",
			MaxTickBudget: 50 * time.Millisecond,
		},
		Defaults: Tuning{
			Cooldown: time.Second,
			Duration: 5 * time.Second,
			Range:    20,
			Speed:    1,
		},
	}
}

// Load reads path, or only applies environment overrides to Default when
// path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return Config{}, err
		}
		return cfg, cfg.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a YAML document on top of Default, then applies the
// environment.
func Parse(r io.Reader) (Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err = validateDocument(raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err = yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err = cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// validateDocument checks the raw YAML against the schema. The validator
// expects JSON values, so the document takes a trip through encoding/json.
func validateDocument(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc == nil {
		return nil
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	var value any
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	if err = dec.Decode(&value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err = schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if err := env.Parse(&c.Engine); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the constraints the schema cannot express.
func (c Config) Validate() error {
	if c.Engine.TickRate <= 0 || c.Engine.TickRate > 1000 {
		return fmt.Errorf("%w: tick rate %d out of range", ErrInvalidConfig, c.Engine.TickRate)
	}
	if _, err := log.ParseLevel(c.Engine.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Engine.MaxTickBudget < 0 {
		return fmt.Errorf("%w: negative tick budget", ErrInvalidConfig)
	}
	for name, t := range c.Abilities {
		if t.Cap < 0 || t.Cooldown < 0 || t.Duration < 0 {
			return fmt.Errorf("%w: ability %q has negative tuning", ErrInvalidConfig, name)
		}
	}
	return nil
}

// TickInterval is the wall time between ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Engine.TickRate)
}

func (c Config) Level() log.Level {
	level, _ := log.ParseLevel(c.Engine.LogLevel)
	return level
}

// Tuning returns the tuning of desc, falling back to Defaults for every
// field the ability section leaves unset.
func (c Config) Tuning(desc *models.Description) Tuning {
	t, ok := c.Abilities[desc.Key()]
	if !ok {
		for name, v := range c.Abilities {
			if strings.EqualFold(name, desc.Key()) {
				t, ok = v, true
				break
			}
		}
	}
	if !ok {
		return c.Defaults.Clone()
	}
	return merge(c.Defaults, t).Clone()
}

func merge(base, over Tuning) Tuning {
	out := base
	if over.Cooldown != 0 {
		out.Cooldown = over.Cooldown
	}
	if over.Duration != 0 {
		out.Duration = over.Duration
	}
	if over.Range != 0 {
		out.Range = over.Range
	}
	if over.Speed != 0 {
		out.Speed = over.Speed
	}
	if over.SelectRange != 0 {
		out.SelectRange = over.SelectRange
	}
	if over.Cap != 0 {
		out.Cap = over.Cap
	}
	if len(base.Params) > 0 || len(over.Params) > 0 {
		out.Params = make(map[string]float64, len(base.Params)+len(over.Params))
		for k, v := range base.Params {
			out.Params[k] = v
		}
		for k, v := range over.Params {
			out.Params[k] = v
		}
	}
	return out
}
