// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogama/retryx/backoff"
)

// Backoff strategy names accepted in Config.
const (
	FixedName             = "fixed"
	NoWaitName            = "no_wait"
	ExponentialName       = "exponential"
	FibonacciName         = "fibonacci"
	RandomName            = "random"
	RandomExponentialName = "random_exponential"
)

// Error matching mode names accepted in Config.
const (
	AnyErrorName       = "any"
	NoErrorName        = "none"
	TransientErrorName = "transient"
)

// A Config is a declarative description of a Policy, suitable for
// loading from a configuration file. Unset fields contribute no option,
// so the rules enforced by New apply unchanged: for example a Config
// without Backoff is rejected with ErrNoBackoff.
//
// Error types cannot be named in a file, so Config only supports the
// "any", "none" and "transient" error matching modes. Pass
// RetryOnErrors or similar options to Config.Policy for finer matching.
//
// An example YAML document:
//
//	max_attempts: 4
//	delay: 250ms
//	backoff: random_exponential
//	max_multiplier: 5
//	errors: any
type Config struct {
	MaxAttempts   int            `yaml:"max_attempts,omitempty"`
	Indefinitely  bool           `yaml:"indefinitely,omitempty"`
	Delay         *time.Duration `yaml:"delay,omitempty"`
	Backoff       string         `yaml:"backoff,omitempty"`
	MaxMultiplier *int           `yaml:"max_multiplier,omitempty"`
	Errors        string         `yaml:"errors,omitempty"`
	CausedBy      bool           `yaml:"caused_by,omitempty"`
}

// ParseConfig decodes a YAML Config from r. Unknown fields are an
// error. An empty document yields the zero Config.
func ParseConfig(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("retryx/policy: parse config: %w", err)
	}
	return &c, nil
}

// Options converts c into the equivalent list of options.
func (c *Config) Options() ([]Option, error) {
	var opts []Option
	if c.MaxAttempts != 0 {
		opts = append(opts, MaxAttempts(c.MaxAttempts))
	}
	if c.Indefinitely {
		opts = append(opts, Indefinitely())
	}
	if c.Delay != nil {
		opts = append(opts, Delay(*c.Delay))
	}
	if c.Backoff != "" {
		s, err := c.strategy()
		if err != nil {
			return nil, err
		}
		opts = append(opts, Backoff(s))
	}
	switch c.Errors {
	case "":
	case AnyErrorName:
		opts = append(opts, RetryOnAnyError())
	case NoErrorName:
		opts = append(opts, FailOnAnyError())
	case TransientErrorName:
		opts = append(opts, RetryOnTransientErrors())
	default:
		return nil, &ConfigError{Rule: ErrUnknownErrorMode}
	}
	if c.CausedBy {
		opts = append(opts, CausedBy())
	}
	return opts, nil
}

// Policy builds a Policy from c followed by extra options.
func (c *Config) Policy(extra ...Option) (*Policy, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...)
}

func (c *Config) strategy() (backoff.Strategy, error) {
	m := backoff.DefaultMaxMultiplier
	if c.MaxMultiplier != nil {
		m = *c.MaxMultiplier
		if m < 0 {
			return nil, &ConfigError{Rule: ErrBadMultiplier}
		}
	}
	switch c.Backoff {
	case FixedName:
		return backoff.Fixed, nil
	case NoWaitName:
		return backoff.NoWait, nil
	case ExponentialName:
		return backoff.Exponential, nil
	case FibonacciName:
		return backoff.Fibonacci, nil
	case RandomName:
		return backoff.Random(m), nil
	case RandomExponentialName:
		return backoff.RandomExponential(m), nil
	default:
		return nil, &ConfigError{Rule: ErrUnknownBackoff}
	}
}
