package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xyproto/env/v2"

	"github.com/lhaig/anfc/internal/compiler"
	"github.com/lhaig/anfc/internal/layout"
)

// config is what one invocation runs with: environment defaults first,
// then flags.
type config struct {
	opts     compiler.Options
	outDir   string
	write    bool
	noColor  bool
	logLevel zerolog.Level
	paths    []string
}

func defaultConfig() (*config, error) {
	// env caches the environment on first read.
	env.Load()
	cfg := &config{opts: compiler.DefaultOptions()}

	policy, err := layout.ParsePolicy(env.Str("ANFC_TAGS", "header"))
	if err != nil {
		return nil, fmt.Errorf("ANFC_TAGS: %w", err)
	}
	cfg.opts.Policy = policy
	cfg.opts.Backend = env.Str("ANFC_BACKEND", "text")
	cfg.opts.Parallelism = env.Int("ANFC_JOBS", 0)
	cfg.noColor = env.Has("NO_COLOR")

	level, err := zerolog.ParseLevel(env.Str("ANFC_LOG_LEVEL", "warn"))
	if err != nil {
		return nil, fmt.Errorf("ANFC_LOG_LEVEL: %w", err)
	}
	cfg.logLevel = level
	return cfg, nil
}

// parseArgs applies flags to cfg. Options take "--name value" or
// "--name=value"; anything not starting with "-" is an input path.
func parseArgs(cfg *config, args []string) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			cfg.paths = append(cfg.paths, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		needValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("option %s needs a value", name)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "--tags":
			v, err := needValue()
			if err != nil {
				return err
			}
			policy, err := layout.ParsePolicy(v)
			if err != nil {
				return err
			}
			cfg.opts.Policy = policy
		case "--backend":
			v, err := needValue()
			if err != nil {
				return err
			}
			cfg.opts.Backend = v
		case "--jobs", "-j":
			v, err := needValue()
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid job count: %s", v)
			}
			cfg.opts.Parallelism = n
		case "--out", "-o":
			v, err := needValue()
			if err != nil {
				return err
			}
			cfg.outDir = v
		case "--no-validate":
			cfg.opts.Validate = false
		case "--write", "-w":
			cfg.write = true
		case "--no-color":
			cfg.noColor = true
		case "--verbose", "-v":
			cfg.logLevel = zerolog.DebugLevel
		default:
			return fmt.Errorf("unknown option: %s", arg)
		}
	}
	return nil
}
