package main

import (
	"math"

	"github.com/pelletier/go-toml"
)

var config *toml.Tree

// loadConfig loads the lvsc configuration file, if one was given; a
// missing config is not an error, every setting has a default.
func loadConfig(file string) error {
	if file == "" {
		return nil
	}
	t, err := toml.LoadFile(file)
	if err != nil {
		return err
	}
	config = t
	return nil
}

func configStringDefault(key, def string) string {
	if config == nil {
		return def
	}
	v := config.Get(key)
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func configIntDefault(key string, def int) int {
	if config == nil {
		return def
	}
	v := config.Get(key)
	if v == nil {
		return def
	}
	if n, ok := v.(int64); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
		return int(n)
	}
	return def
}

func configBoolDefault(key string, def bool) bool {
	if config == nil {
		return def
	}
	v := config.Get(key)
	if v == nil {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}
