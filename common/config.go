// /home/krylon/go/src/github.com/blicero/hermes/common/config.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-14 19:02:51 krylon>

package common

import (
	"fmt"

	"github.com/blicero/krylib"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the few settings the user may want to tweak without
// touching the command line. It is read from an optional TOML file
// inside the base directory; missing file just means defaults.
type Config struct {
	Port     int    `koanf:"port"`
	LogLevel string `koanf:"loglevel"`
}

// LoadConfig reads the application's config file, if it exists, and
// returns the resulting Config. A missing file is not an error.
func LoadConfig() (*Config, error) {
	var (
		err error
		ex  bool
		cfg = &Config{
			Port:     DefaultPort,
			LogLevel: string(MinLogLevel),
		}
	)

	if ex, err = krylib.Fexists(ConfPath); err != nil {
		return nil, fmt.Errorf("Cannot check for config file %s: %s",
			ConfPath,
			err.Error())
	} else if !ex {
		return cfg, nil
	}

	var k = koanf.New(".")

	if err = k.Load(file.Provider(ConfPath), toml.Parser()); err != nil {
		return nil, fmt.Errorf("Cannot load config file %s: %s",
			ConfPath,
			err.Error())
	} else if err = k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("Cannot process config file %s: %s",
			ConfPath,
			err.Error())
	}

	return cfg, nil
} // func LoadConfig() (*Config, error)
