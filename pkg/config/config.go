/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// LoadFile is a generic helper that loads a JSON, YAML or TOML file from path
// into the struct pointed to by dst. The format is picked from the file
// extension; anything unrecognized is treated as JSON.
func LoadFile(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	if err := Decode(formatFor(path), data, dst); err != nil {
		return fmt.Errorf("failed to decode '%s': %w", path, err)
	}

	return nil
}

// Decode decodes data in the given format ("json", "yaml" or "toml") into dst.
//
// YAML and TOML documents are normalized to JSON first so every config type
// only needs its json tags and json.Unmarshaler implementations.
func Decode(format string, data []byte, dst interface{}) error {
	switch format {
	case formatYAML:
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: %w", errInvalidYAML, err)
		}

		return reencode(doc, dst)
	case formatTOML:
		var doc map[string]interface{}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: %w", errInvalidTOML, err)
		}

		return reencode(doc, dst)
	default:
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("%w: %w", errInvalidJSON, err)
		}

		return nil
	}
}

func reencode(doc, dst interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}

	return nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}

	return nil
}

// LoadAndValidate loads a configuration file, applies defaults and validates
// it if the type supports those steps.
func LoadAndValidate(path string, cfg interface{}) error {
	if err := LoadFile(path, cfg); err != nil {
		return err
	}

	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}

	return ValidateConfig(cfg)
}
