// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package definitions loads formula.Definition sets from YAML files on
// disk, for hosts (the CLI, the MCP server) that keep their formulas in
// version-controlled files rather than constructing them in code.
package definitions

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	pkgerrors "github.com/tombee/formulae/pkg/errors"
	"github.com/tombee/formulae/pkg/formula"
)

// fileDefinition is the on-disk YAML shape of one formula definition.
type fileDefinition struct {
	Identifier            string `yaml:"identifier"`
	DataType              string `yaml:"type"`
	Expression            string `yaml:"expression"`
	IgnoreRoundingOptions bool   `yaml:"ignore_rounding,omitempty"`
}

// fileDocument is the top-level shape of one definitions YAML file.
type fileDocument struct {
	Formulas []fileDefinition `yaml:"formulas"`
}

// Loader reads formula.Definition sets from a set of YAML files matched by
// a doublestar glob pattern (e.g. "definitions/**/*.yaml").
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load resolves pattern against the working directory and parses every
// matching file into formula.Definitions. FormulaID is derived as a SHA-256
// digest of the identifier, declared type, and expression text, so any
// change to a formula's source invalidates cached Evaluators keyed on it.
func (l *Loader) Load(pattern string) ([]formula.Definition, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, &pkgerrors.ConfigError{Key: "definitions", Reason: "invalid glob pattern", Cause: err}
	}

	if len(matches) == 0 {
		return nil, &pkgerrors.NotFoundError{Resource: "formula definitions", ID: pattern}
	}

	var defs []formula.Definition
	seen := make(map[string]string)

	for _, path := range matches {
		fileDefs, err := l.loadFile(path)
		if err != nil {
			return nil, err
		}
		for _, d := range fileDefs {
			if origin, ok := seen[d.Identifier]; ok {
				return nil, &pkgerrors.ConfigError{
					Key:    d.Identifier,
					Reason: fmt.Sprintf("defined in both %s and %s", origin, path),
				}
			}
			seen[d.Identifier] = path
			defs = append(defs, d)
		}
		l.logger.Debug("loaded formula definitions", "path", path, "count", len(fileDefs))
	}

	return defs, nil
}

func (l *Loader) loadFile(path string) ([]formula.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pkgerrors.ConfigError{Key: path, Reason: "could not read file", Cause: err}
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &pkgerrors.ConfigError{Key: path, Reason: "invalid YAML", Cause: err}
	}

	defs := make([]formula.Definition, 0, len(doc.Formulas))
	for _, fd := range doc.Formulas {
		if fd.Identifier == "" {
			return nil, &pkgerrors.ValidationError{Field: "identifier", Message: fmt.Sprintf("missing identifier in %s", path)}
		}
		if fd.Expression == "" {
			return nil, &pkgerrors.ValidationError{Field: "expression", Message: fmt.Sprintf("formula %q in %s has no expression", fd.Identifier, path)}
		}

		dataType, err := parseType(fd.DataType)
		if err != nil {
			return nil, &pkgerrors.ValidationError{
				Field:   "type",
				Message: fmt.Sprintf("formula %q in %s: %s", fd.Identifier, path, err),
			}
		}

		defs = append(defs, formula.Definition{
			Identifier:            fd.Identifier,
			DataType:              dataType,
			Expression:            fd.Expression,
			IgnoreRoundingOptions: fd.IgnoreRoundingOptions,
			FormulaID:             digestDefinition(fd),
		})
	}

	return defs, nil
}

func parseType(s string) (formula.Type, error) {
	switch s {
	case "", "any":
		return formula.TypeAny, nil
	case "bool":
		return formula.TypeBool, nil
	case "int":
		return formula.TypeInt, nil
	case "float":
		return formula.TypeFloat, nil
	case "decimal":
		return formula.TypeDecimal, nil
	case "string":
		return formula.TypeString, nil
	case "time":
		return formula.TypeTime, nil
	default:
		return formula.TypeUnknown, fmt.Errorf("unknown type %q", s)
	}
}

func digestDefinition(fd fileDefinition) string {
	h := sha256.New()
	h.Write([]byte(fd.Identifier))
	h.Write([]byte{0})
	h.Write([]byte(fd.DataType))
	h.Write([]byte{0})
	h.Write([]byte(fd.Expression))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
