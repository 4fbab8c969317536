// SPDX-License-Identifier: MIT

package dataset

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/saftgamma/groups"
)

// Input is the model and data section of a run file. Other top-level keys
// (fit, history, logging) belong to the CLI configuration and are ignored.
type Input struct {
	Groups     []groups.Group     `yaml:"groups"`
	Cross      []groups.Cross     `yaml:"cross"`
	Bonds      []groups.Bond      `yaml:"bonds"`
	Components []groups.Component `yaml:"components"`
	Datasets   []Raw              `yaml:"datasets"`
}

// Decode reads one YAML document from r.
func Decode(r io.Reader) (Input, error) {
	var in Input
	if err := yaml.NewDecoder(r).Decode(&in); err != nil {
		return Input{}, fmt.Errorf("dataset: decode: %w", err)
	}
	return in, nil
}

// LoadFile decodes the run file at path.
func LoadFile(path string) (Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return Input{}, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	in, err := Decode(f)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Build validates the model and every dataset. Dataset errors are returned
// with the dataset name in the field path.
func (in Input) Build(log *zap.Logger) (*groups.System, []Dataset, error) {
	table, err := groups.NewTable(in.Groups, in.Cross, in.Bonds)
	if err != nil {
		return nil, nil, err
	}
	sys, err := groups.NewSystem(table, in.Components)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool, len(in.Datasets))
	out := make([]Dataset, 0, len(in.Datasets))
	for i, raw := range in.Datasets {
		if raw.Name == "" {
			raw.Name = fmt.Sprintf("dataset%d", i)
		}
		if seen[raw.Name] {
			return nil, nil, fmt.Errorf("dataset %q: duplicate name", raw.Name)
		}
		seen[raw.Name] = true

		d, err := New(raw, sys, log)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, d)
	}
	return sys, out, nil
}
