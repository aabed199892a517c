package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/coresim/sim"
	"github.com/inference-sim/coresim/sim/sweep"
)

// readInput returns the contents of path, or all of stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// decodeStrict decodes one YAML (or JSON) document into out. Unknown keys are
// errors so that typos do not silently fall back to zero values.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}

// yamlKeys lists the yaml keys of a struct type's fields.
func yamlKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}

// missingKeys returns the required keys absent from the document's top-level mapping.
func missingKeys(data []byte, required []string) ([]string, error) {
	var present map[string]any
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, err
	}
	var missing []string
	for _, k := range required {
		if _, ok := present[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// parseConfig decodes and validates a parameter record. Every field is required.
func parseConfig(data []byte) (sim.Config, error) {
	var cfg sim.Config
	if err := decodeStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	missing, err := missingKeys(data, yamlKeys(reflect.TypeOf(cfg)))
	if err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("config is missing fields: %s", strings.Join(missing, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadConfig(path string, stdin io.Reader) (sim.Config, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return sim.Config{}, err
	}
	return parseConfig(data)
}

// defaultConfidence applies when a sweep file leaves confidence out.
const defaultConfidence = 0.95

// parseSweepSpec decodes a sweep description. param, from, to, step and
// replications are required; the rest have defaults.
func parseSweepSpec(data []byte) (sweep.Spec, error) {
	var spec sweep.Spec
	if err := decodeStrict(data, &spec); err != nil {
		return spec, fmt.Errorf("parsing sweep: %w", err)
	}
	missing, err := missingKeys(data, []string{"param", "from", "to", "step", "replications"})
	if err != nil {
		return spec, fmt.Errorf("parsing sweep: %w", err)
	}
	if len(missing) > 0 {
		return spec, fmt.Errorf("sweep is missing fields: %s", strings.Join(missing, ", "))
	}
	if spec.Confidence == 0 {
		spec.Confidence = defaultConfidence
	}
	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("invalid sweep: %w", err)
	}
	return spec, nil
}

func loadSweepSpec(path string, stdin io.Reader) (sweep.Spec, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return sweep.Spec{}, err
	}
	return parseSweepSpec(data)
}
