package tally

import (
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// SeriesSpec is the external document form of a mapping: a named set of
// series, each an ordered sequence of integer observations.
type SeriesSpec struct {
	Name   string             `yaml:"name"`
	Series map[string][]int64 `yaml:"series"`
}

// Mapping returns the parsed series as a mapping for the accumulator.
func (ss SeriesSpec) Mapping() Mapping {
	return ss.Series
}

func (ss SeriesSpec) ToString() string {
	name := ss.Name
	if name == "" {
		name = "<unnamed>"
	}

	keys := make([]string, 0, len(ss.Series))
	for k := range ss.Series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "spec: %s\n", name)
	fmt.Fprintf(&b, "series: %d\n", len(keys))
	for _, k := range keys {
		fmt.Fprintf(&b, "  - %s: len=%d\n", k, len(ss.Series[k]))
	}
	return strings.TrimRight(b.String(), "\n")
}

// InvalidInputError reports an externally supplied document whose values are
// not finite sequences of integers.
type InvalidInputError struct {
	Key    string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid input for series %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

type Parser interface {
	Parse(from io.Reader, to *SeriesSpec) error
}

// YAMLParser decodes series documents. Stats, when set, counts rejected
// documents.
type YAMLParser struct {
	Stats Stats
}

type rawSeriesSpec struct {
	Name   string         `yaml:"name"`
	Series map[string]any `yaml:"series"`
}

func (p YAMLParser) Parse(from io.Reader, to *SeriesSpec) error {
	var raw rawSeriesSpec
	if err := yaml.NewDecoder(from).Decode(&raw); err != nil {
		log.Printf("error decoding yaml: %v", err)
		p.reject()
		return &InvalidInputError{Reason: err.Error()}
	}

	series := make(map[string][]int64, len(raw.Series))
	for key, value := range raw.Series {
		values, err := toInt64Sequence(value)
		if err != nil {
			log.Printf("error validating series %q: %v", key, err)
			p.reject()
			return &InvalidInputError{Key: key, Reason: err.Error()}
		}
		series[key] = values
	}

	to.Name = raw.Name
	to.Series = series
	return nil
}

func (p YAMLParser) reject() {
	if p.Stats != nil {
		p.Stats.IncParseFailed()
	}
}

func toInt64Sequence(value any) ([]int64, error) {
	if value == nil {
		return []int64{}, nil
	}

	seq, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("value is %T, want a sequence of integers", value)
	}

	values := make([]int64, 0, len(seq))
	for i, elem := range seq {
		switch v := elem.(type) {
		case int:
			values = append(values, int64(v))
		case int64:
			values = append(values, v)
		case uint64:
			if v > math.MaxInt64 {
				return nil, fmt.Errorf("element %d overflows int64", i)
			}
			values = append(values, int64(v))
		default:
			return nil, fmt.Errorf("element %d is %T, want an integer", i, elem)
		}
	}
	return values, nil
}
