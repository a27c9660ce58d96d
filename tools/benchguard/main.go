// Command benchguard runs the codec benchmarks and fails when a median
// exceeds its configured ceiling.
//
// Usage:
//
//	go run ./tools/benchguard [-config tools/bench_guardrails.json] [-suite root]
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// limit bounds one benchmark. A zero field is not checked.
type limit struct {
	MaxNsOp     float64 `json:"max_ns_op"`
	MaxBOp      float64 `json:"max_b_op"`
	MaxAllocsOp float64 `json:"max_allocs_op"`
}

// suite is one go test -bench invocation.
type suite struct {
	Name       string           `json:"name"`
	Package    string           `json:"package"`
	BenchRegex string           `json:"bench_regex"`
	Count      int              `json:"count"`
	Benchtime  string           `json:"benchtime"`
	Limits     map[string]limit `json:"limits"`
}

type config struct {
	Suites []suite `json:"suites"`
}

type sample struct {
	NsOp, BOp, AllocsOp float64
}

func main() {
	cfgPath := flag.String("config", "tools/bench_guardrails.json", "Path to the guardrails config")
	only := flag.String("suite", "", "Run only the named suite")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("benchguard: load config: %v", err)
	}

	var violations []string
	ran := 0
	for _, s := range cfg.Suites {
		if *only != "" && s.Name != *only {
			continue
		}
		out, err := runBench(s)
		if err != nil {
			log.Fatalf("benchguard: suite %s: %v", s.Name, err)
		}
		samples, err := parseOutput(out)
		if err != nil {
			log.Fatalf("benchguard: suite %s: %v", s.Name, err)
		}
		violations = append(violations, evaluate(s, samples, os.Stdout)...)
		ran++
	}
	if ran == 0 {
		log.Fatalf("benchguard: no suite named %q", *only)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
	fmt.Println("benchguard: all benchmarks within limits")
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Suites) == 0 {
		return nil, errors.New("no suites")
	}
	for i := range cfg.Suites {
		if err := cfg.Suites[i].validate(); err != nil {
			return nil, fmt.Errorf("suite %d: %w", i, err)
		}
	}
	return &cfg, nil
}

func (s *suite) validate() error {
	switch {
	case s.Name == "":
		return errors.New("name must be set")
	case s.Package == "":
		return errors.New("package must be set")
	case len(s.Limits) == 0:
		return errors.New("limits must be non-empty")
	}
	if s.BenchRegex == "" {
		s.BenchRegex = "."
	}
	if s.Count <= 0 {
		s.Count = 5
	}
	if s.Benchtime == "" {
		s.Benchtime = "1s"
	}
	return nil
}

func runBench(s suite) ([]byte, error) {
	cmd := exec.Command("go", "test",
		"-run", "^$",
		"-bench", s.BenchRegex,
		"-benchmem",
		"-count", strconv.Itoa(s.Count),
		"-benchtime", s.Benchtime,
		"-cpu", "1",
		s.Package,
	)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	fmt.Print(buf.String())
	return buf.Bytes(), err
}

var benchLine = regexp.MustCompile(`^(Benchmark\S+?)(?:-\d+)?\s+\d+\s+([0-9.eE+\-]+) ns/op\s+([0-9.eE+\-]+) B/op\s+([0-9.eE+\-]+) allocs/op`)

// parseOutput collects the rows of benchmarks run with -benchmem, keyed by
// name without the GOMAXPROCS suffix.
func parseOutput(out []byte) (map[string][]sample, error) {
	result := make(map[string][]sample)
	for line := range strings.SplitSeq(string(out), "\n") {
		m := benchLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		var v [3]float64
		for i := range v {
			f, err := strconv.ParseFloat(m[i+2], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m[1], err)
			}
			v[i] = f
		}
		result[m[1]] = append(result[m[1]], sample{NsOp: v[0], BOp: v[1], AllocsOp: v[2]})
	}
	if len(result) == 0 {
		return nil, errors.New("no benchmark rows in output")
	}
	return result, nil
}

// evaluate reports the medians to w and returns one message per exceeded
// limit.
func evaluate(s suite, samples map[string][]sample, w io.Writer) []string {
	var violations []string
	names := make([]string, 0, len(s.Limits))
	for name := range s.Limits {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		lim := s.Limits[name]
		rows := samples[name]
		if len(rows) == 0 {
			violations = append(violations, fmt.Sprintf("benchguard: %s: %s missing from output", s.Name, name))
			continue
		}
		got := sample{
			NsOp:     median(rows, func(r sample) float64 { return r.NsOp }),
			BOp:      median(rows, func(r sample) float64 { return r.BOp }),
			AllocsOp: median(rows, func(r sample) float64 { return r.AllocsOp }),
		}
		if w != nil {
			fmt.Fprintf(w, "benchguard: %-24s %10.0f ns/op %8.0f B/op %6.0f allocs/op\n", name, got.NsOp, got.BOp, got.AllocsOp)
		}
		check := func(what string, v, max float64) {
			if max > 0 && v > max {
				violations = append(violations, fmt.Sprintf("benchguard: %s: %s %s %.1f exceeds %.1f", s.Name, name, what, v, max))
			}
		}
		check("ns/op", got.NsOp, lim.MaxNsOp)
		check("B/op", got.BOp, lim.MaxBOp)
		check("allocs/op", got.AllocsOp, lim.MaxAllocsOp)
	}
	return violations
}

func median(rows []sample, field func(sample) float64) float64 {
	v := make([]float64, len(rows))
	for i, r := range rows {
		v[i] = field(r)
	}
	slices.Sort(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
