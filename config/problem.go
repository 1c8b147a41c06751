// Package config loads routing problems from YAML files.
//
// A problem file describes the fleet, the cost source (a node matrix or
// coordinates plus a metric), dimensions, disjunctions and the search block:
//
//	name: depot-demo
//	vehicles: 2
//	depot: 0
//	coordinates: [[0, 0], [-1, 0], [-1, 2], [2, 1], [1, 0]]
//	metric: manhattan
//	dimensions:
//	  - name: load
//	    demands: [0, 6, 6, 0, 0]
//	    capacity: 10
//	    fix_start: true
//	disjunctions:
//	  - nodes: [4]
//	    penalty: 100
//	search:
//	  first_solution: path_cheapest_arc
//	  metaheuristic: greedy_descent
//	  time_limit: 2s
//
// Parse validates the document shape; Build turns it into an IndexManager,
// a Model and SearchParameters.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProblem is returned for structurally invalid problem files.
var ErrInvalidProblem = errors.New("config: invalid problem")

// Metric names accepted in Problem.Metric.
const (
	MetricManhattan = "manhattan"
	MetricEuclidean = "euclidean"
)

// Problem is the YAML document of one routing instance.
type Problem struct {
	Name     string `yaml:"name"`
	Vehicles int    `yaml:"vehicles"`
	// Depot is used when Starts/Ends are omitted.
	Depot  int   `yaml:"depot"`
	Starts []int `yaml:"starts"`
	Ends   []int `yaml:"ends"`

	// Exactly one cost source: Matrix, or Coordinates with Metric.
	Matrix      [][]int64    `yaml:"matrix"`
	Coordinates [][2]float64 `yaml:"coordinates"`
	Metric      string       `yaml:"metric"`
	// Scale multiplies metric distances before rounding; 0 means 1.
	Scale float64 `yaml:"scale"`

	FixedCost          int64   `yaml:"fixed_cost"`
	VehicleFixedCosts  []int64 `yaml:"vehicle_fixed_costs"`
	ConsiderEmptyCosts []int   `yaml:"consider_empty_costs"`

	Dimensions   []Dimension   `yaml:"dimensions"`
	Disjunctions []Disjunction `yaml:"disjunctions"`
	Search       Search        `yaml:"search"`
}

// Dimension describes one accumulated quantity. Exactly one transit source
// is set: Demands (per node), Matrix (per node pair) or Constant.
type Dimension struct {
	Name       string    `yaml:"name"`
	Demands    []int64   `yaml:"demands"`
	Matrix     [][]int64 `yaml:"matrix"`
	Constant   *int64    `yaml:"constant"`
	Slack      int64     `yaml:"slack"`
	Capacity   int64     `yaml:"capacity"`
	Capacities []int64   `yaml:"capacities"`
	FixStart   bool      `yaml:"fix_start"`
	SpanCost   int64     `yaml:"span_cost"`
	Windows    []Window  `yaml:"windows"`
}

// Window restricts the cumul of a node to [Min, Max].
type Window struct {
	Node int   `yaml:"node"`
	Min  int64 `yaml:"min"`
	Max  int64 `yaml:"max"`
}

// Disjunction lists alternative nodes; a nil Penalty makes it mandatory.
type Disjunction struct {
	Nodes   []int  `yaml:"nodes"`
	Penalty *int64 `yaml:"penalty"`
}

// Search mirrors routing.SearchParameters with text values.
type Search struct {
	FirstSolution  string   `yaml:"first_solution"`
	Metaheuristic  string   `yaml:"metaheuristic"`
	TimeLimit      string   `yaml:"time_limit"`
	SolutionLimit  int64    `yaml:"solution_limit"`
	IterationLimit int64    `yaml:"iteration_limit"`
	Seed           int64    `yaml:"seed"`
	Temperature    float64  `yaml:"temperature"`
	Cooling        float64  `yaml:"cooling"`
	Disabled       []string `yaml:"disabled_operators"`
	LogSearch      bool     `yaml:"log_search"`
}

// Load reads and parses the problem file at path.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML problem and validates its shape.
func Parse(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Nodes returns the number of nodes implied by the cost source.
func (p *Problem) Nodes() int {
	if len(p.Matrix) > 0 {
		return len(p.Matrix)
	}
	return len(p.Coordinates)
}

// Validate checks everything that does not need the routing package.
func (p *Problem) Validate() error {
	if p.Vehicles <= 0 {
		return fmt.Errorf("%w: vehicles must be positive, got %d", ErrInvalidProblem, p.Vehicles)
	}
	switch {
	case len(p.Matrix) > 0 && len(p.Coordinates) > 0:
		return fmt.Errorf("%w: matrix and coordinates are exclusive", ErrInvalidProblem)
	case len(p.Matrix) == 0 && len(p.Coordinates) == 0:
		return fmt.Errorf("%w: one of matrix or coordinates is required", ErrInvalidProblem)
	}
	n := p.Nodes()
	if err := checkSquare("matrix", p.Matrix, n); err != nil {
		return err
	}
	if len(p.Coordinates) > 0 {
		switch p.Metric {
		case MetricManhattan, MetricEuclidean:
		default:
			return fmt.Errorf("%w: unknown metric %q", ErrInvalidProblem, p.Metric)
		}
	}
	if p.Scale < 0 {
		return fmt.Errorf("%w: negative scale", ErrInvalidProblem)
	}
	if (p.Starts == nil) != (p.Ends == nil) {
		return fmt.Errorf("%w: starts and ends must be given together", ErrInvalidProblem)
	}
	if p.VehicleFixedCosts != nil && len(p.VehicleFixedCosts) != p.Vehicles {
		return fmt.Errorf("%w: %d vehicle fixed costs for %d vehicles",
			ErrInvalidProblem, len(p.VehicleFixedCosts), p.Vehicles)
	}

	seen := make(map[string]struct{}, len(p.Dimensions))
	for _, d := range p.Dimensions {
		if d.Name == "" {
			return fmt.Errorf("%w: dimension without a name", ErrInvalidProblem)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: duplicate dimension %q", ErrInvalidProblem, d.Name)
		}
		seen[d.Name] = struct{}{}

		sources := 0
		if d.Demands != nil {
			sources++
			if len(d.Demands) != n {
				return fmt.Errorf("%w: dimension %q has %d demands for %d nodes",
					ErrInvalidProblem, d.Name, len(d.Demands), n)
			}
		}
		if d.Matrix != nil {
			sources++
			if err := checkSquare("dimension "+d.Name, d.Matrix, n); err != nil {
				return err
			}
		}
		if d.Constant != nil {
			sources++
		}
		if sources != 1 {
			return fmt.Errorf("%w: dimension %q needs exactly one of demands, matrix, constant",
				ErrInvalidProblem, d.Name)
		}
		if d.Capacities != nil && len(d.Capacities) != p.Vehicles {
			return fmt.Errorf("%w: dimension %q has %d capacities for %d vehicles",
				ErrInvalidProblem, d.Name, len(d.Capacities), p.Vehicles)
		}
	}
	for k, dj := range p.Disjunctions {
		if len(dj.Nodes) == 0 {
			return fmt.Errorf("%w: disjunction %d is empty", ErrInvalidProblem, k)
		}
	}
	return nil
}

func checkSquare(what string, m [][]int64, n int) error {
	if m == nil {
		return nil
	}
	if len(m) != n {
		return fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalidProblem, what, len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: %s row %d has %d columns, want %d", ErrInvalidProblem, what, i, len(row), n)
		}
	}
	return nil
}
