package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/katalvlaran/lvroute/routing"
)

// Instance is a ready-to-solve model built from a Problem.
type Instance struct {
	Name    string
	Manager *routing.IndexManager
	Model   *routing.Model
	Params  *routing.SearchParameters
}

// Build creates the index manager, registers costs and dimensions on a new
// model and resolves the search block. opts are passed to routing.NewModel.
func (p *Problem) Build(opts ...routing.Option) (*Instance, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	params, err := p.Search.Parameters()
	if err != nil {
		return nil, err
	}

	n := p.Nodes()
	var manager *routing.IndexManager
	if p.Starts != nil {
		manager, err = routing.NewIndexManagerWithDepots(n, p.Vehicles, p.Starts, p.Ends)
	} else {
		manager, err = routing.NewIndexManager(n, p.Vehicles, p.Depot)
	}
	if err != nil {
		return nil, fmt.Errorf("config: index manager: %w", err)
	}
	model, err := routing.NewModel(manager, opts...)
	if err != nil {
		return nil, err
	}

	cost, err := model.RegisterTransitMatrix(p.costMatrix())
	if err != nil {
		return nil, fmt.Errorf("config: cost matrix: %w", err)
	}
	if err = model.SetArcCostEvaluatorOfAllVehicles(cost); err != nil {
		return nil, err
	}
	if err = p.applyVehicles(model); err != nil {
		return nil, err
	}
	for _, d := range p.Dimensions {
		if err = addDimension(model, d); err != nil {
			return nil, err
		}
	}
	for k, dj := range p.Disjunctions {
		indices, err := visitIndices(manager, dj.Nodes)
		if err != nil {
			return nil, fmt.Errorf("config: disjunction %d: %w", k, err)
		}
		penalty := routing.NoPenalty
		if dj.Penalty != nil {
			penalty = *dj.Penalty
		}
		if _, err = model.AddDisjunction(indices, penalty); err != nil {
			return nil, fmt.Errorf("config: disjunction %d: %w", k, err)
		}
	}

	return &Instance{Name: p.Name, Manager: manager, Model: model, Params: params}, nil
}

// costMatrix returns the node cost matrix, deriving it from coordinates when needed.
func (p *Problem) costMatrix() [][]int64 {
	if len(p.Matrix) > 0 {
		return p.Matrix
	}
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	n := len(p.Coordinates)
	out := make([][]int64, n)
	for i, a := range p.Coordinates {
		out[i] = make([]int64, n)
		for j, b := range p.Coordinates {
			dx, dy := a[0]-b[0], a[1]-b[1]
			var d float64
			if p.Metric == MetricManhattan {
				d = math.Abs(dx) + math.Abs(dy)
			} else {
				d = math.Hypot(dx, dy)
			}
			out[i][j] = int64(math.Round(d * scale))
		}
	}
	return out
}

func (p *Problem) applyVehicles(model *routing.Model) error {
	if p.FixedCost != 0 {
		if err := model.SetFixedCostOfAllVehicles(p.FixedCost); err != nil {
			return fmt.Errorf("config: fixed cost: %w", err)
		}
	}
	for v, c := range p.VehicleFixedCosts {
		if err := model.SetFixedCostOfVehicle(c, v); err != nil {
			return fmt.Errorf("config: fixed cost of vehicle %d: %w", v, err)
		}
	}
	for _, v := range p.ConsiderEmptyCosts {
		if err := model.ConsiderEmptyRouteCostsForVehicle(true, v); err != nil {
			return fmt.Errorf("config: empty route costs: %w", err)
		}
	}
	return nil
}

func addDimension(model *routing.Model, d Dimension) error {
	var (
		handle int
		err    error
	)
	switch {
	case d.Demands != nil:
		handle, err = model.RegisterUnaryTransitVector(d.Demands)
	case d.Matrix != nil:
		handle, err = model.RegisterTransitMatrix(d.Matrix)
	default:
		value := *d.Constant
		handle, err = model.RegisterUnaryTransitCallback(func(int64) int64 { return value })
	}
	if err != nil {
		return fmt.Errorf("config: dimension %q: %w", d.Name, err)
	}

	capacities := d.Capacities
	if capacities == nil {
		capacities = make([]int64, model.Vehicles())
		for v := range capacities {
			capacities[v] = d.Capacity
		}
	}
	if err = model.AddDimensionWithVehicleCapacity(handle, d.Slack, capacities, d.FixStart, d.Name); err != nil {
		return fmt.Errorf("config: dimension %q: %w", d.Name, err)
	}
	dim, err := model.Dimension(d.Name)
	if err != nil {
		return err
	}
	if d.SpanCost != 0 {
		if err = dim.SetSpanCostCoefficientForAllVehicles(d.SpanCost); err != nil {
			return fmt.Errorf("config: dimension %q: %w", d.Name, err)
		}
	}
	for _, w := range d.Windows {
		indices := nodeIndices(model, w.Node)
		if len(indices) == 0 {
			return fmt.Errorf("config: dimension %q window on node %d: %w",
				d.Name, w.Node, routing.ErrNodeOutOfRange)
		}
		for _, i := range indices {
			if err = dim.SetCumulVarRange(i, w.Min, w.Max); err != nil {
				return fmt.Errorf("config: dimension %q window on node %d: %w", d.Name, w.Node, err)
			}
		}
	}
	return nil
}

// nodeIndices returns every index of node: its regular index and the start
// and end indices of vehicles based there.
func nodeIndices(model *routing.Model, node int) []int64 {
	manager := model.Manager()
	var out []int64
	if i := manager.NodeToIndex(node); i >= 0 {
		out = append(out, i)
	}
	for v := 0; v < model.Vehicles(); v++ {
		if s := model.Start(v); manager.IndexToNode(s) == node && s != manager.NodeToIndex(node) {
			out = append(out, s)
		}
		if e := model.End(v); manager.IndexToNode(e) == node {
			out = append(out, e)
		}
	}
	return out
}

// visitIndices maps nodes to their regular indices.
func visitIndices(manager *routing.IndexManager, nodes []int) ([]int64, error) {
	out := make([]int64, len(nodes))
	for k, node := range nodes {
		i := manager.NodeToIndex(node)
		if i < 0 {
			return nil, fmt.Errorf("node %d: %w", node, routing.ErrNodeOutOfRange)
		}
		out[k] = i
	}
	return out, nil
}

// Parameters converts the search block into routing.SearchParameters.
// Empty fields keep the defaults of routing.DefaultSearchParameters.
func (s Search) Parameters() (*routing.SearchParameters, error) {
	p := routing.DefaultSearchParameters()
	var err error
	if s.FirstSolution != "" {
		if p.FirstSolutionStrategy, err = routing.ParseFirstSolutionStrategy(s.FirstSolution); err != nil {
			return nil, fmt.Errorf("config: search: %w", err)
		}
	}
	if s.Metaheuristic != "" {
		if p.LocalSearchMetaheuristic, err = routing.ParseLocalSearchMetaheuristic(s.Metaheuristic); err != nil {
			return nil, fmt.Errorf("config: search: %w", err)
		}
	}
	if s.TimeLimit != "" {
		if p.TimeLimit, err = time.ParseDuration(s.TimeLimit); err != nil {
			return nil, fmt.Errorf("%w: time_limit: %v", ErrInvalidProblem, err)
		}
	}
	p.SolutionLimit = s.SolutionLimit
	p.IterationLimit = s.IterationLimit
	p.Seed = s.Seed
	if s.Temperature != 0 {
		p.InitialTemperature = s.Temperature
	}
	if s.Cooling != 0 {
		p.CoolingFactor = s.Cooling
	}
	p.LogSearch = s.LogSearch
	for _, name := range s.Disabled {
		if err = disableOperator(&p.Operators, name); err != nil {
			return nil, err
		}
	}
	if err = p.Validate(); err != nil {
		return nil, fmt.Errorf("config: search: %w", err)
	}
	return p, nil
}

func disableOperator(o *routing.LocalSearchOperators, name string) error {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")) {
	case routing.OperatorTwoOpt:
		o.TwoOpt = false
	case routing.OperatorOrOpt:
		o.OrOpt = false
	case routing.OperatorRelocate:
		o.Relocate = false
	case routing.OperatorExchange:
		o.Exchange = false
	case routing.OperatorCross:
		o.Cross = false
	case routing.OperatorMakeActive:
		o.MakeActive = false
	case routing.OperatorMakeInactive:
		o.MakeInactive = false
	case routing.OperatorSwapActive:
		o.SwapActive = false
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidProblem, name)
	}
	return nil
}
