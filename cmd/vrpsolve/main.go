// Command vrpsolve solves a routing problem described in a YAML file.
//
//	vrpsolve -problem problem.yaml [-strategy parallel_cheapest_insertion]
//	         [-metaheuristic simulated_annealing] [-time-limit 10s]
//	         [-db runs.db] [-metrics lvroute.prom] [-log-level debug]
//	vrpsolve -db runs.db -list 20
//
// Flags override the search block of the file. With -db every run is stored;
// -list prints the newest stored runs and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"github.com/katalvlaran/lvroute/config"
	"github.com/katalvlaran/lvroute/metrics"
	"github.com/katalvlaran/lvroute/routing"
	"github.com/katalvlaran/lvroute/store"
)

type options struct {
	problem       string
	strategy      string
	metaheuristic string
	timeLimit     time.Duration
	db            string
	metrics       string
	logLevel      string
	list          int
}

func main() {
	var o options
	flag.StringVar(&o.problem, "problem", "", "problem YAML file")
	flag.StringVar(&o.strategy, "strategy", "", "first solution strategy (overrides the file)")
	flag.StringVar(&o.metaheuristic, "metaheuristic", "", "local search metaheuristic (overrides the file)")
	flag.DurationVar(&o.timeLimit, "time-limit", 0, "time limit (overrides the file)")
	flag.StringVar(&o.db, "db", "", "SQLite database storing runs")
	flag.StringVar(&o.metrics, "metrics", "", "write Prometheus metrics to this textfile")
	flag.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.IntVar(&o.list, "list", 0, "print the newest N stored runs and exit (needs -db)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "vrpsolve:", err)
		os.Exit(1)
	}
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func run(ctx context.Context, o options, out io.Writer) error {
	logger, err := newLogger(o.logLevel, os.Stderr)
	if err != nil {
		return err
	}

	var db *store.Store
	if o.db != "" {
		if db, err = store.Open(ctx, o.db); err != nil {
			return err
		}
		defer db.Close()
	}
	if o.list > 0 {
		if db == nil {
			return fmt.Errorf("-list needs -db")
		}
		return listRuns(ctx, db, o.list, out)
	}
	if o.problem == "" {
		return fmt.Errorf("-problem is required")
	}

	p, err := config.Load(o.problem)
	if err != nil {
		return err
	}
	if o.strategy != "" {
		p.Search.FirstSolution = o.strategy
	}
	if o.metaheuristic != "" {
		p.Search.Metaheuristic = o.metaheuristic
	}
	if o.timeLimit > 0 {
		p.Search.TimeLimit = o.timeLimit.String()
	}

	reg := metrics.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}
	inst, err := p.Build(routing.WithLogger(logger), routing.WithObserver(collector))
	if err != nil {
		return err
	}

	logger.Info("solving", "problem", inst.Name,
		"nodes", inst.Manager.NumberOfNodes(), "vehicles", inst.Manager.NumberOfVehicles())
	asg := inst.Model.SolveContext(ctx, inst.Params)
	printAssignment(out, inst, asg)

	if db != nil {
		r := store.RunFromAssignment(inst.Name, inst.Model, asg, inst.Params)
		if err = db.Save(ctx, r); err != nil {
			return err
		}
		logger.Info("run stored", "id", r.ID.String())
	}
	if o.metrics != "" {
		if err = metrics.WriteTextfile(reg, o.metrics); err != nil {
			return err
		}
	}
	if asg == nil {
		return fmt.Errorf("no solution: %s", inst.Model.Status())
	}
	return nil
}

func printAssignment(w io.Writer, inst *config.Instance, asg *routing.Assignment) {
	fmt.Fprintln(w, "status:", inst.Model.Status())
	if asg == nil {
		return
	}
	for v := 0; v < asg.Vehicles(); v++ {
		nodes := inst.Manager.IndicesToNodes(asg.Route(v))
		parts := make([]string, len(nodes))
		for k, n := range nodes {
			parts[k] = fmt.Sprint(n)
		}
		fmt.Fprintf(w, "vehicle %d: %s (cost %d)\n", v, strings.Join(parts, " -> "), asg.RouteCost(v))
	}
	if dropped := asg.Unperformed(); len(dropped) > 0 {
		fmt.Fprintln(w, "dropped:", inst.Manager.IndicesToNodes(dropped))
	}
	fmt.Fprintln(w, "objective:", asg.ObjectiveValue())
}

func listRuns(ctx context.Context, db *store.Store, limit int, w io.Writer) error {
	runs, err := db.List(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-20s %-48s %d\n",
			r.CreatedAt.Format(time.RFC3339), r.ID, r.Problem, r.Status, r.Objective)
	}
	return nil
}
