// Package app wires configuration, model construction, the in-process
// solver and result export into one runnable service.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/h2steel/flexbatch/config"
	coremetrics "github.com/h2steel/flexbatch/core/metrics"
	"github.com/h2steel/flexbatch/core/plant"
	"github.com/h2steel/flexbatch/core/schedule"
	"github.com/h2steel/flexbatch/infra/logger"
	"github.com/h2steel/flexbatch/infra/metrics"
	"github.com/h2steel/flexbatch/infra/solver"
	"github.com/h2steel/flexbatch/pkg/export"
)

// Service orchestrates one scheduling run.
type Service struct {
	cfg    *config.Config
	params *plant.Params
	sink   coremetrics.Sink
	log    logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg.Logging.Level != "" {
		if err := logger.SetLevel(cfg.Logging.Level); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}
	logg := logger.New("service")

	params, err := config.LoadPlant(cfg)
	if err != nil {
		return nil, fmt.Errorf("plant: %w", err)
	}

	var sink coremetrics.Sink = coremetrics.NopSink{}
	if cfg.Metrics.Enabled {
		sink, err = metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
	}

	return &Service{cfg: cfg, params: params, sink: sink, log: logg}, nil
}

// Run builds the scheduling problem, optionally solves it and writes the
// configured artifacts. It returns once the run is complete or the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.Addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	kind, err := schedule.ParseObjective(s.cfg.Objective)
	if err != nil {
		return err
	}

	buildStart := time.Now()
	prob, err := schedule.Build(s.params, kind)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	buildDur := time.Since(buildStart)
	s.log.Infof("model built: objective=%s vars=%d constraints=%d horizon=%d",
		kind, prob.Model.NumVars(), prob.Model.NumConstraints(), prob.Horizon)
	if err := s.sink.RecordBuild(coremetrics.BuildEvent{
		Objective:   string(kind),
		Variables:   prob.Model.NumVars(),
		Constraints: prob.Model.NumConstraints(),
		Horizon:     prob.Horizon,
		Duration:    buildDur,
	}); err != nil {
		s.log.Warnf("record build: %v", err)
	}

	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	if s.cfg.Output.ModelFile != "" {
		if err := s.writeModel(prob); err != nil {
			return err
		}
	}

	if !s.cfg.Solver.Enabled {
		return nil
	}
	return s.solve(ctx, prob)
}

func (s *Service) solve(ctx context.Context, prob *schedule.Problem) error {
	res, err := solver.Solve(ctx, prob.Model, solver.Options{
		TimeLimit: s.cfg.Solver.TimeLimit,
		MaxNodes:  s.cfg.Solver.MaxNodes,
		AbsGap:    s.cfg.Solver.AbsGap,
		Log:       logger.New("solver"),
	})
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	if err := s.sink.RecordSolve(coremetrics.SolveEvent{
		Objective:      string(prob.Objective),
		Status:         res.Status.String(),
		ObjectiveValue: res.Objective,
		Nodes:          res.Nodes,
		Duration:       res.Runtime,
	}); err != nil {
		s.log.Warnf("record solve: %v", err)
	}

	summary := export.NewSummary(prob, res.Status.String(), res.Objective, res.Nodes, res.Runtime)
	if err := s.writeSummary(summary); err != nil {
		return err
	}
	if res.X == nil {
		return fmt.Errorf("no schedule found: %s", res.Status)
	}
	s.log.Infof("run %s: status=%s objective=%f", summary.RunID, res.Status, res.Objective)
	return s.writeSchedule(prob, res)
}

func (s *Service) writeModel(prob *schedule.Problem) error {
	path := filepath.Join(s.cfg.Output.Dir, s.cfg.Output.ModelFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("model file: %w", err)
	}
	defer f.Close()
	if err := export.WriteLP(f, prob.Model); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return f.Close()
}

func (s *Service) writeSummary(summary export.Summary) error {
	path := filepath.Join(s.cfg.Output.Dir, s.cfg.Output.SummaryFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("summary file: %w", err)
	}
	defer f.Close()
	if err := export.WriteJSON(f, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return f.Close()
}

func (s *Service) writeSchedule(prob *schedule.Problem, res *solver.Result) error {
	path := filepath.Join(s.cfg.Output.Dir, s.cfg.Output.ScheduleFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("schedule file: %w", err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, prob, res.X); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}
	return f.Close()
}
