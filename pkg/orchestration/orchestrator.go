package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/loayabdalslam/Orchestrator/pkg/codereview"
	"github.com/loayabdalslam/Orchestrator/pkg/filesystem"
	"github.com/loayabdalslam/Orchestrator/pkg/logging"
	"github.com/loayabdalslam/Orchestrator/pkg/metrics"
	"github.com/loayabdalslam/Orchestrator/pkg/parser"
	"github.com/loayabdalslam/Orchestrator/pkg/prompts"
	"github.com/loayabdalslam/Orchestrator/pkg/types"
)

// Generator is a model gateway as seen by the pipeline.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Agents binds a gateway to each generating role. The deployer role makes
// no model calls.
type Agents struct {
	Planner   Generator
	Developer Generator
}

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeDeployed Outcome = metrics.OutcomeDeployed
	OutcomeRejected Outcome = metrics.OutcomeRejected
	OutcomeFailed   Outcome = metrics.OutcomeFailed
)

// Result describes a finished run. Plan, Batch and Deployment are filled in
// as far as the run got.
type Result struct {
	RunID       string
	Outcome     Outcome
	Plan        *types.ProjectPlan
	Batch       *types.CodeBatch
	Deployment  *filesystem.Result
	Transitions []Transition
}

// Options tunes a pipeline.
type Options struct {
	// OutputDir is where project directories are created.
	OutputDir string
	// Concurrency bounds parallel task generation. Values below 2 run tasks
	// one after another.
	Concurrency int
	// NameGeneration asks the planner for a project name before planning.
	NameGeneration bool
	// Features are appended to the planning prompt.
	Features []string
}

// Orchestrator runs request -> plan -> code -> review -> deploy.
type Orchestrator struct {
	agents   Agents
	gate     *codereview.Gate
	deployer *filesystem.Deployer
	opts     Options

	logger   *logging.Logger
	metrics  *metrics.Collector
	listener Listener
	now      func() time.Time
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the run logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records run outcomes.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithListener observes every state transition.
func WithListener(fn Listener) Option {
	return func(o *Orchestrator) { o.listener = fn }
}

// WithClock replaces time.Now, used for fallback names and transitions.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator.
func New(agents Agents, gate *codereview.Gate, deployer *filesystem.Deployer, opts Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		agents:   agents,
		gate:     gate,
		deployer: deployer,
		opts:     opts,
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// run carries the per-run state.
type run struct {
	id      string
	request string
	logger  *logging.Logger
	machine *machine
	result  *Result
}

// Run executes one pipeline. A rejected review is returned as a Result with
// OutcomeRejected and a nil error. Any failure moves the run to Failed and is
// returned; nothing is retried or rolled back.
func (o *Orchestrator) Run(ctx context.Context, request string) (*Result, error) {
	id := uuid.NewString()
	logger := o.logger.WithRunID(id).Component("PipelineOrchestrator")
	r := &run{
		id:      id,
		request: request,
		logger:  logger,
		machine: newMachine(o.listener, logger, o.now),
		result:  &Result{RunID: id},
	}

	err := o.execute(ctx, r)
	if err != nil {
		if terr := r.machine.to(StateFailed, -1); terr != nil {
			logger.Error("Could not record failure: %v", terr)
		}
		r.result.Outcome = OutcomeFailed
		logger.Error("Pipeline failed: %v", err)
	}
	r.result.Transitions = r.machine.transitions()
	o.metrics.RecordPipelineRun(string(r.result.Outcome))
	return r.result, err
}

func (o *Orchestrator) execute(ctx context.Context, r *run) error {
	r.logger.Info("Starting pipeline for request: %s", r.request)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.machine.to(StatePlanning, -1); err != nil {
		return err
	}

	plan, err := o.plan(ctx, r)
	if err != nil {
		return err
	}
	r.result.Plan = plan

	batch, err := o.generateCode(ctx, r, plan)
	if err != nil {
		return err
	}
	r.result.Batch = batch

	if err := r.machine.to(StateReviewing, -1); err != nil {
		return err
	}
	root, _, err := filesystem.ProjectRoot(o.opts.OutputDir, plan.Name)
	if err != nil {
		return err
	}
	decision, err := o.gate.Review(ctx, batch, filesystem.Workspace{Root: root})
	if err != nil {
		return err
	}
	if !decision.Approved {
		r.logger.Warning("Changes rejected, nothing deployed")
		r.result.Outcome = OutcomeRejected
		return r.machine.to(StateDone, -1)
	}

	if err := r.machine.to(StateDeploying, -1); err != nil {
		return err
	}
	deployment, err := o.deployer.Deploy(ctx, filesystem.Target{
		BaseDir:     o.opts.OutputDir,
		ProjectName: plan.Name,
		Files:       batch,
	})
	r.result.Deployment = deployment
	if err != nil {
		return err
	}

	r.result.Outcome = OutcomeDeployed
	r.logger.Success("Pipeline finished: %d file(s) deployed to %s", len(deployment.Written), deployment.Root)
	return r.machine.to(StateDone, -1)
}

func (o *Orchestrator) plan(ctx context.Context, r *run) (*types.ProjectPlan, error) {
	name := ""
	if o.opts.NameGeneration {
		name = o.generateName(ctx, r)
	}

	p := prompts.ProjectPlan(r.request, name, o.opts.Features)
	response, err := o.agents.Planner.Generate(ctx, p.User, p.System)
	if err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}

	plan := parser.ParsePlan(response)
	if plan.Name == "" {
		plan.Name = name
	}
	if plan.Name == "" {
		return nil, &MissingProjectNameError{Request: r.request}
	}
	r.logger.Info("Plan ready: project %s, %d task(s), %d seed file(s)", plan.Name, len(plan.Tasks), plan.FileSeed.Len())
	return plan, nil
}

// generateName never fails: any problem falls back to a deterministic name.
func (o *Orchestrator) generateName(ctx context.Context, r *run) string {
	p := prompts.ProjectName(r.request)
	raw, err := o.agents.Planner.Generate(ctx, p.User, p.System)
	if err == nil {
		if name := parser.SanitizeProjectName(raw); name != "" {
			r.logger.Info("Generated project name: %s", name)
			return name
		}
		err = fmt.Errorf("empty project name generated")
	}
	name := parser.FallbackProjectName(r.request, o.now())
	r.logger.Warning("Name generation failed, using fallback name %s: %v", name, err)
	return name
}

func (o *Orchestrator) generateCode(ctx context.Context, r *run, plan *types.ProjectPlan) (*types.CodeBatch, error) {
	planContext, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan context: %w", err)
	}

	if err := r.machine.to(StateCodeGenerating, 0); err != nil {
		return nil, err
	}
	if len(plan.Tasks) == 0 {
		r.logger.Warning("Plan has no tasks, continuing with an empty batch")
		return types.NewCodeBatch(), nil
	}

	results := make([]*types.CodeBatch, len(plan.Tasks))
	generate := func(ctx context.Context, i int) error {
		task := plan.Tasks[i]
		r.logger.Info("Generating code for task %d/%d: %s", i+1, len(plan.Tasks), task)
		p := prompts.TaskCode(task, string(planContext))
		response, err := o.agents.Developer.Generate(ctx, p.User, p.System)
		if err != nil {
			return &TaskError{Index: i, Task: task, Err: err}
		}
		results[i] = parser.ParseCode(response)
		r.logger.Debug("Task %d produced %d file(s)", i+1, results[i].Len())
		return nil
	}

	if o.opts.Concurrency < 2 {
		for i := range plan.Tasks {
			if i > 0 {
				if err := r.machine.to(StateCodeGenerating, i); err != nil {
					return nil, err
				}
			}
			if err := generate(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.opts.Concurrency)
		for i := range plan.Tasks {
			i := i
			g.Go(func() error { return generate(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	// Merge in task order so later tasks win regardless of completion order.
	// In parallel mode the per-task transitions are recorded here, as each
	// result is merged.
	batch := types.NewCodeBatch()
	for i, res := range results {
		if i > 0 && o.opts.Concurrency >= 2 {
			if err := r.machine.to(StateCodeGenerating, i); err != nil {
				return nil, err
			}
		}
		batch.Merge(res)
	}
	r.logger.Info("Generated %d file(s) across %d task(s)", batch.Len(), len(plan.Tasks))
	return batch, nil
}
