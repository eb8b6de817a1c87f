package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/loayabdalslam/Orchestrator/pkg/codereview"
	"github.com/loayabdalslam/Orchestrator/pkg/config"
	"github.com/loayabdalslam/Orchestrator/pkg/filesystem"
	"github.com/loayabdalslam/Orchestrator/pkg/logging"
	"github.com/loayabdalslam/Orchestrator/pkg/metrics"
	"github.com/loayabdalslam/Orchestrator/pkg/orchestration"
	"github.com/loayabdalslam/Orchestrator/pkg/providers/llm"
)

var errNoTerminal = errors.New("interactive review requires a terminal (TTY); use --yes or --review-url")

// createOptions holds the create flags.
type createOptions struct {
	outputDir        string
	features         []string
	autoApprove      bool
	reviewURL        string
	concurrency      int
	timeout          time.Duration
	provider         string
	model            string
	noNameGeneration bool
}

var createOpts createOptions

// isTerminal is replaced in tests.
var isTerminal = func(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var createCmd = &cobra.Command{
	Use:   "create [request]",
	Short: "Plan, generate, review and deploy a project",
	Long: `Create sends the request to the planner, generates code for every planned
task with the developer, shows the combined diff for approval and, once
approved, writes the files under <output>/<project name>.

Nothing is written when the changes are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args[0], createOpts)
	},
}

func init() {
	bindCreateFlags(createCmd, &createOpts)
}

func bindCreateFlags(cmd *cobra.Command, o *createOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.outputDir, "output", "o", "", "Directory the project is created in")
	f.StringArrayVarP(&o.features, "feature", "f", nil, "Feature the plan must include (repeatable)")
	f.BoolVarP(&o.autoApprove, "yes", "y", false, "Approve the changes without asking")
	f.StringVar(&o.reviewURL, "review-url", "", "Ask a websocket review service (ws://...) instead of the console")
	f.IntVar(&o.concurrency, "concurrency", 0, "Number of tasks generated in parallel")
	f.DurationVar(&o.timeout, "timeout", 0, "Per-call backend timeout (0 means none)")
	f.StringVarP(&o.provider, "provider", "p", "", "Provider for every agent (openai, gemini, ollama)")
	f.StringVarP(&o.model, "model", "m", "", "Model for every agent")
	f.BoolVar(&o.noNameGeneration, "no-name-generation", false, "Take the project name from the plan only")
}

// applyOverrides lets flags win over the configuration.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts createOptions) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("timeout") {
		cfg.BackendTimeout = opts.timeout
	}
	if flags.Changed("no-name-generation") {
		cfg.NameGeneration = !opts.noNameGeneration
	}
	for _, a := range []*config.AgentConfig{&cfg.Agents.Planner, &cfg.Agents.Developer, &cfg.Agents.Deployer} {
		if flags.Changed("provider") {
			a.Provider = opts.provider
		}
		if flags.Changed("model") {
			a.Model = opts.model
		}
	}
	return cfg.Validate()
}

// chooseReviewer picks how the diff gets approved.
func chooseReviewer(opts createOptions, in io.Reader, out io.Writer) (codereview.Reviewer, error) {
	switch {
	case opts.autoApprove:
		return &codereview.AutoReviewer{Approve: true}, nil
	case opts.reviewURL != "":
		return codereview.NewWebSocketReviewer(opts.reviewURL), nil
	case !isTerminal(in):
		return nil, errNoTerminal
	default:
		return codereview.NewConsoleReviewer(in, out), nil
	}
}

func newGateway(factory *llm.Factory, cfg *config.Config, role config.Role, opts ...llm.GatewayOption) (*llm.Gateway, error) {
	pc, err := cfg.ProviderConfig(role)
	if err != nil {
		return nil, fmt.Errorf("%s agent: %w", role, err)
	}
	gw, err := factory.NewGateway(pc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s agent: %w", role, err)
	}
	return gw, nil
}

func runCreate(cmd *cobra.Command, request string, opts createOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg, opts); err != nil {
		return err
	}

	reviewer, err := chooseReviewer(opts, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	collector := metrics.New()
	gwOpts := []llm.GatewayOption{llm.WithLogger(logger), llm.WithMetrics(collector)}
	if cfg.RequestsPerSecond > 0 {
		gwOpts = append(gwOpts, llm.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)))
	}

	factory := llm.NewFactory(nil)
	planner, err := newGateway(factory, cfg, config.RolePlanner, gwOpts...)
	if err != nil {
		return err
	}
	developer, err := newGateway(factory, cfg, config.RoleDeveloper, gwOpts...)
	if err != nil {
		return err
	}
	logAgents(logger, planner, developer)

	orch := orchestration.New(
		orchestration.Agents{Planner: planner, Developer: developer},
		codereview.NewGate(reviewer, logger),
		filesystem.NewDeployer(logger),
		orchestration.Options{
			OutputDir:      cfg.OutputDir,
			Concurrency:    cfg.Concurrency,
			NameGeneration: cfg.NameGeneration,
			Features:       opts.features,
		},
		orchestration.WithLogger(logger),
		orchestration.WithMetrics(collector),
	)

	result, runErr := orch.Run(cmd.Context(), request)
	if cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warning("Could not write metrics to %s: %v", cfg.MetricsFile, err)
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	switch result.Outcome {
	case orchestration.OutcomeRejected:
		fmt.Fprintln(out, color.YellowString("Changes rejected; nothing was written."))
	case orchestration.OutcomeDeployed:
		fmt.Fprintln(out, color.GreenString("Project %s deployed to %s (%d files)",
			result.Plan.Name, result.Deployment.Root, len(result.Deployment.Written)))
	}
	return nil
}

func logAgents(logger *logging.Logger, gateways ...*llm.Gateway) {
	roles := []config.Role{config.RolePlanner, config.RoleDeveloper}
	for i, gw := range gateways {
		logger.Debug("%s agent: %s/%s", roles[i], gw.Provider(), gw.Model())
	}
}
