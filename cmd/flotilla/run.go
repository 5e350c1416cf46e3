package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/flotilla/internal/config"
	"github.com/ShayCichocki/flotilla/internal/eventbus"
	"github.com/ShayCichocki/flotilla/internal/executor"
	"github.com/ShayCichocki/flotilla/internal/history"
	"github.com/ShayCichocki/flotilla/internal/orchestrator"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

var (
	runWorkers     int
	runConcurrency int
	runTimeout     time.Duration
	runRetries     int
	runRetryDelay  time.Duration
	runBackoff     string
	runHint        string
	runFile        string
	runProvider    string
	runModel       string
	runDryRun      bool
	runNoSave      bool
	runQuiet       bool
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a task across a fleet of agents",
	Long: `Run a task through the full orchestration pipeline.

The task is decomposed into independent subtasks, each executed by a
worker agent under a shared concurrency limit. Worker outputs are then
folded back together: one synthesizer per five workers, plus an
executive pass when more than one synthesizer ran.

The task comes from the command line or from a scenario file:

  flotilla run "survey recent work on sparse attention"
  flotilla run --file scenarios/survey.yaml

Scenario files override the configured run settings; explicit flags
override both. Use --dry-run to exercise the pipeline against the
static provider without spending API credits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().IntVar(&runWorkers, "workers", 8, "Number of worker subtasks to decompose into")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 4, "Maximum agents executing at once")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "Per-subtask attempt timeout")
	runCmd.Flags().IntVar(&runRetries, "retries", 2, "Retries per subtask after the first attempt")
	runCmd.Flags().DurationVar(&runRetryDelay, "retry-delay", time.Second, "Base delay between retry attempts")
	runCmd.Flags().StringVar(&runBackoff, "backoff", "exponential", "Retry backoff policy: fixed or exponential")
	runCmd.Flags().StringVar(&runHint, "hint", "", "Domain hint injected into decomposition and worker prompts")
	runCmd.Flags().StringVar(&runFile, "file", "", "Path to a scenario YAML file")
	runCmd.Flags().StringVar(&runProvider, "provider", "anthropic", "Agent provider: anthropic, openai, or static")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model identifier (provider default when empty)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Use the static provider (no API calls)")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Do not record this run in history")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress per-event progress lines")
}

func runTask(cmd *cobra.Command, args []string) error {
	verbose := os.Getenv("FLOTILLA_DEBUG") != ""

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Precedence: config < scenario file < explicit flags.
	var scenario *config.Scenario
	if runFile != "" {
		scenario, err = config.LoadScenario(runFile)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		cfg.Run, err = scenario.ApplyTo(cfg.Run)
		if err != nil {
			return fmt.Errorf("apply scenario: %w", err)
		}
		if verbose {
			fmt.Printf("[DEBUG] Loaded scenario: %s\n", runFile)
		}
	}
	applyRunFlags(cmd, cfg)

	instruction, err := resolveInstruction(args, scenario)
	if err != nil {
		return err
	}

	if runDryRun {
		cfg.Provider.Name = "static"
	}
	prov, err := createProvider(cfg)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	if verbose {
		fmt.Printf("[DEBUG] Provider: %s\n", prov.Name())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()

	var opts []orchestrator.Option

	var events *orchestrator.ChannelObserver
	var eventsDone chan struct{}
	if !runQuiet {
		events = orchestrator.NewChannelObserver(cfg.Run.EventBuffer)
		opts = append(opts, orchestrator.WithObserver(events))
		eventsDone = make(chan struct{})
		go func() {
			defer close(eventsDone)
			for ev := range events.Events() {
				fmt.Println(eventLine(ev))
			}
		}()
	}

	if cfg.Events.NATSURL != "" {
		nc, err := eventbus.Connect(cfg.Events.NATSURL)
		if err != nil {
			return fmt.Errorf("connect event bus: %w", err)
		}
		defer nc.Close()
		opts = append(opts, orchestrator.WithObserver(eventbus.NewSink(nc)))
		if verbose {
			fmt.Printf("[DEBUG] Publishing events to %s\n", cfg.Events.NATSURL)
		}
	}

	orch, err := orchestrator.New(orchestrator.RequiredConfig{Provider: prov}, opts...)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	runCfg := orchestratorConfig(cfg.Run)

	fmt.Printf("Starting run: %s\n", truncate(instruction, 80))
	fmt.Printf("  Provider: %s\n", prov.Name())
	fmt.Printf("  Workers: %d  Concurrency: %d\n", runCfg.WorkerCount, runCfg.ConcurrencyLimit)
	fmt.Printf("  Timeout: %s  Retries: %d (%s backoff)\n", runCfg.PerTaskTimeout, runCfg.MaxRetries, cfg.Run.Backoff)
	fmt.Println()

	res, runErr := orch.Run(ctx, &models.RootTask{Instruction: instruction}, runCfg)

	if events != nil {
		events.Close()
		<-eventsDone
		if n := events.Dropped(); n > 0 && verbose {
			fmt.Printf("[DEBUG] Dropped %d progress events\n", n)
		}
	}

	if res != nil {
		printSummary(res)
		if cfg.History.Enabled && !runNoSave {
			if err := saveRunHistory(cfg, res); err != nil {
				fmt.Printf("Warning: could not save run history: %v\n", err)
			}
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", runErr)
		}
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

// applyRunFlags overlays flags the user set explicitly onto the loaded
// config, so scenario and config-file values survive unset flags.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("workers") {
		cfg.Run.Workers = runWorkers
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Run.Concurrency = runConcurrency
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Run.TaskTimeout = runTimeout
	}
	if cmd.Flags().Changed("retries") {
		cfg.Run.MaxRetries = runRetries
	}
	if cmd.Flags().Changed("retry-delay") {
		cfg.Run.RetryDelay = runRetryDelay
	}
	if cmd.Flags().Changed("backoff") {
		cfg.Run.Backoff = runBackoff
	}
	if cmd.Flags().Changed("hint") {
		cfg.Run.DomainHint = runHint
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider.Name = runProvider
	}
	if cmd.Flags().Changed("model") {
		cfg.Provider.Model = runModel
	}
}

// resolveInstruction picks the task text: a command-line argument wins,
// then the scenario file.
func resolveInstruction(args []string, scenario *config.Scenario) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if scenario != nil && strings.TrimSpace(scenario.Instruction) != "" {
		return scenario.Instruction, nil
	}
	return "", errors.New("no task given: pass one as an argument or use --file")
}

// orchestratorConfig maps the CLI run settings onto the core config.
func orchestratorConfig(run config.RunConfig) orchestrator.Config {
	return orchestrator.Config{
		WorkerCount:      run.Workers,
		ConcurrencyLimit: run.Concurrency,
		PerTaskTimeout:   run.TaskTimeout,
		MaxRetries:       run.MaxRetries,
		RetryDelay:       run.RetryDelay,
		Backoff:          executor.BackoffPolicy(run.Backoff),
		DomainHint:       run.DomainHint,
	}
}

func saveRunHistory(cfg *config.Config, res *models.OrchestratorResult) error {
	path := cfg.History.Path
	if path == "" {
		path = history.DefaultPath()
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(res)
}

func printSummary(res *models.OrchestratorResult) {
	fmt.Println()
	if res.Success {
		fmt.Printf("%s Run %s finished (%s)\n", color.GreenString("✓"), shortID(res.RunID), res.State)
	} else {
		fmt.Printf("%s Run %s finished (%s)\n", color.RedString("✗"), shortID(res.RunID), res.State)
	}

	succeeded := 0
	for _, wr := range res.WorkerResults {
		if wr.Success {
			succeeded++
		}
	}
	fmt.Printf("  Workers: %d/%d succeeded\n", succeeded, len(res.WorkerResults))
	if n := len(res.SynthesisResults); n > 0 {
		fmt.Printf("  Syntheses: %d\n", n)
	}
	fmt.Printf("  Cost: $%.4f  Tokens: %s  Duration: %s\n",
		res.TotalCost, formatNumber(int(res.TotalTokens)), formatDuration(res.Duration))

	if res.FinalOutput != "" {
		fmt.Println()
		fmt.Println(res.FinalOutput)
	}
}
