package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/analytics"
	"github.com/SSAM36/jhc-fnl/internal/cache"
	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/consensus"
	"github.com/SSAM36/jhc-fnl/internal/council"
	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/perfstore"
	"github.com/SSAM36/jhc-fnl/internal/projectconfig"
	"github.com/SSAM36/jhc-fnl/internal/publish"
	"github.com/SSAM36/jhc-fnl/internal/reporting"
	"github.com/SSAM36/jhc-fnl/internal/session"
	"github.com/SSAM36/jhc-fnl/internal/spinner"
	"github.com/SSAM36/jhc-fnl/internal/transcript"
	"github.com/spf13/cobra"
)

var (
	queryFile          string
	modelOverrides     []string
	chairmanOverride   string
	outputPath         string
	reportPath         string
	htmlPath           string
	transcriptDir      string
	compressTranscript bool
	enableCache        bool
	disableCache       bool
	runCacheDir        string
	minConsensus       float64
	structuredFlag     bool
	noWeights          bool
	noConfidence       bool
	publishResults     bool
	workers            int
	timeoutSec         int
	verbose            bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Run a council over one question",
		Long: `Run a full council round over one question.

The question comes from the positional argument, --query-file, or stdin.
Council members, the chairman, and the completion engine are read from
.council.yaml (see 'council init'); most settings can be overridden per run
with flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&queryFile, "query-file", "", "Read the question from a file instead of the argument")
	cmd.Flags().StringArrayVar(&modelOverrides, "model", nil, "Council member model ID (overrides config, can be repeated)")
	cmd.Flags().StringVar(&chairmanOverride, "chairman", "", "Chairman model ID (overrides config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON file for the full council result")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a markdown report to this file")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML report to this file")
	cmd.Flags().StringVar(&transcriptDir, "transcript-dir", "", "Directory to save the run transcript JSON")
	cmd.Flags().BoolVar(&compressTranscript, "compress", false, "Compress the transcript with zstd")
	cmd.Flags().BoolVar(&enableCache, "cache", false, "Enable result caching")
	cmd.Flags().BoolVar(&disableCache, "no-cache", false, "Disable result caching")
	cmd.Flags().StringVar(&runCacheDir, "cache-dir", "", "Cache directory for storing results")
	cmd.Flags().Float64Var(&minConsensus, "min-consensus", 0, "Fail (exit 1) when the consensus score falls below this value")
	cmd.Flags().BoolVar(&structuredFlag, "structured", false, "Request rankings as structured JSON")
	cmd.Flags().BoolVar(&noWeights, "no-weights", false, "Disable performance-weighted aggregation")
	cmd.Flags().BoolVar(&noConfidence, "no-confidence", false, "Disable confidence-weighted aggregation")
	cmd.Flags().BoolVar(&publishResults, "publish", false, "Publish result artifacts to Azure Blob Storage")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent completion requests")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Per-request timeout in seconds")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with detailed progress")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	query, err := resolveQuery(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := projectconfig.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	members := memberRefs(cfg)
	if len(modelOverrides) > 0 {
		members = members[:0]
		for _, id := range modelOverrides {
			members = append(members, models.ModelRef{ID: id})
		}
	}
	if len(members) < council.MinResponses {
		return fmt.Errorf("a council needs at least %d members, got %d (run 'council init' or pass --model)", council.MinResponses, len(members))
	}

	chairman := cfg.Chairman
	if chairmanOverride != "" {
		chairman = chairmanOverride
	}
	if workers <= 0 {
		workers = cfg.Workers
	}
	if timeoutSec <= 0 {
		timeoutSec = cfg.TimeoutSeconds
	}
	timeout := time.Duration(timeoutSec) * time.Second

	structured := structuredFlag || boolVal(cfg.Options.StructuredRankings)
	weighting := consensus.Options{
		WeightedAggregation: boolVal(cfg.Options.WeightedAggregation) && !noWeights,
		ConfidenceWeighting: boolVal(cfg.Options.ConfidenceWeighting) && !noConfidence,
	}

	svc, err := completion.Create(cfg.Engine.Kind, cfg.Engine.Config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing %s engine: %w", cfg.Engine.Kind, err)
	}
	defer svc.Shutdown(context.Background()) //nolint:errcheck

	// Setup cache if enabled
	var resultCache *cache.Cache
	var cacheKey string
	useCaching := (enableCache || boolVal(cfg.Cache.Enabled)) && !disableCache
	if useCaching {
		dir := runCacheDir
		if dir == "" {
			dir = cfg.Cache.Dir
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving cache directory: %w", err)
		}
		resultCache = cache.New(absDir)

		cacheKey, err = cache.CacheKey(cache.KeySpec{
			Query:      query,
			Members:    members,
			Chairman:   chairman,
			EngineKind: cfg.Engine.Kind,
			Weighted:   weighting.WeightedAggregation,
			Confidence: weighting.ConfidenceWeighting,
			Structured: structured,
		})
		if err != nil {
			return fmt.Errorf("deriving cache key: %w", err)
		}
		if verbose {
			fmt.Printf("Cache enabled: %s\n", absDir)
		}
	}

	fmt.Printf("Query: %s\n", truncate(query, 120))
	fmt.Printf("Engine: %s\n", cfg.Engine.Kind)
	fmt.Printf("Members: %s\n", memberList(members))
	if chairman != "" {
		fmt.Printf("Chairman: %s\n", chairman)
	}
	fmt.Println()

	result, cached := cachedResult(resultCache, cacheKey)
	if cached {
		fmt.Println("Result served from cache.")
		fmt.Println()
	} else {
		result, err = convene(ctx, cfg, svc, query, members, chairman, weighting, structured, timeout)
		if err != nil {
			return err
		}
		if resultCache != nil {
			if err := resultCache.Put(cacheKey, result); err != nil {
				fmt.Fprintf(os.Stderr, "warning: caching result: %v\n", err)
			}
		}
	}

	printSummary(result)

	artifacts, err := saveArtifacts(result, chairman)
	if err != nil {
		return err
	}

	if publishResults {
		if err := publishArtifacts(ctx, cfg, result, artifacts); err != nil {
			return err
		}
	}

	if minConsensus > 0 && result.ConsensusScore() < minConsensus {
		return &council.ConsensusThresholdError{
			Consensus: result.ConsensusScore(),
			Threshold: minConsensus,
		}
	}

	return nil
}

// convene runs the full two-stage council: gather candidate answers, then
// rank, aggregate, and synthesize.
func convene(ctx context.Context, cfg *projectconfig.ProjectConfig, svc completion.Service, query string, members []models.ModelRef, chairman string, weighting consensus.Options, structured bool, timeout time.Duration) (*models.CouncilResult, error) {
	runnerOpts := []council.RunnerOption{
		council.WithChairman(chairman),
		council.WithWeighting(weighting),
		council.WithStructuredContract(structured),
		council.WithWorkers(workers),
		council.WithRequestTimeout(timeout),
	}

	// Performance history feeds vote weighting and is updated after the run.
	var store *perfstore.FileStore
	if boolVal(cfg.Performance.Enabled) {
		var err error
		store, err = perfstore.OpenFileStore(cfg.Performance.Path)
		if err != nil {
			return nil, fmt.Errorf("opening performance store: %w", err)
		}
		runnerOpts = append(runnerOpts, council.WithPerformanceStore(store))
	}

	var sessionLog session.Logger = session.NopLogger{}
	if boolVal(cfg.Session.Log) {
		logger, err := session.NewJSONLogger(session.DefaultLogPath(cfg.Session.Dir))
		if err != nil {
			return nil, fmt.Errorf("opening session log: %w", err)
		}
		defer logger.Close() //nolint:errcheck
		sessionLog = logger
		runnerOpts = append(runnerOpts, council.WithSessionLogger(logger))
		if verbose {
			fmt.Printf("Session log: %s\n", logger.Path())
		}
	}

	var stop func()
	if !verbose {
		stop = spinner.Start(os.Stdout, "Gathering responses")
	}
	responses, warnings := council.GatherResponses(ctx, svc, query, members, workers, timeout, gatherProgress(sessionLog))
	if stop != nil {
		stop()
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	runner := council.NewRunner(svc, runnerOpts...)
	if verbose {
		runner.OnProgress(verboseProgressListener)
	} else {
		runner.OnProgress(simpleProgressListener)
	}

	result, err := runner.Run(ctx, query, responses)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := analytics.NewRecorder(store).Record(result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording performance: %v\n", err)
		}
	}

	return result, nil
}

// gatherProgress relays response-phase progress to the console (verbose mode
// only, the spinner owns the line otherwise) and records each settled answer
// in the session log.
func gatherProgress(log session.Logger) council.ProgressListener {
	return func(event council.ProgressEvent) {
		if verbose {
			verboseProgressListener(event)
		}
		if event.EventType != council.EventResponseComplete {
			return
		}
		evt := session.NewEvent(session.KindResponse)
		evt.ModelID, _ = event.Details["model_id"].(string)
		evt.Stage = string(event.Stage)
		evt.Details = map[string]any{
			"valid":       event.Valid,
			"duration_ms": event.DurationMs,
		}
		if msg, ok := event.Details["error"].(string); ok {
			evt.Message = msg
		}
		if err := log.Log(evt); err != nil {
			slog.Debug("session log write failed", "error", err)
		}
	}
}

// saveArtifacts writes the requested output files and returns the paths of
// everything it wrote.
func saveArtifacts(result *models.CouncilResult, chairman string) ([]string, error) {
	var written []string

	if outputPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding result: %w", err)
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("saving result: %w", err)
		}
		fmt.Printf("Result saved to: %s\n", outputPath)
		written = append(written, outputPath)
	}

	if reportPath != "" {
		md := reporting.FormatMarkdownReport(result)
		if err := os.WriteFile(reportPath, []byte(md), 0o644); err != nil {
			return nil, fmt.Errorf("saving report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", reportPath)
		written = append(written, reportPath)
	}

	if htmlPath != "" {
		html, err := reporting.FormatHTMLReport(result)
		if err != nil {
			return nil, fmt.Errorf("rendering HTML report: %w", err)
		}
		if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
			return nil, fmt.Errorf("saving HTML report: %w", err)
		}
		fmt.Printf("HTML report saved to: %s\n", htmlPath)
		written = append(written, htmlPath)
	}

	if transcriptDir != "" {
		t := transcript.Build(result, chairman)
		path, err := transcript.Write(transcriptDir, t, compressTranscript)
		if err != nil {
			return nil, fmt.Errorf("saving transcript: %w", err)
		}
		fmt.Printf("Transcript saved to: %s\n", path)
		written = append(written, path)
	}

	return written, nil
}

func publishArtifacts(ctx context.Context, cfg *projectconfig.ProjectConfig, result *models.CouncilResult, paths []string) error {
	az := cfg.Publish.Azure
	if az.ServiceURL == "" {
		return fmt.Errorf("--publish requires publish.azure.service_url in %s", projectconfig.ConfigFileName)
	}
	if len(paths) == 0 {
		return fmt.Errorf("--publish requires at least one artifact (--output, --report, --html, or --transcript-dir)")
	}

	publisher, err := publish.NewAzurePublisher(az.ServiceURL, az.Container)
	if err != nil {
		return err
	}

	urls, err := publisher.PublishFiles(ctx, publish.RunPrefix(result.StartedAt), paths)
	for _, u := range urls {
		fmt.Printf("Published: %s\n", u)
	}
	if err != nil {
		return fmt.Errorf("publishing artifacts: %w", err)
	}
	return nil
}

// resolveQuery picks the question from the argument, --query-file, or stdin,
// in that order.
func resolveQuery(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if queryFile != "" {
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return "", fmt.Errorf("reading query file: %w", err)
		}
		query := strings.TrimSpace(string(data))
		if query == "" {
			return "", fmt.Errorf("query file %s is empty", queryFile)
		}
		return query, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading query from stdin: %w", err)
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("no query given: pass it as an argument, via --query-file, or on stdin")
	}
	return query, nil
}

func cachedResult(c *cache.Cache, key string) (*models.CouncilResult, bool) {
	if c == nil {
		return nil, false
	}
	return c.Get(key)
}

func memberRefs(cfg *projectconfig.ProjectConfig) []models.ModelRef {
	refs := make([]models.ModelRef, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		refs = append(refs, models.ModelRef{ID: m.ID, Name: m.Name})
	}
	return refs
}

func memberList(members []models.ModelRef) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.DisplayName()
	}
	return strings.Join(names, ", ")
}

func boolVal(p *bool) bool {
	return p != nil && *p
}
