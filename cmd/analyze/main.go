package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"apistudy/adapters/datafile"
	"apistudy/app"
	"apistudy/domain/study"
	"apistudy/internal"
	"apistudy/internal/config"
	"apistudy/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Paired-comparison and correlation analysis for API and code-review studies",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var seed int64
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run both studies over the configured datasets",
		Long: `Run the comparison study (API latency and payload size) and the review
study (pull-request process metrics vs outcomes) over the datasets named by
EXPERIMENT_FILE and REVIEW_FILE, and write the per-question summary CSV.

Flags override the corresponding environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, seed, workers)
			if err != nil {
				return err
			}

			experiments, err := datafile.LoadExperimentData(cfg.Data.ExperimentFile)
			if err != nil {
				return err
			}
			reviews, err := datafile.LoadReviewData(cfg.Data.ReviewFile)
			if err != nil {
				return err
			}

			return runStudies(cmd.Context(), cfg, experiments, reviews)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", -1, "Base seed for deterministic subsampling (overrides ANALYSIS_SEED)")
	cmd.Flags().IntVar(&workers, "workers", -1, "Parallel research question workers (overrides ANALYSIS_WORKERS)")
	return cmd
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var repos, replicas, pullRequests int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run both studies over generated synthetic data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, seed, -1)
			if err != nil {
				return err
			}

			genCfg := testkit.DefaultStudyConfig()
			genCfg.Seed = cfg.Analysis.Seed
			genCfg.RepositoryCount = repos
			genCfg.ReplicaCount = replicas
			genCfg.PullRequests = pullRequests

			gen := testkit.NewStudyDataGenerator(genCfg)
			internal.DefaultLogger.Info("[analyze] generating synthetic datasets (seed %d)", genCfg.Seed)

			return runStudies(cmd.Context(), cfg,
				gen.GenerateExperimentData(), gen.GenerateReviewData())
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", -1, "Base seed for generation and analysis (overrides ANALYSIS_SEED)")
	cmd.Flags().IntVar(&repos, "repos", 20, "Number of subject repositories to simulate")
	cmd.Flags().IntVar(&replicas, "replicas", 30, "Trial replicas per repository, category and condition")
	cmd.Flags().IntVar(&pullRequests, "pull-requests", 500, "Number of pull requests to simulate")
	return cmd
}

// loadConfig merges .env, environment variables and command-line overrides
func loadConfig(cmd *cobra.Command, seed int64, workers int) (*config.Config, error) {
	if err := godotenv.Load(); err == nil {
		internal.DefaultLogger.Debug("[analyze] .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Analysis.Seed = seed
	}
	if workers >= 0 && cmd.Flags().Changed("workers") {
		cfg.Analysis.Workers = workers
	}
	return cfg, nil
}

func runStudies(ctx context.Context, cfg *config.Config, experiments []datafile.ExperimentRecord, reviews []datafile.ReviewRecord) error {
	svc := app.NewStudyService(cfg.Analysis.Seed, cfg.Analysis.Workers)
	report, err := svc.Run(ctx, experiments, reviews)
	if err != nil {
		return err
	}

	printReport(report)

	if cfg.Output.SummaryCSV != "" {
		if err := datafile.NewSummaryWriter(cfg.Output.SummaryCSV).Write(report); err != nil {
			return err
		}
		fmt.Printf("\nSummary written to %s\n", cfg.Output.SummaryCSV)
	}
	return nil
}

func printReport(report *study.StudyReport) {
	fmt.Printf("Study report %s (seed %d)\n\n", report.ID, report.Seed)

	for _, q := range report.ComparisonOrder {
		r := report.Comparisons[q]
		fmt.Printf("%s  %s\n", q, r.Metric)
		fmt.Printf("    %s: mean %.2f  |  %s: mean %.2f  (%d pairs)\n",
			r.ConditionA, r.StatsA.Mean, r.ConditionB, r.StatsB.Mean, r.PairCount)
		fmt.Printf("    %s: statistic %.4f, p %.4g, effect %.3f (%s)\n",
			r.TestName, r.Statistic, r.PValue, r.EffectSize, r.EffectLabel)
		fmt.Printf("    -> %s\n\n", r.Conclusion)
	}

	for _, q := range report.QuestionOrder {
		r := report.Correlations[q]
		fmt.Printf("%s  %s vs %s\n", q, r.ProcessMetric, r.OutcomeMetric)
		fmt.Printf("    pearson %.3f (p %.4g), spearman %.3f (p %.4g), n=%d: %s\n\n",
			r.PearsonR, r.PearsonP, r.SpearmanR, r.SpearmanP, r.SampleSize, r.Label)
	}

	for _, h := range report.Hypotheses {
		fmt.Printf("%s: %s\n", h.Question, h.Verdict)
	}
	fmt.Printf("\n%s\n", report.Strongest.Summary)

	if len(report.Strata) > 0 {
		fmt.Println("\nPer-category means:")
		out, err := json.MarshalIndent(report.Strata, "", "  ")
		if err == nil {
			fmt.Println(string(out))
		}
	}
}
