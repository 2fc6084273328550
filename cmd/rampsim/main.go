package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rampsim/rampsim"
)

var (
	flagDuration       int
	flagStartRPS       int
	flagEndRPS         int
	flagMaxConcurrency int
	flagNumSessions    int
	flagDryRun         bool
	flagCorpusFile     string
	flagBucket         string
	flagKey            string
	flagRuntimeARN     string
)

func main() {
	root := &cobra.Command{
		Use:           "rampsim",
		Short:         "Ramp-controlled load generator for the semantic cache demo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Execute one ramp against the agent runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRamp()
		},
	}

	run.Flags().IntVar(&flagDuration, "duration", rampsim.DefaultRampDurationSecs, "ramp duration in seconds")
	run.Flags().IntVar(&flagStartRPS, "start-rps", rampsim.DefaultRampStartRPS, "requests per second at ramp start")
	run.Flags().IntVar(&flagEndRPS, "end-rps", rampsim.DefaultRampEndRPS, "requests per second at ramp end")
	run.Flags().IntVar(&flagMaxConcurrency, "max-concurrency", 64, "max simultaneously outstanding invocations")
	run.Flags().IntVar(&flagNumSessions, "num-sessions", 20, "session pool size")
	run.Flags().BoolVar(&flagDryRun, "dry-run", false, "skip invocations, report every request as success")
	run.Flags().StringVar(&flagCorpusFile, "corpus", "", "local seed-questions JSON file (overrides S3)")
	run.Flags().StringVar(&flagBucket, "bucket", os.Getenv("SEED_QUESTIONS_BUCKET"), "S3 bucket holding the seed questions")
	run.Flags().StringVar(&flagKey, "key", os.Getenv("SEED_QUESTIONS_KEY"), "S3 key of the seed questions")
	run.Flags().StringVar(&flagRuntimeARN, "runtime-arn", os.Getenv("AGENTCORE_RUNTIME_ARN"), "agent runtime ARN to invoke")

	root.AddCommand(run)

	if err := root.Execute(); err != nil {
		rampsim.Logger.Errorw(
			"run failed",
			"error", err,
		)
		os.Exit(1)
	}
}

func runRamp() error {
	ctx, cancel := rampsim.RootContext()
	defer cancel()

	source, target, err := buildCollaborators(ctx)
	if err != nil {
		return err
	}

	sim, err := rampsim.NewSimulator(
		rampsim.NewCorpusLoader(source),
		target,
		rampsim.MaxConcurrency(flagMaxConcurrency),
		rampsim.NumSessions(flagNumSessions),
	)
	if err != nil {
		return err
	}

	summary, err := sim.Run(ctx, rampsim.Request{
		RampDurationSecs: flagDuration,
		RampStartRPS:     flagStartRPS,
		RampEndRPS:       flagEndRPS,
		DryRun:           flagDryRun,
	})
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

func buildCollaborators(ctx context.Context) (rampsim.CorpusSource, rampsim.Target, error) {
	var source rampsim.CorpusSource
	var target rampsim.Target

	needsAWS := flagCorpusFile == "" || !flagDryRun

	var awsClients struct {
		s3        *s3.Client
		agentcore *bedrockagentcore.Client
	}

	if needsAWS {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		awsClients.s3 = s3.NewFromConfig(awsCfg)
		awsClients.agentcore = bedrockagentcore.NewFromConfig(awsCfg)
	}

	if flagCorpusFile != "" {
		source = &rampsim.FileSource{Path: flagCorpusFile}
	} else {
		if flagBucket == "" {
			return nil, nil, fmt.Errorf("no corpus configured: pass --corpus or --bucket (or set SEED_QUESTIONS_BUCKET)")
		}
		source = &rampsim.S3Source{
			Client: awsClients.s3,
			Bucket: flagBucket,
			Key:    flagKey,
		}
	}

	if !flagDryRun {
		t, err := rampsim.NewAgentCoreTarget(awsClients.agentcore, flagRuntimeARN)
		if err != nil {
			return nil, nil, fmt.Errorf("pass --runtime-arn or set AGENTCORE_RUNTIME_ARN: %w", err)
		}
		target = t
	}

	return source, target, nil
}

func printSummary(s rampsim.Summary) {
	header := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	header.Println("\nRamp results")
	fmt.Printf("  Requests : %d\n", s.TotalRequests)
	ok.Printf("  Success  : %d\n", s.Successes)
	if s.Failures > 0 {
		bad.Printf("  Failures : %d\n", s.Failures)
	} else {
		fmt.Printf("  Failures : %d\n", s.Failures)
	}
	fmt.Printf("  Duration : %.1fs\n", s.DurationSecs)
	fmt.Printf("  Avg RPS  : %.2f\n", s.AvgRPS)
	fmt.Printf("  Latency  : p50 %.1fms | p95 %.1fms | p99 %.1fms\n", s.P50LatencyMs, s.P95LatencyMs, s.P99LatencyMs)
	fmt.Println("  " + s.Message)
}
