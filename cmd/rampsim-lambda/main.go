package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"rampsim/rampsim"
)

type handler struct {
	sim *rampsim.Simulator
}

func newHandler(ctx context.Context) (*handler, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	bucket := os.Getenv("SEED_QUESTIONS_BUCKET")
	if bucket == "" {
		rampsim.Logger.Warnw("SEED_QUESTIONS_BUCKET not set")
	}

	runtimeARN := os.Getenv("AGENTCORE_RUNTIME_ARN")
	if runtimeARN == "" {
		rampsim.Logger.Warnw("AGENTCORE_RUNTIME_ARN not set")
	}

	source := &rampsim.S3Source{
		Client: s3.NewFromConfig(awsCfg),
		Bucket: bucket,
		Key:    os.Getenv("SEED_QUESTIONS_KEY"),
	}

	// A missing ARN leaves the target nil; Run still serves dry_run
	// requests and rejects real ones.
	var target rampsim.Target
	if runtimeARN != "" {
		target, err = rampsim.NewAgentCoreTarget(bedrockagentcore.NewFromConfig(awsCfg), runtimeARN)
		if err != nil {
			return nil, err
		}
	}

	sim, err := rampsim.NewSimulator(rampsim.NewCorpusLoader(source), target)
	if err != nil {
		return nil, err
	}

	return &handler{sim: sim}, nil
}

// Handle runs one ramp per invocation. A zero field in the request
// means the deployment default, matching the documented interface of
// (60s, 1 rps, 100 rps).
func (h *handler) Handle(ctx context.Context, req rampsim.Request) (rampsim.Summary, error) {
	return h.sim.Run(ctx, req.WithDefaults())
}

func main() {
	h, err := newHandler(context.Background())
	if err != nil {
		rampsim.Logger.Fatalw(
			"failed to initialize",
			"error", err,
		)
	}

	lambda.Start(h.Handle)
}
