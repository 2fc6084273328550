package rampsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
)

// AgentCoreTarget invokes a Bedrock AgentCore runtime, the multi-agent
// service behind the semantic cache this simulator exercises.
type AgentCoreTarget struct {
	client     *bedrockagentcore.Client
	runtimeARN string
}

func NewAgentCoreTarget(client *bedrockagentcore.Client, runtimeARN string) (*AgentCoreTarget, error) {
	if runtimeARN == "" {
		return nil, errors.New("agent runtime ARN is required")
	}

	return &AgentCoreTarget{
		client:     client,
		runtimeARN: runtimeARN,
	}, nil
}

func (t *AgentCoreTarget) Invoke(ctx context.Context, question, sessionID string) error {
	payload, err := json.Marshal(map[string]string{
		"request_text": question,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = t.client.InvokeAgentRuntime(ctx, &bedrockagentcore.InvokeAgentRuntimeInput{
		AgentRuntimeArn:  aws.String(t.runtimeARN),
		Payload:          payload,
		RuntimeSessionId: aws.String(sessionID),
	})
	if err != nil {
		return fmt.Errorf("InvokeAgentRuntime failed: %w", err)
	}

	return nil
}
