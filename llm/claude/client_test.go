package claude

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/gt"

	"github.com/reagent-go/reagent"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "")
	gt.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	client, err := New(context.Background(), "test-key")
	gt.NoError(t, err)
	gt.Equal(t, client.defaultModel, anthropic.ModelClaude3_5SonnetLatest)
	gt.Equal(t, client.maxTokens, int64(4096))

	custom, err := New(context.Background(), "test-key",
		WithModel("claude-3-opus-latest"),
		WithMaxTokens(1024),
		WithTemperature(0.2),
	)
	gt.NoError(t, err)
	gt.Equal(t, custom.defaultModel, "claude-3-opus-latest")
	gt.Equal(t, custom.maxTokens, int64(1024))
	gt.Equal(t, custom.temperature, 0.2)
}

func TestConvertTurns(t *testing.T) {
	history := []reagent.Turn{
		{Role: reagent.RoleSystem, Content: "you are terse"},
		{Role: reagent.RoleUser, Content: "hello"},
		{Role: reagent.RoleAssistant, Content: "THOUGHT: greeting"},
	}
	current := reagent.Turn{Role: reagent.RoleUser, Content: "OBSERVATION: {}"}

	system, messages := convertTurns(current, history)

	gt.Equal(t, len(system), 1)
	gt.Equal(t, system[0].Text, "you are terse")

	gt.Equal(t, len(messages), 3)
	gt.Equal(t, messages[0].Role, anthropic.MessageParamRoleUser)
	gt.Equal(t, messages[1].Role, anthropic.MessageParamRoleAssistant)
	gt.Equal(t, messages[2].Role, anthropic.MessageParamRoleUser)
	gt.Equal(t, messages[2].Content[0].OfRequestTextBlock.Text, "OBSERVATION: {}")
}
