package reagent

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/reagent-go/reagent/parser"
)

func TestBuildSystemPromptReact(t *testing.T) {
	specs := []ToolSpec{
		{
			Name:        "read_file",
			Description: "read a file from the workspace",
			Parameters: map[string]*Parameter{
				"path": {Type: TypeString, Description: "workspace-relative path"},
			},
			Required: []string{"path"},
		},
	}

	prompt := buildSystemPrompt(parser.FormatReact, specs, "Prefer concise answers.")
	gt.True(t, strings.Contains(prompt, "THOUGHT:"))
	gt.True(t, strings.Contains(prompt, "FINAL_ANSWER:"))
	gt.True(t, strings.Contains(prompt, "read_file: read a file from the workspace"))
	gt.True(t, strings.Contains(prompt, `"path"`))
	gt.True(t, strings.Contains(prompt, "Prefer concise answers."))
	gt.False(t, strings.Contains(prompt, "<thought>"))
}

func TestBuildSystemPromptTagged(t *testing.T) {
	prompt := buildSystemPrompt(parser.FormatTagged, nil, "")
	gt.True(t, strings.Contains(prompt, "<thought>"))
	gt.True(t, strings.Contains(prompt, "<final_answer>"))
	gt.True(t, strings.Contains(prompt, "No tools are available"))
	gt.False(t, strings.Contains(prompt, "THOUGHT:"))
}

func TestRenderObservation(t *testing.T) {
	call := ToolCall{Name: "read_file", Arguments: map[string]any{"path": "a.go"}}

	ok := renderObservation(call, map[string]any{"content": "package a"}, nil)
	gt.True(t, strings.HasPrefix(ok, "OBSERVATION:"))
	gt.True(t, strings.Contains(ok, "package a"))

	failed := renderObservation(call, nil, errors.New("permission denied"))
	gt.True(t, strings.Contains(failed, "read_file"))
	gt.True(t, strings.Contains(failed, "permission denied"))

	empty := renderObservation(call, nil, nil)
	gt.True(t, strings.Contains(empty, "no output"))
}
