package reagent

import (
	"encoding/json"
	"strings"

	"github.com/reagent-go/reagent/parser"
)

// continuationCue is the round prompt after a tool execution. It is
// synthesized per round and never persisted in history, like the system turn.
const continuationCue = "Consider the latest observation. Either take the next action or give the final answer."

const reactInstructions = `Respond using exactly this structure:

THOUGHT: your reasoning about what to do next
ACTION: the name of one tool to use
ACTION_INPUT: the tool arguments as a single JSON object

After the observation is returned to you, continue with another THOUGHT.
When you have enough information to answer, respond with:

THOUGHT: your final reasoning
FINAL_ANSWER: your complete answer to the user

Rules:
- Use at most one ACTION per response.
- ACTION_INPUT must be valid JSON on the lines following the keyword.
- Every response must contain either an ACTION or a FINAL_ANSWER.`

const taggedInstructions = `Respond using exactly this structure:

<thought>your reasoning about what to do next</thought>
<action>the name of one tool to use</action>
<action_input>the tool arguments as a single JSON object</action_input>

After the observation is returned to you, continue with another <thought>.
When you have enough information to answer, respond with:

<thought>your final reasoning</thought>
<final_answer>your complete answer to the user</final_answer>

Rules:
- Use at most one <action> per response.
- <action_input> must contain valid JSON.
- Every response must contain either an <action> or a <final_answer>.`

// buildSystemPrompt renders the fixed instructions, the caller's extra
// instructions, and the tool catalogue into one system turn. The catalogue
// is presentation only; calls are not validated against it.
func buildSystemPrompt(format parser.Format, specs []ToolSpec, extra string) string {
	var b strings.Builder

	b.WriteString("You are a coding assistant embedded in an editor. ")
	b.WriteString("You solve the user's request step by step, using the available tools when you need information or side effects.\n\n")

	if format == parser.FormatTagged {
		b.WriteString(taggedInstructions)
	} else {
		b.WriteString(reactInstructions)
	}

	b.WriteString("\n\n")
	b.WriteString(renderCatalogue(specs))

	if extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}

	return b.String()
}

func renderCatalogue(specs []ToolSpec) string {
	if len(specs) == 0 {
		return "No tools are available. Answer from your own knowledge."
	}

	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, spec := range specs {
		b.WriteString("\n- ")
		b.WriteString(spec.Name)
		b.WriteString(": ")
		b.WriteString(spec.Description)
		if schema, err := json.Marshal(spec.Schema()); err == nil {
			b.WriteString("\n  arguments schema: ")
			b.Write(schema)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderObservation summarizes a tool outcome as the user-role turn fed back
// to the model. Failures are surfaced in the text, not as a loop abort.
func renderObservation(call ToolCall, data map[string]any, err error) string {
	if err != nil {
		return "OBSERVATION: tool " + call.Name + " failed: " + err.Error()
	}
	if data == nil {
		return "OBSERVATION: tool " + call.Name + " succeeded with no output"
	}
	raw, merr := json.Marshal(data)
	if merr != nil {
		return "OBSERVATION: tool " + call.Name + " succeeded but its output could not be serialized"
	}
	return "OBSERVATION: " + string(raw)
}
