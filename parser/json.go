package parser

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/m-mizutani/goerr/v2"
)

// decodeActionInput parses an action input payload into a JSON object.
// Models routinely emit almost-JSON (single quotes, trailing commas,
// unquoted keys), so once the payload is bounded a repair pass is attempted
// before the payload is declared malformed.
func decodeActionInput(raw string, repair bool) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, goerr.New("empty action input")
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(trimmed), &input); err == nil {
		return input, nil
	} else if !repair {
		return nil, err
	}

	fixed, err := jsonrepair.JSONRepair(trimmed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to repair action input")
	}
	if err := json.Unmarshal([]byte(fixed), &input); err != nil {
		return nil, goerr.Wrap(err, "action input is not a JSON object")
	}
	return input, nil
}
