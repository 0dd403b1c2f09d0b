package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Models sometimes emit truncated or otherwise malformed JSON for tool-call
// arguments and judge verdicts. DecodeLenient runs a fixed fallback chain:
//
//  1. strict json.Unmarshal
//  2. jsonrepair
//  3. conservative brace balancing, then parse
//  4. non-greedy object extraction, then parse
//
// Only when every step fails does the caller see an error; the raw payload
// is preserved in the message for diagnosis.
func DecodeLenient(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty JSON payload")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out, nil
	}

	if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
		if err := json.Unmarshal([]byte(repaired), &out); err == nil {
			return out, nil
		}
	}

	if balanced := balanceBraces(trimmed); balanced != trimmed {
		if err := json.Unmarshal([]byte(balanced), &out); err == nil {
			return out, nil
		}
	}

	if extracted := extractObjectNonGreedy(trimmed); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), &out); err == nil {
			return out, nil
		}
	}

	return nil, fmt.Errorf("unrecoverable JSON payload: %q", raw)
}

// DecodeToolArguments decodes a tool call's serialized arguments with the
// lenient chain. Empty arguments decode to an empty map.
func DecodeToolArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	args, err := DecodeLenient(raw)
	if err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	return args, nil
}

// ExtractJSONObject pulls the outermost JSON object out of surrounding
// prose (greedy match) and decodes it leniently. Judge models are told to
// answer with bare JSON but often wrap it in text or markdown fences.
func ExtractJSONObject(text string) (map[string]any, error) {
	match := objectGreedy.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("no JSON object found in %q", text)
	}
	return DecodeLenient(match)
}

var (
	objectGreedy    = regexp.MustCompile(`(?s)\{.*\}`)
	objectNonGreedy = regexp.MustCompile(`(?s)\{.*?\}`)
)

func extractObjectNonGreedy(s string) string {
	return objectNonGreedy.FindString(s)
}

// balanceBraces conservatively completes a truncated object: it strips a
// dangling key or value fragment after the last comma or colon and appends
// the missing closing brace.
func balanceBraces(jsonStr string) string {
	jsonStr = strings.TrimSpace(jsonStr)

	if !strings.HasPrefix(jsonStr, "{") {
		return jsonStr
	}
	if strings.HasSuffix(jsonStr, "}") {
		return jsonStr
	}

	lastComma := strings.LastIndex(jsonStr, ",")
	lastColon := strings.LastIndex(jsonStr, ":")

	switch {
	case strings.HasSuffix(jsonStr, ","):
		// Truncated between pairs: drop the trailing comma.
		jsonStr = jsonStr[:len(jsonStr)-1]
	case lastComma > lastColon:
		// Truncated mid-key: drop everything after the last complete pair.
		jsonStr = jsonStr[:lastComma]
	case lastColon > 0:
		// Truncated mid-value: drop the unfinished pair, including its key.
		beforeColon := jsonStr[:lastColon]
		if quote := strings.LastIndex(beforeColon, `"`); quote >= 0 {
			if open := strings.LastIndex(beforeColon[:quote], `"`); open >= 0 {
				jsonStr = strings.TrimRight(jsonStr[:open], ", \t\n")
			}
		}
	}

	return jsonStr + "}"
}
