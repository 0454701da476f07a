package recommender

import (
	"encoding/json"
	"strings"

	"toolscout/internal/domain"
)

// stripFences removes a leading/trailing markdown code fence from a
// model response. Models often wrap JSON in ```json blocks despite
// being told not to.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// recommendationEnvelope is the response shape the selection prompt
// asks for.
type recommendationEnvelope struct {
	Recommendations []struct {
		ToolName  string `json:"tool_name"`
		Reasoning string `json:"reasoning"`
	} `json:"recommendations"`
}

// parseToolNames extracts an ordered tool name list from a model
// response. Accepts the structured envelope or a bare JSON array of
// strings.
func parseToolNames(response string) ([]string, error) {
	const op = "recommender.parseToolNames"
	text := stripFences(response)
	if text == "" {
		return nil, domain.E(domain.CodeParse, op, "empty model response", nil)
	}

	var envelope recommendationEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && len(envelope.Recommendations) > 0 {
		names := make([]string, 0, len(envelope.Recommendations))
		for _, rec := range envelope.Recommendations {
			if name := strings.TrimSpace(rec.ToolName); name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			return names, nil
		}
	}

	var plain []string
	if err := json.Unmarshal([]byte(text), &plain); err == nil {
		names := make([]string, 0, len(plain))
		for _, name := range plain {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			return names, nil
		}
	}

	if names := parseListNames(text); len(names) > 0 {
		return names, nil
	}

	return nil, domain.E(domain.CodeParse, op, "model response is not a recognized recommendation shape", nil)
}

// parseListNames handles models that answer with a bulleted or numbered
// list instead of JSON. Only the leading identifier of each list item is
// taken; free prose lines yield nothing.
func parseListNames(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		item, ok := listItem(line)
		if !ok {
			continue
		}
		name := strings.Trim(item, "`\"'")
		if idx := strings.IndexAny(name, ": \t"); idx >= 0 {
			name = name[:idx]
		}
		if name = strings.Trim(name, "`\"'"); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func listItem(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(s, "- "); ok {
		return strings.TrimSpace(rest), true
	}
	if rest, ok := strings.CutPrefix(s, "* "); ok {
		return strings.TrimSpace(rest), true
	}
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(s) && (s[digits] == '.' || s[digits] == ')') {
		return strings.TrimSpace(s[digits+1:]), true
	}
	return "", false
}

// updateDecision is the response shape of the update-vs-create prompt.
type updateDecision struct {
	CanUpdate bool   `json:"can_update"`
	Reasoning string `json:"reasoning"`
}

// parseUpdateDecision extracts the update-vs-create verdict.
func parseUpdateDecision(response string) (updateDecision, error) {
	text := stripFences(response)
	var decision updateDecision
	if err := json.Unmarshal([]byte(text), &decision); err != nil {
		return updateDecision{}, domain.E(domain.CodeParse, "recommender.parseUpdateDecision",
			"model response is not a valid update decision", err)
	}
	return decision, nil
}
