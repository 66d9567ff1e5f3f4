package processing

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoParseableJSON is returned when every parse strategy fails.
var ErrNoParseableJSON = errors.New("no parseable JSON found")

// parseStrategy attempts to extract a structured value from model output.
// Strategies are pure: same input, same result.
type parseStrategy func(text string) (any, bool)

// Parse extracts a structured JSON value from free-form model output.
// Models wrap valid JSON in prose or markdown fences, or emit JSON-Lines
// instead of a single document, so strategies are tried in order of
// strictness: direct parse, fence-stripped parse, then line-by-line object
// collection. Each strategy runs only if the previous one failed.
func Parse(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	cleaned := stripFences(trimmed)

	strategies := []parseStrategy{
		func(string) (any, bool) { return parseDocument(trimmed) },
		func(string) (any, bool) { return parseDocument(cleaned) },
		func(string) (any, bool) { return parseObjectLines(cleaned) },
	}
	for _, try := range strategies {
		if value, ok := try(trimmed); ok {
			return value, nil
		}
	}
	return nil, ErrNoParseableJSON
}

// parseDocument parses text as a single complete JSON document.
func parseDocument(text string) (any, bool) {
	if text == "" {
		return nil, false
	}
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, false
	}
	return value, true
}

// parseObjectLines parses each non-empty line beginning with '{' as a
// standalone JSON object and collects the successes.
func parseObjectLines(text string) (any, bool) {
	var values []any
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var value map[string]any
		if err := json.Unmarshal([]byte(line), &value); err != nil {
			continue
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil, false
	}
	return values, true
}

// stripFences removes a leading markdown code-fence line and a trailing
// fence closer, returning the trimmed body.
func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
