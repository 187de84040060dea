package inference

import (
	"encoding/json"
	"strings"
)

// ExtractJSON locates the outermost JSON object in a model response and
// returns it. Models frequently wrap JSON in code fences or prose despite
// instructions not to, so the extraction is positional: everything from
// the first '{' to the last '}'.
func ExtractJSON(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSON
	}
	return response[start : end+1], nil
}

// DecodeJSON extracts the JSON object from a model response and decodes it
// into v. Unknown fields are tolerated; type mismatches are not.
func DecodeJSON(response string, v any) error {
	raw, err := ExtractJSON(response)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

// StripFences removes leading/trailing markdown code fences from a model
// response. Used for prose outputs (rendered recipes) where the fence is
// noise rather than structure.
func StripFences(response string) string {
	out := strings.TrimSpace(response)
	if strings.HasPrefix(out, "```") {
		if idx := strings.Index(out, "\n"); idx != -1 {
			out = out[idx+1:]
		} else {
			out = ""
		}
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
