package gateway

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// fenceRegex matches a whole response wrapped in one markdown code fence.
var fenceRegex = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

var (
	errNotJSON         = errors.New("model response is not valid JSON")
	errMissingSolidity = errors.New("model response has no solidityCode key")
	errSolidityType    = errors.New("solidityCode is not a string")
	errEmptySolidity   = errors.New("solidityCode is empty")
)

// StripFence removes a single optional code fence around raw.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fenceRegex.FindStringSubmatch(text); m != nil && m[2] != "" {
		text = strings.TrimSpace(m[2])
	}
	return text
}

// UnwrapSolidity extracts the solidityCode string from a model response.
func UnwrapSolidity(raw string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripFence(raw)), &obj); err != nil {
		return "", errors.Join(errNotJSON, err)
	}

	value, ok := obj["solidityCode"]
	if !ok {
		return "", errMissingSolidity
	}

	var code string
	if string(value) == "null" {
		return "", errSolidityType
	}
	if err := json.Unmarshal(value, &code); err != nil {
		return "", errSolidityType
	}
	if strings.TrimSpace(code) == "" {
		return "", errEmptySolidity
	}
	return code, nil
}
