package jwtauth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Claim paths are a deliberately small language: dotted field access plus
// bracket indexing ("user.groups[0].name"). Keeping the evaluator to an
// explicit recursive descent over decoded JSON values keeps the trust
// boundary narrow; this is not a query engine.

type pathSegment struct {
	field   string
	index   int
	isIndex bool
}

func parseClaimPath(path string) ([]pathSegment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty claim path")
	}

	var segments []pathSegment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("claim path %q has an empty segment", path)
		}

		for {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				if part != "" {
					segments = append(segments, pathSegment{field: part})
				}
				break
			}

			if open > 0 {
				segments = append(segments, pathSegment{field: part[:open]})
			}

			closing := strings.IndexByte(part, ']')
			if closing < open {
				return nil, fmt.Errorf("claim path %q has an unterminated index", path)
			}

			index, err := strconv.Atoi(part[open+1 : closing])
			if err != nil || index < 0 {
				return nil, fmt.Errorf("claim path %q has an invalid index", path)
			}
			segments = append(segments, pathSegment{index: index, isIndex: true})

			part = part[closing+1:]
			if part == "" {
				break
			}
			if part[0] != '[' {
				return nil, fmt.Errorf("claim path %q has trailing characters after an index", path)
			}
		}
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("empty claim path")
	}
	return segments, nil
}

// evalClaimPath walks the decoded claims tree. Absence at any step is a
// normal miss, not an error.
func evalClaimPath(root any, segments []pathSegment) (any, bool) {
	current := root
	for _, seg := range segments {
		if seg.isIndex {
			slice, ok := current.([]any)
			if !ok || seg.index >= len(slice) {
				return nil, false
			}
			current = slice[seg.index]
			continue
		}

		mapping, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = mapping[seg.field]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// renderClaimValue turns an evaluated claim value into a header value.
// Numbers come out of JSON decoding as float64; integral ones render without
// the trailing fraction.
func renderClaimValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(encoded), true
	}
}
