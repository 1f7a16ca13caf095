package routes

import (
	"fmt"
	"strings"
)

type segmentKind int

const (
	segStatic segmentKind = iota
	segParam
	segCatchAll
)

type segment struct {
	kind  segmentKind
	value string // literal for static, param name otherwise
}

// pattern is a compiled route path such as /stories/:id or /:rest(.*)*.
type pattern struct {
	raw  string
	segs []segment
}

const catchAllSuffix = "(.*)*"

func parsePattern(raw string) (pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return pattern{}, fmt.Errorf("%w: %q must start with /", ErrBadPattern, raw)
	}

	parts := splitPath(raw)
	p := pattern{raw: raw, segs: make([]segment, 0, len(parts))}

	for i, part := range parts {
		if !strings.HasPrefix(part, ":") {
			if strings.ContainsAny(part, "()*:") {
				return pattern{}, fmt.Errorf("%w: %q has an invalid segment %q", ErrBadPattern, raw, part)
			}
			p.segs = append(p.segs, segment{kind: segStatic, value: part})
			continue
		}

		name := part[1:]
		kind := segParam
		if strings.HasSuffix(name, catchAllSuffix) {
			name = strings.TrimSuffix(name, catchAllSuffix)
			kind = segCatchAll
			if i != len(parts)-1 {
				return pattern{}, fmt.Errorf("%w: %q catch-all must be the last segment", ErrBadPattern, raw)
			}
		}
		if name == "" || strings.ContainsAny(name, "()*:") {
			return pattern{}, fmt.Errorf("%w: %q has an invalid parameter %q", ErrBadPattern, raw, part)
		}
		p.segs = append(p.segs, segment{kind: kind, value: name})
	}

	return p, nil
}

// isCatchAll reports whether the pattern matches every path.
func (p pattern) isCatchAll() bool {
	return len(p.segs) == 1 && p.segs[0].kind == segCatchAll
}

// match reports whether path matches and returns its parameters.
func (p pattern) match(path string) (map[string]string, bool) {
	parts := splitPath(path)
	var params map[string]string

	for i, seg := range p.segs {
		switch seg.kind {
		case segCatchAll:
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[seg.value] = strings.Join(parts[i:], "/")
			return params, true

		case segParam:
			if i >= len(parts) {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, len(p.segs))
			}
			params[seg.value] = parts[i]

		default:
			if i >= len(parts) || parts[i] != seg.value {
				return nil, false
			}
		}
	}

	if len(parts) != len(p.segs) {
		return nil, false
	}
	return params, true
}

// splitPath splits a path into its non-empty segments.
func splitPath(path string) []string {
	fields := strings.Split(path, "/")
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// joinPath resolves a child path against its parent. Absolute child paths
// are kept as-is.
func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return child
	}
	if child == "" {
		return parent
	}
	return strings.TrimSuffix(parent, "/") + "/" + child
}
