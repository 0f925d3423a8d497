package mvc

import (
	"fmt"
	"strings"
)

// Segment is one path segment of a route pattern
type Segment struct {
	Literal  string // set for fixed segments
	Name     string // parameter name for {name} segments
	Default  string
	Optional bool
}

// IsParameter reports whether the segment is a {parameter}
func (s Segment) IsParameter() bool {
	return s.Name != ""
}

// Pattern is a parsed conventional route pattern such as
// "{controller=Admin}/{action=Login}/{id?}"
type Pattern struct {
	raw      string
	Segments []Segment
}

// ParsePattern parses a conventional route pattern
func ParsePattern(raw string) (*Pattern, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("empty route pattern")
	}

	p := &Pattern{raw: raw}
	seen := make(map[string]bool)
	for _, part := range strings.Split(trimmed, "/") {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("invalid route pattern %q: %w", raw, err)
		}
		if seg.IsParameter() {
			if seen[seg.Name] {
				return nil, fmt.Errorf("invalid route pattern %q: duplicate parameter %q", raw, seg.Name)
			}
			seen[seg.Name] = true
		}
		p.Segments = append(p.Segments, seg)
	}

	if !seen["controller"] || !seen["action"] {
		return nil, fmt.Errorf("invalid route pattern %q: {controller} and {action} are required", raw)
	}
	return p, nil
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}
	if !strings.HasPrefix(part, "{") {
		if strings.ContainsAny(part, "{}") {
			return Segment{}, fmt.Errorf("segment %q mixes text and parameters", part)
		}
		return Segment{Literal: part}, nil
	}
	if !strings.HasSuffix(part, "}") || strings.Count(part, "{") != 1 || strings.Count(part, "}") != 1 {
		return Segment{}, fmt.Errorf("malformed parameter %q", part)
	}

	body := part[1 : len(part)-1]
	var seg Segment
	if name, def, ok := strings.Cut(body, "="); ok {
		seg.Name, seg.Default = name, def
		if def == "" {
			return Segment{}, fmt.Errorf("parameter %q has an empty default", part)
		}
	} else if strings.HasSuffix(body, "?") {
		seg.Name, seg.Optional = strings.TrimSuffix(body, "?"), true
	} else {
		seg.Name = body
	}

	if seg.Name == "" || strings.ContainsAny(seg.Name, "?=*:") {
		return Segment{}, fmt.Errorf("malformed parameter %q", part)
	}
	return seg, nil
}

// String returns the pattern as written
func (p *Pattern) String() string {
	return p.raw
}

// Defaults returns the default value of every parameter that has one
func (p *Pattern) Defaults() map[string]string {
	defaults := make(map[string]string)
	for _, seg := range p.Segments {
		if seg.Default != "" {
			defaults[seg.Name] = seg.Default
		}
	}
	return defaults
}

// Expand returns the engine paths that reach controller.action, longest
// first. Trailing segments are dropped while they are optional or their
// value equals the pattern default, so with the default pattern
// Admin.Login expands to /Admin/Login/:id, /Admin/Login, /Admin and /.
func (p *Pattern) Expand(controller, action string) []string {
	parts := make([]string, len(p.Segments))
	droppable := make([]bool, len(p.Segments))

	for i, seg := range p.Segments {
		switch {
		case !seg.IsParameter():
			parts[i] = seg.Literal
		case seg.Name == "controller":
			parts[i] = controller
			droppable[i] = seg.Default != "" && strings.EqualFold(seg.Default, controller)
		case seg.Name == "action":
			parts[i] = action
			droppable[i] = seg.Default != "" && strings.EqualFold(seg.Default, action)
		default:
			parts[i] = ":" + seg.Name
			droppable[i] = seg.Optional || seg.Default != ""
		}
	}

	paths := []string{"/" + strings.Join(parts, "/")}
	for n := len(parts); n > 0 && droppable[n-1]; n-- {
		paths = append(paths, "/"+strings.Join(parts[:n-1], "/"))
	}
	return paths
}

// ConvertTemplate turns an attribute route template such as
// "api/[controller]/{id}" into an engine path ("/api/Orders/:id").
// {*rest} becomes a catch-all and a ":constraint" suffix is ignored.
func ConvertTemplate(template, controller, action string) (string, error) {
	template = strings.ReplaceAll(template, "[controller]", controller)
	template = strings.ReplaceAll(template, "[action]", action)
	if strings.ContainsAny(template, "[]") {
		return "", fmt.Errorf("route template %q has an unknown token", template)
	}

	trimmed := strings.Trim(template, "/")
	if trimmed == "" {
		return "/", nil
	}

	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if !strings.HasPrefix(part, "{") {
			if part == "" || strings.ContainsAny(part, "{}") {
				return "", fmt.Errorf("route template %q has a malformed segment %q", template, part)
			}
			continue
		}
		if !strings.HasSuffix(part, "}") {
			return "", fmt.Errorf("route template %q has a malformed parameter %q", template, part)
		}

		name := part[1 : len(part)-1]
		name, _, _ = strings.Cut(name, ":")
		switch {
		case strings.HasPrefix(name, "*"):
			if i != len(parts)-1 {
				return "", fmt.Errorf("route template %q: catch-all must be last", template)
			}
			parts[i] = "*" + strings.TrimPrefix(name, "*")
		case name == "" || strings.ContainsAny(name, "?={}"):
			return "", fmt.Errorf("route template %q has a malformed parameter %q", template, part)
		default:
			parts[i] = ":" + name
		}
	}
	return "/" + strings.Join(parts, "/"), nil
}
