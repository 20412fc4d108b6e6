package shader

import (
	"strconv"
	"strings"
)

// Expander inlines "#include" lines. Each included file starts with
// LineReset and is followed by a "#line N" marker that restores the
// numbering of the including file.
type Expander struct {
	Registry *Registry
	// MaxDepth bounds include nesting. Zero means unlimited.
	MaxDepth int
}

// Expand resolves <name>.glsl and returns its expanded text.
func (e *Expander) Expand(name string) (string, bool, error) {
	src, found, err := e.Registry.Resolve(name)
	if err != nil || !found {
		return "", found, err
	}
	var b strings.Builder
	if err := e.expand(&b, src, []string{name}); err != nil {
		return "", true, err
	}
	return b.String(), true, nil
}

// ExpandSource expands source as if it were the file name.
func (e *Expander) ExpandSource(name, source string) (string, error) {
	var b strings.Builder
	if err := e.expand(&b, source, []string{name}); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (e *Expander) expand(out *strings.Builder, source string, chain []string) error {
	lines := strings.Split(source, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		list, ok := strings.CutPrefix(line, IncludePrefix)
		if !ok {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		for _, name := range strings.Split(list, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			next := append(chain[:len(chain):len(chain)], name)
			if e.MaxDepth > 0 && len(chain) > e.MaxDepth {
				return &IncludeError{Chain: next, Err: ErrIncludeDepth}
			}
			src, found, err := e.Registry.Resolve(name)
			if err != nil {
				return err
			}
			if !found {
				Logger().Warn("shader: include not found", "include", name, "from", chain[len(chain)-1])
				continue
			}
			out.WriteString(LineReset)
			if err := e.expand(out, src, next); err != nil {
				return err
			}
		}
		out.WriteString("#line ")
		out.WriteString(strconv.Itoa(i + 2))
		out.WriteByte('\n')
	}
	return nil
}
