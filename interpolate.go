// Interpolate `${foo}` style strings.

package flavorbuild

import (
	"strings"

	"github.com/pkg/errors"
)

/*
 * str : (s)*
 *     ;
 * s : (* empty *)
 *   | <literal>
 *   | $$
 *   | ${<literal>}
 *   ;
 */

const maxInterpolationDepth = 32

// Interpolate expands `${name}` in `s` using `dict`. Undefined names expand to "".
func Interpolate(s string, dict map[string]string) (string, error) {
	return interpolate(s, dict, false, 0)
}

// StrictInterpolate is Interpolate failing on undefined names.
func StrictInterpolate(s string, dict map[string]string) (string, error) {
	return interpolate(s, dict, true, 0)
}

func interpolate(s string, dict map[string]string, strict bool, depth int) (string, error) {
	if depth > maxInterpolationDepth {
		return "", errors.Errorf("too deep interpolation in \"%s\" (recursive definition?)", s)
	}
	idx := strings.Index(s, "$")
	if idx < 0 {
		// No `$` in `s`
		return s, nil
	}
	var b strings.Builder
	for 0 <= idx {
		b.WriteString(s[:idx])
		rest := s[idx+1:]
		switch {
		case rest == "":
			// Terminating `$` is a literal.
			b.WriteString("$")
			s = ""
		case rest[0] == '$':
			b.WriteString("$")
			s = rest[1:]
		case rest[0] == '{':
			end := strings.Index(rest, "}")
			if end < 0 {
				return "", errors.Errorf("unmatched \"{\" in \"%s\"", s)
			}
			name := rest[1:end]
			value, ok := dict[name]
			if !ok && strict {
				return "", errors.Errorf("variable \"%s\" is not defined", name)
			}
			expanded, err := interpolate(value, dict, strict, depth+1)
			if err != nil {
				return "", err
			}
			b.WriteString(expanded)
			s = rest[end+1:]
		default:
			return "", errors.Errorf("invalid \"$\" in \"%s\" (use \"$$\" or \"${name}\")", s)
		}
		idx = strings.Index(s, "$")
	}
	b.WriteString(s)
	return b.String(), nil
}
