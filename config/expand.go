package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandStrict expands ${VAR} references in s from vars.
//
// Semantics:
//   - Only the braced form is expanded; a bare $VAR is kept as written.
//   - A reference to a variable missing from vars is an error.
//   - `$$` emits a literal `$`.
func expandStrict(s string, vars map[string]string) (string, error) {
	const dollarSentinel = "\x00KULTURPOOL_CONFIG_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	var missing []string
	for _, match := range envRefPattern.FindAllStringSubmatch(s, -1) {
		key := match[1]
		if _, ok := vars[key]; !ok && !slices.Contains(missing, key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: missing environment variables: %s", ErrParse, strings.Join(missing, ", "))
	}

	s = envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Expand(ref, func(key string) string { return vars[key] })
	})
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}
