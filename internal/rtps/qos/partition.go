package qos

import "regexp"

// PartitionsMatch reports whether any name in a matches any name in b,
// where each name may be a literal or a shell-style glob (spec.md §4.7:
// "regex-or-literal match between the two partition name strings"). An
// empty list on either side is treated as the single default partition "".
func PartitionsMatch(a, b []string) bool {
	if len(a) == 0 {
		a = []string{""}
	}
	if len(b) == 0 {
		b = []string{""}
	}
	for _, x := range a {
		for _, y := range b {
			if partitionNameMatch(x, y) {
				return true
			}
		}
	}
	return false
}

func partitionNameMatch(x, y string) bool {
	if x == y {
		return true
	}
	if matched, err := globMatch(x, y); err == nil && matched {
		return true
	}
	if matched, err := globMatch(y, x); err == nil && matched {
		return true
	}
	return false
}

// globMatch treats pattern as a shell glob ('*' and '?') if it contains
// either wildcard, else it's only a literal match (already handled by the
// caller's direct equality check).
func globMatch(pattern, s string) (bool, error) {
	hasWildcard := false
	for _, r := range pattern {
		if r == '*' || r == '?' {
			hasWildcard = true
			break
		}
	}
	if !hasWildcard {
		return false, nil
	}
	re, err := regexp.Compile("^" + globToRegexp(pattern) + "$")
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

func globToRegexp(glob string) string {
	out := make([]byte, 0, len(glob)*2)
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			out = append(out, '.', '*')
		case '?':
			out = append(out, '.')
		case '.', '+', '(', ')', '|', '^', '$', '[', ']', '{', '}', '\\':
			out = append(out, '\\', c)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
