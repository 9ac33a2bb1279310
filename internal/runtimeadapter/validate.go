package runtimeadapter

import "github.com/ifruncillo/llmsandbox/pkg/result"

// ValidateCode runs the adapter's best-effort syntax check. It never
// executes the guest and is not a substitute for the real interpreter's
// own parser — it only catches the cheapest, most common authoring
// mistakes before spending a fuel budget on them. An unknown runtime is
// reported as valid: there's nothing to check it against.
func ValidateCode(rt result.RuntimeType, code string) bool {
	adapter := ForRuntime(rt)
	if adapter == nil {
		return true
	}
	return adapter.ValidateCode(code)
}

// balancedBrackets reports whether every closing bracket in pairs (keyed
// closing -> opening) matches the most recently opened bracket, ignoring
// brackets that appear inside string literals delimited by a quote
// character. It is a heuristic, not a parser: it cannot catch a mismatched
// keyword or a missing colon.
func balancedBrackets(code string, pairs map[rune]rune) bool {
	var stack []rune
	var inString rune
	escaped := false

	for _, r := range code {
		if inString != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == inString:
				inString = 0
			}
			continue
		}

		switch r {
		case '"', '\'', '`':
			inString = r
			continue
		}

		if open, isClose := pairs[r]; isClose {
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return false
			}
			stack = stack[:len(stack)-1]
			continue
		}
		for _, open := range pairs {
			if r == open {
				stack = append(stack, r)
				break
			}
		}
	}
	return len(stack) == 0 && inString == 0
}
