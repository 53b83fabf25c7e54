// Package cli provides the command-line framework for kestrel: colored
// help grouped by workflow, subcommand dispatch, and "did you mean?"
// suggestions that understand habitual git shorthands.
package cli

// gitShorthands maps abbreviations and synonyms that git users type out
// of habit to the kestrel command they correspond to. Edit distance alone
// cannot bridge these ("co" is closer to "commit" than to "checkout"),
// so they are resolved before the fuzzy match.
var gitShorthands = map[string]string{
	"st":     "status",
	"stat":   "status",
	"ci":     "commit",
	"co":     "checkout",
	"br":     "branch",
	"sw":     "checkout",
	"switch": "checkout",
	"stage":  "add",
}

// Suggest returns the best matching candidate for input: a known git
// shorthand first, then the closest candidate within the edit distance
// threshold max(2, len(input)/3). Returns "" when nothing is close enough.
func Suggest(input string, candidates []string) string {
	if input == "" {
		return ""
	}

	if target, ok := gitShorthands[input]; ok {
		for _, c := range candidates {
			if c == target {
				return target
			}
		}
	}

	threshold := max(2, len(input)/3)

	best := ""
	bestDist := threshold + 1

	for _, c := range candidates {
		d := levenshtein(input, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}

	return best
}

// levenshtein computes the edit distance between two strings with the
// classic two-row dynamic program.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
