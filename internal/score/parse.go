package score

import (
	"regexp"
	"strconv"
	"strings"
)

// Reply shapes seen in the wild, most explicit first: "Score: 7", "7/10",
// a standalone digit, "7 out of 10".
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:score|rating):\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*/\s*10`),
	regexp.MustCompile(`(?:^|\s)(\d+)(?:\s|$)`),
	regexp.MustCompile(`(\d+)\s*out\s*of\s*10`),
}

var bareScore = regexp.MustCompile(`\b([1-9]|10)\b`)

// ParseScore extracts a humor score from a model reply. Only values already
// inside [1,10] are accepted; anything else ("0", "15", prose) is rejected
// rather than clamped.
func ParseScore(reply string) (int, bool) {
	lower := strings.ToLower(reply)

	for _, pat := range scorePatterns {
		m := pat.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= 1 && n <= 10 {
			return n, true
		}
	}

	if m := bareScore.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}

	return 0, false
}
