package olwlg

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"olwlg-nametags/internal/models"
)

// The official results file interleaves trade lines with comments. A trade
// line reads:
//
//	(alice) 8012345-CATAN     receives (bob) 8054321-AZUL
//
// meaning alice sends away her listed item and receives item 8054321-AZUL
// from bob. Lines prefixed "#+ " carry the preamble text the trade moderator
// wants shown at the meetup; other "#" lines and "does not trade" lines are
// informational.
var (
	tradeLineRe = regexp.MustCompile(`^\(([^)]+)\)\s+(\S+)\s+receives\s+\(([^)]+)\)\s+(\S+)`)
	preambleRe  = regexp.MustCompile(`^#\+ (.*)`)
)

// ParseError reports a line that looks like a trade record but is missing
// one of its fields.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed trade line %d: %q", e.Line, e.Text)
}

// ParseResults parses official results text into the ordered trade records
// and the moderator preamble. Header and footer lines are skipped; a
// malformed trade line aborts parsing with a *ParseError.
func ParseResults(text string) ([]models.TradeRecord, []string, error) {
	var records []models.TradeRecord
	var preamble []string

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r") // CRLF results files
		if m := tradeLineRe.FindStringSubmatch(line); m != nil {
			records = append(records, models.TradeRecord{
				FromMember: m[3],
				ToMember:   m[1],
				ItemID:     m[4],
			})
			continue
		}

		if m := preambleRe.FindStringSubmatch(line); m != nil {
			preamble = append(preamble, m[1])
			continue
		}

		if looksLikeTradeLine(line) {
			return nil, nil, &ParseError{Line: i + 1, Text: line}
		}
	}

	return records, preamble, nil
}

// looksLikeTradeLine reports whether a line that failed the trade grammar
// was still meant to be one. "does not trade" lines share the leading
// parenthesized username but are expected and skipped.
func looksLikeTradeLine(line string) bool {
	if !strings.HasPrefix(line, "(") {
		return false
	}
	return strings.Contains(line, " receives")
}

// Traders returns the sorted distinct usernames appearing on either side of
// the records.
func Traders(records []models.TradeRecord) []string {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.FromMember] = struct{}{}
		seen[r.ToMember] = struct{}{}
	}

	traders := make([]string, 0, len(seen))
	for t := range seen {
		traders = append(traders, t)
	}
	sort.Strings(traders)
	return traders
}
