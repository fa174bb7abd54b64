package render

import (
	"sort"
	"strings"
	"unicode"

	"olwlg-nametags/internal/models"
)

// section is a contiguous slice of the sorted nametags whose recipients
// share a first-letter range. Meetup tables are split by these ranges so
// traders can find their labels quickly.
type section struct {
	start int // inclusive index into the sorted tags
	end   int // exclusive
}

// sortTags orders nametags by recipient username, then item token, so label
// sheets come out alphabetized for the pickup tables.
func sortTags(tags []models.Nametag) []models.Nametag {
	sorted := make([]models.Nametag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := strings.ToLower(sorted[i].Record.ToMember)
		b := strings.ToLower(sorted[j].Record.ToMember)
		if a != b {
			return a < b
		}
		return sorted[i].Record.ItemID < sorted[j].Record.ItemID
	})
	return sorted
}

// sections splits the sorted tags into at most groups ranges of roughly
// equal size, nudging each boundary forward until it no longer splits a
// first letter. Empty ranges (more groups than letters) are dropped.
func sections(tags []models.Nametag, groups int) []section {
	total := len(tags)
	if total == 0 || groups < 1 {
		return nil
	}

	cuts := make([]int, groups)
	for i := 1; i <= groups; i++ {
		cuts[i-1] = total * i / groups
	}
	cuts[groups-1] = total

	for i := 0; i < groups-1; i++ {
		for cuts[i] > 0 && cuts[i] < total &&
			firstLetter(tags[cuts[i]].Record.ToMember) == firstLetter(tags[cuts[i]-1].Record.ToMember) {
			cuts[i]++
		}
	}

	var secs []section
	start := 0
	for _, cut := range cuts {
		if cut > start {
			secs = append(secs, section{start: start, end: cut})
			start = cut
		}
	}
	return secs
}

// letterRange renders the "A-K" style header for a slice of sorted tags.
func letterRange(tags []models.Nametag) string {
	first := firstLetter(tags[0].Record.ToMember)
	last := firstLetter(tags[len(tags)-1].Record.ToMember)
	return string(first) + "-" + string(last)
}

// firstLetter returns the uppercased first rune of a username.
func firstLetter(name string) rune {
	for _, r := range name {
		return unicode.ToUpper(r)
	}
	return '?'
}

// sectionTraders returns the distinct recipients of a section's tags in
// order of first appearance, for the checklist pages.
func sectionTraders(tags []models.Nametag) []models.MemberInfo {
	seen := make(map[string]struct{}, len(tags))
	var traders []models.MemberInfo
	for _, t := range tags {
		if _, ok := seen[t.Record.ToMember]; ok {
			continue
		}
		seen[t.Record.ToMember] = struct{}{}
		traders = append(traders, t.Recipient)
	}
	return traders
}
