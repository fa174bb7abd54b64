package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olwlg-nametags/internal/models"
)

func tagFor(username string) models.Nametag {
	return models.Nametag{
		Record:    models.TradeRecord{ToMember: username, FromMember: "sender", ItemID: "1-X"},
		Recipient: models.MemberInfo{ID: username, DisplayName: username},
		Sender:    models.MemberInfo{ID: "sender", DisplayName: "Sender"},
		Item:      models.ItemInfo{ID: "1-X", DisplayName: "Some Game"},
	}
}

func tagsFor(usernames ...string) []models.Nametag {
	tags := make([]models.Nametag, 0, len(usernames))
	for _, u := range usernames {
		tags = append(tags, tagFor(u))
	}
	return tags
}

func TestSortTags(t *testing.T) {
	tags := tagsFor("zed", "Alice", "mike")

	sorted := sortTags(tags)

	assert.Equal(t, "Alice", sorted[0].Record.ToMember)
	assert.Equal(t, "mike", sorted[1].Record.ToMember)
	assert.Equal(t, "zed", sorted[2].Record.ToMember)
	// Input order is untouched.
	assert.Equal(t, "zed", tags[0].Record.ToMember)
}

func TestSections(t *testing.T) {
	t.Run("NeverSplitsAFirstLetter", func(t *testing.T) {
		// Six a-names then three others: the naive thirds boundary falls
		// inside the a-run and must be pushed forward.
		tags := sortTags(tagsFor("a1", "a2", "a3", "a4", "a5", "a6", "bob", "carol", "dave"))

		secs := sections(tags, 3)

		require.NotEmpty(t, secs)
		for _, sec := range secs {
			if sec.start > 0 {
				prev := firstLetter(tags[sec.start-1].Record.ToMember)
				first := firstLetter(tags[sec.start].Record.ToMember)
				assert.NotEqual(t, prev, first, "section boundary splits letter %c", prev)
			}
		}
	})

	t.Run("CoversAllTags", func(t *testing.T) {
		tags := sortTags(tagsFor("alice", "bob", "carol", "dave", "erin", "frank"))

		secs := sections(tags, 3)

		total := 0
		for i, sec := range secs {
			assert.Less(t, sec.start, sec.end)
			if i > 0 {
				assert.Equal(t, secs[i-1].end, sec.start)
			}
			total += sec.end - sec.start
		}
		assert.Equal(t, len(tags), total)
	})

	t.Run("MoreGroupsThanLetters", func(t *testing.T) {
		tags := sortTags(tagsFor("a1", "a2", "a3"))

		secs := sections(tags, 3)

		require.Len(t, secs, 1, "a single-letter pool collapses to one section")
		assert.Equal(t, 0, secs[0].start)
		assert.Equal(t, 3, secs[0].end)
	})

	t.Run("SingleGroup", func(t *testing.T) {
		tags := sortTags(tagsFor("alice", "bob"))

		secs := sections(tags, 1)

		require.Len(t, secs, 1)
		assert.Equal(t, section{start: 0, end: 2}, secs[0])
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, sections(nil, 3))
	})
}

func TestLetterRange(t *testing.T) {
	tags := sortTags(tagsFor("alice", "bob", "karl"))
	assert.Equal(t, "A-K", letterRange(tags))
}

func TestSectionTraders(t *testing.T) {
	tags := sortTags(tagsFor("alice", "alice", "bob"))

	traders := sectionTraders(tags)

	require.Len(t, traders, 2)
	assert.Equal(t, "alice", traders[0].ID)
	assert.Equal(t, "bob", traders[1].ID)
}

func TestSectionsScaleUp(t *testing.T) {
	// A larger pool with uneven letter runs still partitions cleanly.
	var names []string
	for letter := 'a'; letter <= 'f'; letter++ {
		for i := 0; i < 7; i++ {
			names = append(names, fmt.Sprintf("%c_trader%d", letter, i))
		}
	}
	tags := sortTags(tagsFor(names...))

	secs := sections(tags, 4)

	total := 0
	for _, sec := range secs {
		total += sec.end - sec.start
	}
	assert.Equal(t, len(tags), total)
}
