package olwlg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olwlg-nametags/internal/models"
)

const sampleResults = `# Official results for trade 12345
# Generated by OLWLG
#+ Welcome to the Spring math trade!
#+ Pickup starts at noon, hall B.
(alice) 8000001-CATAN             receives (bob) 8000002-AZUL
(bob) 8000002-AZUL                receives (carol) 8000003-WINGSPAN
(carol) 8000003-WINGSPAN          receives (alice) 8000001-CATAN
(dave) 8000004-ROOT               does not trade

# 3 trades fulfilled
`

func TestParseResults(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		records, preamble, err := ParseResults(sampleResults)

		require.NoError(t, err)
		assert.Equal(t, []models.TradeRecord{
			{FromMember: "bob", ToMember: "alice", ItemID: "8000002-AZUL"},
			{FromMember: "carol", ToMember: "bob", ItemID: "8000003-WINGSPAN"},
			{FromMember: "alice", ToMember: "carol", ItemID: "8000001-CATAN"},
		}, records)
		assert.Equal(t, []string{
			"Welcome to the Spring math trade!",
			"Pickup starts at noon, hall B.",
		}, preamble)
	})

	t.Run("PreservesTriples", func(t *testing.T) {
		records, _, err := ParseResults(sampleResults)
		require.NoError(t, err)

		triples := make(map[[3]string]struct{}, len(records))
		for _, r := range records {
			triples[[3]string{r.FromMember, r.ToMember, r.ItemID}] = struct{}{}
		}
		assert.Len(t, triples, 3, "every non-header trade line yields a distinct triple")
	})

	t.Run("MalformedTradeLine", func(t *testing.T) {
		text := "# header\n(alice) receives (bob)\n"

		records, preamble, err := ParseResults(text)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 2, parseErr.Line)
		assert.Contains(t, parseErr.Text, "(alice)")
		assert.Nil(t, records)
		assert.Nil(t, preamble)
	})

	t.Run("MissingItemField", func(t *testing.T) {
		_, _, err := ParseResults("(alice) 8000001-CATAN receives (bob)\n")

		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		records, preamble, err := ParseResults("")

		assert.NoError(t, err)
		assert.Empty(t, records)
		assert.Empty(t, preamble)
	})

	t.Run("CRLFInput", func(t *testing.T) {
		text := "#+ Hall B at noon.\r\n(alice) 1-CATAN receives (bob) 2-AZUL\r\n"

		records, preamble, err := ParseResults(text)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "2-AZUL", records[0].ItemID)
		assert.Equal(t, []string{"Hall B at noon."}, preamble, "no trailing carriage return on preamble lines")
	})

	t.Run("SkipsDoesNotTradeLines", func(t *testing.T) {
		records, _, err := ParseResults("(dave) 8000004-ROOT does not trade\n")

		assert.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestTraders(t *testing.T) {
	records := []models.TradeRecord{
		{FromMember: "bob", ToMember: "alice", ItemID: "1-A"},
		{FromMember: "carol", ToMember: "bob", ItemID: "2-B"},
	}

	traders := Traders(records)

	assert.Equal(t, []string{"alice", "bob", "carol"}, traders)
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Line: 7, Text: "(x) receives"}
	assert.Contains(t, err.Error(), "line 7")
	assert.True(t, errors.As(error(err), new(*ParseError)))
}
