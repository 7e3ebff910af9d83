package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNicknameTable_Default(t *testing.T) {
	table := DefaultNicknames()

	assert.GreaterOrEqual(t, table.Len(), 90)
	assert.Equal(t, []string{"william"}, table.Formal("bill"))
	assert.Equal(t, []string{"albert", "alan", "alfred"}, table.Formal("al"))
	assert.Contains(t, table.Nicknames("william"), "bill")
	assert.Contains(t, table.Nicknames("william"), "billy")
	assert.Empty(t, table.Formal("zebediah"))
}

func TestNicknameTable_Equivalents(t *testing.T) {
	table := NewNicknameTable(map[string][]string{
		"bill":  {"william"},
		"billy": {"william"},
		"will":  {"william"},
		"ted":   {"edward", "theodore"},
		"ed":    {"edward"},
	})

	tests := []struct {
		name string
		want []string
	}{
		{"bill", []string{"bill", "billy", "will", "william"}},
		{"william", []string{"bill", "billy", "will", "william"}},
		{"ted", []string{"ed", "edward", "ted", "theodore"}},
		{"edward", []string{"ed", "edward", "ted"}},
		{"zed", []string{"zed"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Equivalents(tt.name))
		})
	}
}

func TestNicknameTable_InputCopied(t *testing.T) {
	pairs := map[string][]string{"bob": {"robert"}}
	table := NewNicknameTable(pairs)
	pairs["bob"][0] = "bobert"

	assert.Equal(t, []string{"robert"}, table.Formal("bob"))
}

func TestNameNormalizer_Parse(t *testing.T) {
	n := NewNameNormalizer(nil)

	tests := []struct {
		raw        string
		wantTokens []string
		wantSuffix string
	}{
		{"John Smith", []string{"john", "smith"}, ""},
		{"  JOHN   SMITH ", []string{"john", "smith"}, ""},
		{"Smith, John", []string{"john", "smith"}, ""},
		{"Smith, John, Jr.", []string{"john", "smith"}, "jr"},
		{"John Smith Jr.", []string{"john", "smith"}, "jr"},
		{"John Smith Junior", []string{"john", "smith"}, "jr"},
		{"John Smith III", []string{"john", "smith"}, "iii"},
		{"John Smith, Esq.", []string{"john", "smith"}, ""},
		{"Dr. Jane Doe, M.D.", []string{"jane", "doe"}, ""},
		{"Sen. John Kennedy", []string{"john", "kennedy"}, ""},
		{"The Honorable Jane Doe", []string{"jane", "doe"}, ""},
		{"John (Jack) Smith", []string{"john", "smith"}, ""},
		{"José Álvarez", []string{"jose", "alvarez"}, ""},
		{"Seán O'Brien", []string{"sean", "obrien"}, ""},
		{"Mary-Kate Jones", []string{"mary", "kate", "jones"}, ""},
		{"Judge", []string{"judge"}, ""},
		{"Mr.", []string{"mr"}, ""},
		{"Jane V", []string{"jane", "v"}, ""},
		{"Robert Smith V", []string{"robert", "smith"}, "v"},
		{"", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := n.Parse(tt.raw)
			if tt.wantTokens == nil {
				assert.True(t, got.IsEmpty())
			} else {
				assert.Equal(t, tt.wantTokens, got.Tokens)
			}
			assert.Equal(t, tt.wantSuffix, got.Suffix)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestNameNormalizer_Normalize(t *testing.T) {
	n := NewNameNormalizer(nil)

	tests := []struct {
		raw  string
		want string
	}{
		{"Bill Clinton", "william clinton"},
		{"William Clinton", "william clinton"},
		{"Clinton, Bill", "william clinton"},
		{"Bob Smith Jr.", "robert smith jr"},
		{"Robert Smith, Sr.", "robert smith sr"},
		{"Dr. José García", "jose garcia"},
		{"  ", ""},
		{"!!!", "!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNameNormalizer_NormalizeIsIdempotent(t *testing.T) {
	n := NewNameNormalizer(nil)

	for _, raw := range []string{"Bill Clinton", "Smith, John, Jr.", "Dr. Jane Doe", "Peggy Sue Carter III"} {
		once := n.Normalize(raw)
		assert.Equal(t, once, n.Normalize(once), raw)
	}
}

func TestNameNormalizer_SuffixNeverCollapses(t *testing.T) {
	n := NewNameNormalizer(nil)

	assert.NotEqual(t, n.Normalize("John Smith Jr."), n.Normalize("John Smith Sr."))
	assert.NotEqual(t, n.Normalize("John Smith"), n.Normalize("John Smith III"))
}

func TestNameNormalizer_Variants(t *testing.T) {
	n := NewNameNormalizer(NewNicknameTable(map[string][]string{
		"bill": {"william"},
	}))

	t.Run("nickname expansion", func(t *testing.T) {
		got := n.Variants(n.Parse("Bill Clinton"))
		assert.Equal(t, []string{"bill clinton", "william clinton"}, got)
	})

	t.Run("middle name dropped", func(t *testing.T) {
		got := n.Variants(n.Parse("William Jefferson Clinton"))
		assert.Equal(t, []string{
			"bill clinton",
			"bill jefferson clinton",
			"william clinton",
			"william jefferson clinton",
		}, got)
	})

	t.Run("suffix excluded", func(t *testing.T) {
		got := n.Variants(n.Parse("Bill Smith Jr."))
		for _, v := range got {
			assert.NotContains(t, v, "jr")
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, n.Variants(n.Parse("")))
	})
}

func TestNameNormalizer_ConcurrentUse(t *testing.T) {
	n := NewNameNormalizer(nil)
	done := make(chan string, 32)

	for i := 0; i < 32; i++ {
		go func() {
			done <- n.Normalize("Bill Clinton")
		}()
	}
	for i := 0; i < 32; i++ {
		require.Equal(t, "william clinton", <-done)
	}
}
