package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entity  Entity
		wantErr error
	}{
		{
			name:   "valid",
			entity: Entity{SourceID: SourcePhelix, RawName: "Jane Doe", DocumentRefs: []string{"EFTA00001"}},
		},
		{
			name:    "unknown source",
			entity:  Entity{SourceID: "wiki", RawName: "Jane Doe", DocumentRefs: []string{"x"}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "blank name",
			entity:  Entity{SourceID: SourcePhelix, RawName: "  ", DocumentRefs: []string{"x"}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "no refs",
			entity:  Entity{SourceID: SourcePhelix, RawName: "Jane Doe"},
			wantErr: ErrMissingDocumentRef,
		},
		{
			name:    "only blank refs",
			entity:  Entity{SourceID: SourcePhelix, RawName: "Jane Doe", DocumentRefs: []string{"", " "}},
			wantErr: ErrMissingDocumentRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEntity_Key(t *testing.T) {
	a := Entity{SourceID: SourceLMSBand, RawName: "Jane   DOE"}
	b := Entity{SourceID: SourceLMSBand, RawName: "jane doe"}
	c := Entity{SourceID: SourcePhelix, RawName: "jane doe"}

	assert.Equal(t, "lmsband/jane doe", a.Key())
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())

	t.Run("same name in one source split by document", func(t *testing.T) {
		first := Entity{SourceID: SourceDOJ, RawName: "John Smith", DocumentRefs: []string{" ", "EFTA1", "EFTA9"}}
		second := Entity{SourceID: SourceDOJ, RawName: "John  Smith", DocumentRefs: []string{"EFTA2"}}
		again := Entity{SourceID: SourceDOJ, RawName: "john smith", DocumentRefs: []string{"EFTA1"}}

		assert.Equal(t, "doj/john smith#EFTA1", first.Key())
		assert.NotEqual(t, first.Key(), second.Key())
		assert.Equal(t, first.Key(), again.Key())
	})
}

func TestEntity_WithCanonicalName(t *testing.T) {
	e := Entity{SourceID: SourceDOJ, RawName: "Doe, Jane"}
	out := e.WithCanonicalName("jane doe")

	assert.Equal(t, "jane doe", out.CanonicalName)
	assert.Empty(t, e.CanonicalName)
}
