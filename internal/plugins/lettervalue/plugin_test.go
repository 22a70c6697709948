package lettervalue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopuzzle/internal/registry"
	"geopuzzle/internal/scoring"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want Encoding
	}{
		{
			in: "Café",
			want: Encoding{
				Folded:   "CAFE",
				Text:     "3 1 6 5",
				Values:   [][]int{{3, 1, 6, 5}},
				WordSums: []int{15},
				Total:    15,
			},
		},
		{
			in: "ab, cd",
			want: Encoding{
				Folded:   "AB, CD",
				Text:     "1 2 - 3 4",
				Values:   [][]int{{1, 2}, {3, 4}},
				WordSums: []int{3, 7},
				Total:    10,
			},
		},
		{
			in:   "123",
			want: Encoding{Folded: "123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Encode(tt.in)); diff != "" {
				t.Errorf("Encode(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestDigitalRoot(t *testing.T) {
	for n, want := range map[int]int{0: 0, 9: 9, 10: 1, 15: 6, 99: 9, 1234: 1, -38: 2} {
		assert.Equal(t, want, DigitalRoot(n), n)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "ELEVE A L'ECOLE", Fold("élève à l'école"))
}

func TestExecute(t *testing.T) {
	p := New()
	exec := func(in registry.Inputs) *registry.Response {
		return p.Execute(&registry.Request{Inputs: in, Scorer: scoring.Default()})
	}

	t.Run("decode", func(t *testing.T) {
		resp := exec(registry.Inputs{"text": "8 5 12 12 15"})
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "HELLO", resp.Results[0].TextOutput)
	})

	t.Run("decode out of range", func(t *testing.T) {
		resp := exec(registry.Inputs{"text": "8 27"})
		assert.Equal(t, registry.StatusSuccess, resp.Status)
		assert.Empty(t, resp.Results)
	})

	t.Run("encode", func(t *testing.T) {
		resp := exec(registry.Inputs{"text": "Café", "mode": "encode"})
		require.Len(t, resp.Results, 1)
		res := resp.Results[0]
		assert.Equal(t, "3 1 6 5", res.TextOutput)
		assert.Equal(t, 15, res.Metadata["total"])
		assert.Equal(t, 6, res.Metadata["digital_root"])
		assert.Equal(t, []int{15}, res.Metadata["word_sums"])
	})

	t.Run("encode without letters", func(t *testing.T) {
		resp := exec(registry.Inputs{"text": "42", "mode": "encode"})
		assert.Equal(t, registry.StatusError, resp.Status)
	})
}
