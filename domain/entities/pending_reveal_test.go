package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingReveal_TruncatedQuestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		question string
		max      int
		want     string
	}{
		{
			name:     "short question unchanged",
			question: "Is water wet?",
			max:      200,
			want:     "Is water wet?",
		},
		{
			name:     "long question truncated with ellipsis",
			question: "aaaaabbbbb",
			max:      5,
			want:     "aaaaa...",
		},
		{
			name:     "exact length unchanged",
			question: "abcde",
			max:      5,
			want:     "abcde",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reveal := &PendingReveal{Question: tt.question}
			assert.Equal(t, tt.want, reveal.TruncatedQuestion(tt.max))
		})
	}
}
