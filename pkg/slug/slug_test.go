package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baonguyen/agora/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "General Discussion", "general-discussion"},
		{"accents", "Café Culture", "cafe-culture"},
		{"punctuation", "What's new in Go 1.24?", "what-s-new-in-go-1-24"},
		{"multi_space", "too   many   spaces", "too-many-spaces"},
		{"leading_trailing", "  -- padded --  ", "padded"},
		{"already_slug", "already-a-slug", "already-a-slug"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
