package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases and trims", in: "  Whole   FOODS\tMarket ", want: "whole foods market"},
		{name: "empty", in: "   ", want: ""},
		{name: "truncates", in: strings.Repeat("ab", 80), want: strings.Repeat("ab", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"uber", "eats", "sf", "4411"}, Tokenize("UBER*EATS sf-4411"))
	assert.Empty(t, Tokenize(" -- "))
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  []string
		limit int
	}{
		{name: "drops stopwords numbers and short tokens", in: "POS purchase at the Bakery 1234 ok bread", limit: 5, want: []string{"bakery", "bread"}},
		{name: "deduplicates", in: "coffee Coffee COFFEE beans", limit: 5, want: []string{"coffee", "beans"}},
		{name: "limit", in: "alpha beta gamma delta", limit: 2, want: []string{"alpha", "beta"}},
		{name: "zero limit", in: "alpha beta", limit: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.in, tt.limit))
		})
	}
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.False(t, IsStopword("pizza"))
}
