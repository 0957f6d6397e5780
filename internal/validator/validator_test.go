package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Simple", "Maria", true},
		{"Two Words", "María López", true},
		{"Relationship Phrase", "mi abuelo", true},
		{"N Tilde", "Muñoz", true},
		{"Diaeresis", "Agüero", true},
		{"Decomposed Accent", "Mari\u0301a", true},
		{"Minimum Length", "Al", true},
		{"Maximum Length", strings.Repeat("a", 50), true},
		{"Maximum Length Accented", strings.Repeat("é", 50), true},
		{"Too Short", "A", false},
		{"Empty", "", false},
		{"Too Long", strings.Repeat("a", 51), false},
		{"Digits", "Maria2", false},
		{"Punctuation", "O'Brien", false},
		{"Hyphen", "Ana-Maria", false},
		{"Other Script Letter", "Zoë", false},
		{"Tab", "Ana\tMaria", false},
		{"Only Spaces", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidName(tt.input), "IsValidName(%q)", tt.input)
		})
	}
}

func TestIsValidShirtSize(t *testing.T) {
	for _, size := range ShirtSizes() {
		variants := []string{
			size,
			strings.ToLower(size),
			"  " + size + "  ",
		}
		for _, v := range variants {
			assert.True(t, IsValidShirtSize(v), "expected %q to be accepted", v)
		}
	}

	rejected := []string{"XL", "L", "", "grand", "XGRANDE", "X  GRANDE", "chico mediano", "jóvenes chico"}
	for _, v := range rejected {
		assert.False(t, IsValidShirtSize(v), "expected %q to be rejected", v)
	}
}

func TestNormalizeShirtSize(t *testing.T) {
	assert.Equal(t, "GRANDE", NormalizeShirtSize(" grande "))
	assert.True(t, IsValidShirtSize("Xx Grande"))
	assert.Equal(t, "JOVENES MEDIANO", NormalizeShirtSize("Jovenes mediano"))
}

func TestShirtSizes_ReturnsCopy(t *testing.T) {
	sizes := ShirtSizes()
	assert.Len(t, sizes, 8)
	sizes[0] = "MUTATED"
	assert.Equal(t, "CHICO", ShirtSizes()[0])
}
