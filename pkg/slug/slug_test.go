package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Gold Ring", "gold-ring"},
		{"Silk Scarf (Blue)", "silk-scarf-blue"},
		{"ALL UPPER CASE", "all-upper-case"},
		{"Hello!!! World???", "hello-world"},
		{"price: $100", "price-100"},
		{"one & two", "one-two"},
		{"   hello world   ", "hello-world"},
		{"hello\t\tworld", "hello-world"},
		{"a---b", "a-b"},
		{"-hello-", "hello"},
		{"Crème Brûlée", "cr-me-br-l-e"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_EdgeCases(t *testing.T) {
	assert.Equal(t, "", Generate(""))
	assert.Equal(t, "", Generate("   "))
	assert.Equal(t, "", Generate("!!!"))
	assert.Equal(t, "a", Generate("a"))
	assert.Equal(t, "123", Generate("123"))
}

func TestGenerate_Idempotent(t *testing.T) {
	for _, in := range []string{"Gold Ring", "x__y", "--a--", "Zobo Drink 50cl"} {
		once := Generate(in)
		assert.Equal(t, once, Generate(once), in)
	}
}

func TestFileBase(t *testing.T) {
	assert.Equal(t, "gold-ring", FileBase("gold-ring"))
	assert.Equal(t, "item_7", FileBase("Item_7"))
	assert.Equal(t, "a-b", FileBase("a b"))
	assert.Equal(t, "12", FileBase("12"))
	assert.Equal(t, "", FileBase("///"))
}

func TestSegment(t *testing.T) {
	assert.Equal(t, "jewelries", Segment("jewelries-j1", 0))
	assert.Equal(t, "j1", Segment("jewelries-j1", 1))
	assert.Equal(t, "", Segment("single", 1))
	assert.Equal(t, "", Segment("a-b", -1))
}
