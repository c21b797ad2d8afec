package extract

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
		{"plain", "hello world", "hello world"},
		{"collapses spaces and tabs", "a \t  b\t\tc", "a b c"},
		{"strips control characters", "a\x00b\x07c\x1bd", "abcd"},
		{"keeps single blank lines", "a\n\nb", "a\n\nb"},
		{"collapses blank line runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"trims edges", "  \n\n hi \n\n ", "hi"},
		{"carriage returns become spaces", "a\r\nb", "a\nb"},
		{"whitespace only", " \t \n \x0b ", ""},
		{"unicode survives", "café — naïve", "café — naïve"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeText(tc.in))
		})
	}
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Chapter One", firstHeading("\n\nChapter One\nbody text"))
	assert.Equal(t, "", firstHeading("   \n \n"))

	heading := firstHeading(strings.Repeat("y", 200))
	assert.Len(t, []rune(heading), 80)
}
