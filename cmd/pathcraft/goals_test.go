package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmDeletion(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes short", "y\n", true},
		{"yes word", "yes\n", true},
		{"yes upper", "Y\n", true},
		{"no", "n\n", false},
		{"empty line defaults to no", "\n", false},
		{"eof declines", "", false},
		{"garbage declines", "sure\n", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder
			got := confirmDeletion(strings.NewReader(tc.input), &out, "Delete 'Learn Go' and all of its tasks?")
			assert.Equal(t, tc.want, got)
			assert.Contains(t, out.String(), "[y/N]")
		})
	}
}
