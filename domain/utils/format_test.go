package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0"},
		{500, "$5"},
		{1_050_000, "$10500"},
		{1999, "$19.99"},
		{101, "$1.01"},
		{-2500, "-$25"},
		{-1999, "-$19.99"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCents(tc.cents), "cents=%d", tc.cents)
	}
}
