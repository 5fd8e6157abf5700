package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1), "debug disabled at warn")

	_, err = New("development", "loud")
	assert.Error(t, err)
}

func TestMaskDSN(t *testing.T) {
	cases := map[string]string{
		"host=db user=app password=s3cret dbname=rentals":  "host=db user=app password=*** dbname=rentals",
		"postgres://app:s3cret@db:5432/rentals?sslmode=disable": "postgres://app:%2A%2A%2A@db:5432/rentals?sslmode=disable",
		"postgres://app@db/rentals":                           "postgres://app@db/rentals",
	}
	for in, want := range cases {
		assert.Equal(t, want, maskDSN(in), in)
	}
}
