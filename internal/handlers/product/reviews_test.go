package product

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundRating(t *testing.T) {
	require.Equal(t, 4.3, RoundRating(4.333333))
	require.Equal(t, 4.7, RoundRating(4.666666))
	require.Equal(t, 5.0, RoundRating(4.95))
	require.Equal(t, 0.0, RoundRating(0))
}
