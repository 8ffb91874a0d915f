package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Run("Accepts both names regardless of case", func(t *testing.T) {
		for input, want := range map[string]Category{
			"Shrek":   Shrek,
			"shrek":   Shrek,
			" SIGMA ": Sigma,
			"Sigma":   Sigma,
		} {
			got, err := ParseCategory(input)
			require.NoError(t, err, input)
			assert.Equal(t, want, got, input)
		}
	})

	t.Run("Rejects anything else", func(t *testing.T) {
		_, err := ParseCategory("Donkey")
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})
}

func TestCategory(t *testing.T) {
	t.Run("Opposite swaps the two memes", func(t *testing.T) {
		assert.Equal(t, Sigma, Shrek.Opposite())
		assert.Equal(t, Shrek, Sigma.Opposite())
		assert.Equal(t, Category(0), Category(0).Opposite())
	})

	t.Run("Text round trip", func(t *testing.T) {
		text, err := Sigma.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "Sigma", string(text))

		var c Category
		require.NoError(t, c.UnmarshalText(text))
		assert.Equal(t, Sigma, c)
	})

	t.Run("Invalid category does not encode", func(t *testing.T) {
		_, err := Category(7).MarshalText()
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("Versus")
	require.NoError(t, err)
	assert.Equal(t, Versus, mode)

	mode, err = ParseMode("solo")
	require.NoError(t, err)
	assert.Equal(t, Solo, mode)

	_, err = ParseMode("coop")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestPlayer_Other(t *testing.T) {
	assert.Equal(t, PlayerTwo, PlayerOne.Other())
	assert.Equal(t, PlayerOne, PlayerTwo.Other())
	assert.Equal(t, NoPlayer, NoPlayer.Other())
}
