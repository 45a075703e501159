package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasanatService_PreviewRange(t *testing.T) {
	s, err := NewHasanatService("")
	require.NoError(t, err)

	fatihah1 := s.counts["1:1"]
	require.Greater(t, fatihah1, 0, "bundled table must cover surah 1")

	t.Run("single ayah", func(t *testing.T) {
		p, err := s.PreviewRange(1, 1, 1)
		assert.NoError(t, err)
		assert.Equal(t, fatihah1, p.Letters)
		assert.Equal(t, fatihah1*HasanatPerLetter, p.Hasanat)
	})

	t.Run("range sums inclusive bounds", func(t *testing.T) {
		expected := 0
		for ayah := 1; ayah <= 7; ayah++ {
			expected += s.counts[keyFor(1, ayah)]
		}

		p, err := s.PreviewRange(1, 1, 7)
		assert.NoError(t, err)
		assert.Equal(t, expected, p.Letters)
		assert.Equal(t, expected*HasanatPerLetter, p.Hasanat)
	})

	t.Run("missing keys contribute zero, not an error", func(t *testing.T) {
		p, err := s.PreviewRange(2, 1, 5)
		assert.NoError(t, err)
		assert.Equal(t, 0, p.Letters)
		assert.Equal(t, 0, p.Hasanat)
	})

	t.Run("range straddling missing ayat", func(t *testing.T) {
		// Surah 1 has 7 ayat in the table; 8 and up contribute nothing.
		full, err := s.PreviewRange(1, 1, 7)
		assert.NoError(t, err)
		padded, err := s.PreviewRange(1, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, full.Letters, padded.Letters)
	})

	t.Run("invalid ranges", func(t *testing.T) {
		_, err := s.PreviewRange(0, 1, 1)
		assert.ErrorIs(t, err, ErrInvalidRange)
		_, err = s.PreviewRange(1, 0, 1)
		assert.ErrorIs(t, err, ErrInvalidRange)
		_, err = s.PreviewRange(1, 5, 2)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func keyFor(surah, ayah int) string {
	return fmt.Sprintf("%d:%d", surah, ayah)
}
