package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestProperty_Vector_ValueScan_RoundTrips(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.IntRange(0, 64).Draw(rt, "length")
		original := make(Vector, length)
		for i := range original {
			original[i] = rapid.Float64Range(-1e6, 1e6).Draw(rt, "element")
		}

		raw, err := original.Value()
		require.NoError(t, err)

		var scanned Vector
		require.NoError(t, scanned.Scan(raw))

		require.Len(t, scanned, length)
		for i := range original {
			require.InDelta(t, original[i], scanned[i], 1e-9, "index %d", i)
		}
	})
}
