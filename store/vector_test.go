package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_ValueScan_RoundTrips(t *testing.T) {
	v := Vector{0.1, -2, 3.5}

	raw, err := v.Value()
	require.NoError(t, err)
	assert.Equal(t, "[0.1,-2,3.5]", raw)

	var scanned Vector
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, v, scanned)
}

func TestVector_Value_NilReturnsNil(t *testing.T) {
	var v Vector
	raw, err := v.Value()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestVector_Scan_NilSourceClearsVector(t *testing.T) {
	v := Vector{1, 2}
	require.NoError(t, v.Scan(nil))
	assert.Nil(t, v)
}

func TestVector_Scan_EmptyBracketsYieldsEmptySlice(t *testing.T) {
	var v Vector
	require.NoError(t, v.Scan("[]"))
	assert.Equal(t, Vector{}, v)
}

func TestVector_Scan_AcceptsByteSlice(t *testing.T) {
	var v Vector
	require.NoError(t, v.Scan([]byte("[1,2,3]")))
	assert.Equal(t, Vector{1, 2, 3}, v)
}

func TestVector_Scan_RejectsUnsupportedType(t *testing.T) {
	var v Vector
	err := v.Scan(42)
	require.Error(t, err)
}

func TestVector_Scan_RejectsMalformedElement(t *testing.T) {
	var v Vector
	err := v.Scan("[1,notanumber,3]")
	require.Error(t, err)
}

func TestFromFloat64_EmptyYieldsNil(t *testing.T) {
	assert.Nil(t, FromFloat64(nil))
	assert.Nil(t, FromFloat64([]float64{}))
}

func TestFromFloat64_ToFloat64_RoundTrips(t *testing.T) {
	in := []float64{1, 2, 3}
	v := FromFloat64(in)
	assert.Equal(t, in, v.ToFloat64())
}

func TestVector_ToFloat64_EmptyYieldsNil(t *testing.T) {
	var v Vector
	assert.Nil(t, v.ToFloat64())
	assert.Nil(t, Vector{}.ToFloat64())
}
