package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatorTokenizer_CountTokens_EmptyString(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0)
	count, err := e.CountTokens("")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestEstimatorTokenizer_CountTokens_ASCIIUsesConfiguredRatio(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0).WithCharsPerToken(1)
	count, err := e.CountTokens("12345678")
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestEstimatorTokenizer_CountTokens_DefaultRatioMatchesLenOverFour(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0)
	count, err := e.CountTokens("12345678")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEstimatorTokenizer_CountTokens_NeverZeroForNonEmptyInput(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0)
	count, err := e.CountTokens("a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEstimatorTokenizer_CountTokens_CJKUsesDenserRatio(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0)
	cjk, err := e.CountTokens("你好世界你好世界")
	require.NoError(t, err)
	ascii, err := e.CountTokens("aaaaaaaa")
	require.NoError(t, err)
	assert.Greater(t, cjk, ascii)
}

func TestEstimatorTokenizer_CountMessages_IncludesPerMessageAndEndOverhead(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0).WithCharsPerToken(1)
	total, err := e.CountMessages([]Message{
		{Role: "user", Content: "1234"},
		{Role: "assistant", Content: "56"},
	})
	require.NoError(t, err)
	// 4 tokens + 4 overhead, then 2 tokens + 4 overhead, then 3 conversation-end.
	assert.Equal(t, 4+4+2+4+3, total)
}

func TestEstimatorTokenizer_Decode_Unsupported(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0)
	_, err := e.Decode([]int{1, 2, 3})
	require.Error(t, err)
}

func TestEstimatorTokenizer_Encode_ReturnsCountManyPseudoTokens(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0).WithCharsPerToken(1)
	tokens, err := e.Encode("1234")
	require.NoError(t, err)
	assert.Len(t, tokens, 4)
}

func TestEstimatorTokenizer_MaxTokens_DefaultsWhenUnset(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0)
	assert.Equal(t, 4096, e.MaxTokens())
}

func TestEstimatorTokenizer_Name(t *testing.T) {
	e := NewEstimatorTokenizer("test", 0)
	assert.Equal(t, "estimator", e.Name())
}
