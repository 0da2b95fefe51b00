package chunk

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		values := Generate(rng, DefaultSize, DefaultMax)
		require.Len(t, values, DefaultSize)
		for j, v := range values {
			assert.GreaterOrEqualf(t, v, 0, "chunk %d value %d", i, j)
			assert.LessOrEqualf(t, v, DefaultMax, "chunk %d value %d", i, j)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))

	for i := 0; i < 3; i++ {
		assert.Equalf(t, Generate(a, DefaultSize, DefaultMax), Generate(b, DefaultSize, DefaultMax), "chunk #%d", i)
	}
}

func TestGenerateZeroMax(t *testing.T) {
	values := Generate(rand.New(rand.NewSource(7)), 16, 0)
	assert.Equal(t, make([]int, 16), values)
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "0 100 7 ", string(Encode([]int{0, 100, 7})))
	assert.Empty(t, Encode(nil))
}

func TestAppendEncode(t *testing.T) {
	dst := []byte("x:")
	assert.Equal(t, "x:1 2 ", string(AppendEncode(dst, []int{1, 2})))
}

func TestEncodedChunkTokens(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	values := Generate(rng, DefaultSize, DefaultMax)
	frame := string(Encode(values))

	assert.True(t, strings.HasPrefix(frame, strconv.Itoa(values[0])+" "))
	assert.True(t, strings.HasSuffix(frame, " "))
	assert.NotContains(t, frame, "\n")

	tokens := strings.Split(frame, " ")
	require.Equal(t, "", tokens[len(tokens)-1])
	tokens = tokens[:len(tokens)-1]
	require.Len(t, tokens, DefaultSize)
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		require.NoErrorf(t, err, "token #%d", i)
		assert.Equal(t, values[i], v)
	}
}

func TestDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	values := Generate(rng, DefaultSize, DefaultMax)

	decoded, err := Decode(Encode(values), DefaultMax)
	require.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestDecodeZero(t *testing.T) {
	values, err := Decode([]byte("0 10 100 "), DefaultMax)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 100}, values)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not a number":   "1 x 3 ",
		"out of range":   "1 101 3 ",
		"negative":       "1 -1 ",
		"double space":   "1  2 ",
		"leading space":  " 1 ",
		"trailing comma": "1,",
		"plus sign":      "+5 ",
		"negative zero":  "-0 ",
		"leading zeros":  "007 ",
	}

	for name, frame := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(frame), DefaultMax)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestSeed(t *testing.T) {
	assert.EqualValues(t, 5, Seed(5))

	before := time.Now().Unix()
	got := Seed(0)
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, time.Now().Unix())
}
