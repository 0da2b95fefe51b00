// Package chunk produces batches of random integers and renders them in the
// space-separated text form that goes over the wire.
package chunk

import (
	"bytes"
	"math/rand"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultSize = 1024
	DefaultMax  = 100
)

// ErrMalformed is returned by Decode for frames that do not follow the wire grammar.
var ErrMalformed = errors.New("malformed chunk")

// Generate fills a fresh slice of size values drawn from [0, maxValue] using rng.
func Generate(rng *rand.Rand, size, maxValue int) []int {
	values := make([]int, size)
	for i := range values {
		values[i] = rng.Int() % (maxValue + 1)
	}
	return values
}

// Encode renders values as "<v> <v> ... <v> ", one trailing space included.
func Encode(values []int) []byte {
	// at most three digits plus a space for the default range
	return AppendEncode(make([]byte, 0, len(values)*4), values)
}

// AppendEncode appends the encoding of values to dst.
func AppendEncode(dst []byte, values []int) []byte {
	for _, v := range values {
		dst = strconv.AppendInt(dst, int64(v), 10)
		dst = append(dst, ' ')
	}
	return dst
}

// Decode parses a frame produced by Encode and checks every value is in
// [0, maxValue]. Tokens must be canonical base-10, so signs and leading zeros
// are rejected.
func Decode(frame []byte, maxValue int) ([]int, error) {
	tokens := bytes.Split(frame, []byte{' '})
	// trailing space leaves one empty token behind
	if n := len(tokens); n > 0 && len(tokens[n-1]) == 0 {
		tokens = tokens[:n-1]
	}

	values := make([]int, 0, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(string(tok))
		if err != nil || strconv.Itoa(v) != string(tok) {
			return nil, errors.Wrapf(ErrMalformed, "token %d %q", i, tok)
		}
		if v < 0 || v > maxValue {
			return nil, errors.Wrapf(ErrMalformed, "token %d value %d out of range [0, %d]", i, v, maxValue)
		}
		values = append(values, v)
	}
	return values, nil
}

// Seed returns seed, or the current Unix time in seconds when seed is 0.
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().Unix()
}
