package tsv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayGetSetRoundTrip(t *testing.T) {
	s := New()
	require.NoError(t, s.ArraySet("colors", []string{"red", "#f00", "blue", "#00f"}))

	n, err := s.ArraySize("colors")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	kvs, err := s.ArrayGet("colors")
	require.NoError(t, err)
	require.Len(t, kvs, 4)

	red, err := s.Get("colors", "red")
	require.NoError(t, err)
	require.Equal(t, "#f00", red.String())
}

func TestSharedVariableDeepIsolation(t *testing.T) {
	s := New()
	require.NoError(t, s.Set("g", "nums", NewList([]string{"1", "2", "3"})))

	v, err := s.Get("g", "nums")
	require.NoError(t, err)
	elems := v.List()
	elems[0] = "mutated"

	v2, err := s.Get("g", "nums")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, v2.List())
}

func TestLPushThenLPopRestoresList(t *testing.T) {
	s := New()
	_, err := s.LAppend("g", "stack", "a", "b", "c")
	require.NoError(t, err)

	_, err = s.LPush("g", "stack", "0", "z")
	require.NoError(t, err)

	popped, ok, err := s.LPop("g", "stack", "0")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "z", popped)

	v, err := s.Get("g", "stack")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, v.List())
}

func TestLPopOutOfRangeIsNoop(t *testing.T) {
	s := New()
	_, err := s.LAppend("g", "l", "a", "b")
	require.NoError(t, err)

	_, ok, err := s.LPop("g", "l", "99")
	require.NoError(t, err)
	require.False(t, ok)

	v, err := s.Get("g", "l")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, v.List())
}

func TestLRangeClamped(t *testing.T) {
	s := New()
	_, err := s.LAppend("g", "l", "a", "b", "c")
	require.NoError(t, err)

	out, err := s.LRange("g", "l", "-5", "end")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, out)

	out, err = s.LRange("g", "l", "1", "end-1")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, out)
}

func TestLInsertClamped(t *testing.T) {
	s := New()
	_, err := s.LAppend("g", "l", "a", "b")
	require.NoError(t, err)

	_, err = s.LInsert("g", "l", "999", "z")
	require.NoError(t, err)

	v, err := s.Get("g", "l")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "z"}, v.List())
}

func TestLSearchModes(t *testing.T) {
	s := New()
	_, err := s.LAppend("g", "l", "apple", "banana", "avocado", "cherry")
	require.NoError(t, err)

	idx, err := s.LSearch("g", "l", "banana", SearchExact, false)
	require.NoError(t, err)
	require.Equal(t, []int{1}, idx)

	idx, err = s.LSearch("g", "l", "a*", SearchGlob, true)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, idx)

	idx, err = s.LSearch("g", "l", "^a.*o$", SearchRegex, true)
	require.NoError(t, err)
	require.Equal(t, []int{2}, idx)
}

func TestIncrPrecision(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		_, err := s.Incr("g", "n", big.NewRat(1, 10))
		require.NoError(t, err)
	}
	v, err := s.Get("g", "n")
	require.NoError(t, err)
	require.Equal(t, "1", v.String())
}

func TestExistsDoesNotErrorOnMissingArray(t *testing.T) {
	s := New()
	ok, err := s.Exists("nope", "key")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUnsetKeyAndWholeArray(t *testing.T) {
	s := New()
	require.NoError(t, s.Set("g", "a", NewScalar("1")))
	require.NoError(t, s.Set("g", "b", NewScalar("2")))

	require.NoError(t, s.Unset("g", "a"))
	ok, err := s.Exists("g", "a")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Unset("g", ""))
	require.False(t, s.ArrayExists("g"))
}

func TestAppendAndLAppendFromEmpty(t *testing.T) {
	s := New()
	v, err := s.Append("g", "s", "hello", " ", "world")
	require.NoError(t, err)
	require.Equal(t, "hello world", v.String())

	lv, err := s.LAppend("g", "l", "x")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, lv.List())
}
