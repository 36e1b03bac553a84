package vector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomic(t *testing.T) {
	t.Run("append then get returns identical elements", func(t *testing.T) {
		v := NewAtomic[float32]()

		first := &Array[float32]{Shape: []int64{2}, Data: []float32{1, 2}}
		second := &Array[float32]{Shape: []int64{2, 2}, Data: []float32{1, 2, 3, 4}}

		require.NoError(t, v.Append(first))
		require.NoError(t, v.Append(second))
		require.Equal(t, 2, v.Len())

		got, err := v.Get(1)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, got.Shape)
		assert.Equal(t, []float32{1, 2}, got.Data)

		got, err = v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 2}, got.Shape)
		assert.Equal(t, []float32{1, 2, 3, 4}, got.Data)
	})

	t.Run("zero size elements", func(t *testing.T) {
		v := NewAtomic[int32]()

		require.NoError(t, v.Append(&Array[int32]{}))
		require.NoError(t, v.Append(&Array[int32]{Shape: []int64{3, 0}}))
		require.NoError(t, v.Append(&Array[int32]{Shape: []int64{2}, Data: []int32{7, 8}}))

		got, err := v.Get(1)
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
		assert.Empty(t, got.Data)

		// Recorded extents survive even when the element holds no values.
		got, err = v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 0}, got.Shape)
		assert.Empty(t, got.Data)

		got, err = v.Get(3)
		require.NoError(t, err)
		assert.Equal(t, []int32{7, 8}, got.Data)
	})

	t.Run("insert enforces the next free position", func(t *testing.T) {
		v := NewAtomic[int64]()
		e := &Array[int64]{Shape: []int64{1}, Data: []int64{1}}

		require.NoError(t, v.Insert(1, e))

		for _, pos := range []int{1, 3, 0, -5} {
			err := v.Insert(pos, e)
			require.ErrorIs(t, err, ErrSequenceViolation, "pos %d", pos)

			var seqErr *SequenceError
			require.ErrorAs(t, err, &seqErr)
			assert.Equal(t, pos, seqErr.Pos)
			assert.Equal(t, 2, seqErr.Want)
		}
		assert.Equal(t, 1, v.Len())
	})

	t.Run("get bounds", func(t *testing.T) {
		v := NewAtomic[float64]()
		require.NoError(t, v.Append(&Array[float64]{Shape: []int64{1}, Data: []float64{1}}))

		for _, pos := range []int{0, -1, 2} {
			_, err := v.Get(pos)
			require.ErrorIs(t, err, ErrIndexOutOfBounds, "pos %d", pos)
		}
	})

	t.Run("nil element is rejected", func(t *testing.T) {
		v := NewAtomic[int8]()
		require.ErrorIs(t, v.Append(nil), ErrNilElement)
		assert.Equal(t, 0, v.Len())
	})

	t.Run("shape data mismatch is rejected", func(t *testing.T) {
		v := NewAtomic[int16]()

		err := v.Append(&Array[int16]{Shape: []int64{2, 2}, Data: []int16{1, 2, 3}})
		require.ErrorIs(t, err, ErrKindMismatch)

		// Zero-size shapes require empty data.
		err = v.Append(&Array[int16]{Shape: []int64{0}, Data: []int16{1}})
		require.ErrorIs(t, err, ErrKindMismatch)

		assert.Equal(t, 0, v.Len())
	})

	t.Run("iteration yields all elements in order", func(t *testing.T) {
		v := NewAtomic[int32]()
		for i := int32(0); i < 5; i++ {
			require.NoError(t, v.Append(&Array[int32]{Shape: []int64{1}, Data: []int32{i}}))
		}

		want := 1
		for pos, e := range v.All() {
			assert.Equal(t, want, pos)
			assert.Equal(t, []int32{int32(pos - 1)}, e.Data)
			want++
		}
		assert.Equal(t, 6, want)
	})

	t.Run("iterator restarts from the beginning", func(t *testing.T) {
		v := NewAtomic[int32]()
		for i := int32(0); i < 4; i++ {
			require.NoError(t, v.Append(&Array[int32]{Shape: []int64{1}, Data: []int32{i}}))
		}

		collect := func(seq func(func(int, Array[int32]) bool)) [][]int32 {
			var out [][]int32
			for _, e := range seq {
				out = append(out, append([]int32(nil), e.Data...))
			}
			return out
		}

		seq := v.All()
		first := collect(seq)
		second := collect(seq)

		require.Len(t, first, 4)
		assert.Equal(t, first, second)
	})
}

func TestAtomicResize(t *testing.T) {
	build := func(t *testing.T) *Atomic[float32] {
		t.Helper()
		v := NewAtomic[float32]()
		require.NoError(t, v.Append(&Array[float32]{Shape: []int64{2}, Data: []float32{1, 2}}))
		require.NoError(t, v.Append(&Array[float32]{Shape: []int64{2, 2}, Data: []float32{3, 4, 5, 6}}))
		require.NoError(t, v.Append(&Array[float32]{}))
		return v
	}

	t.Run("shrinks to n and preserves survivors", func(t *testing.T) {
		v := build(t)
		require.NoError(t, v.Resize(2))
		require.Equal(t, 2, v.Len())

		got, err := v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []float32{3, 4, 5, 6}, got.Data)

		_, err = v.Get(3)
		require.ErrorIs(t, err, ErrIndexOutOfBounds)
	})

	t.Run("truncation is destructive", func(t *testing.T) {
		v := build(t)
		require.NoError(t, v.Resize(1))

		// Re-appending lands a fresh element, not the truncated one.
		require.NoError(t, v.Append(&Array[float32]{Shape: []int64{1}, Data: []float32{9}}))
		got, err := v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []float32{9}, got.Data)
	})

	t.Run("resize is idempotent", func(t *testing.T) {
		v := build(t)
		require.NoError(t, v.Resize(2))
		require.NoError(t, v.Resize(2))
		require.Equal(t, 2, v.Len())

		got, err := v.Get(1)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2}, got.Data)
		got, err = v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []float32{3, 4, 5, 6}, got.Data)
		assert.Equal(t, 6, v.cols.content.Cap())
	})

	t.Run("n beyond count is a no-op", func(t *testing.T) {
		v := build(t)
		require.NoError(t, v.Resize(100))
		assert.Equal(t, 3, v.Len())
	})

	t.Run("resize to zero empties the container", func(t *testing.T) {
		v := build(t)
		require.NoError(t, v.Resize(0))
		assert.Equal(t, 0, v.Len())
		require.NoError(t, v.Append(&Array[float32]{Shape: []int64{1}, Data: []float32{1}}))
	})

	t.Run("negative n fails", func(t *testing.T) {
		v := build(t)
		require.ErrorIs(t, v.Resize(-1), ErrInvalidResize)
		assert.Equal(t, 3, v.Len())
	})

	t.Run("compress preserves every element", func(t *testing.T) {
		v := build(t)
		before := make([]Array[float32], 0, v.Len())
		for _, e := range v.All() {
			before = append(before, Array[float32]{
				Shape: append([]int64(nil), e.Shape...),
				Data:  append([]float32(nil), e.Data...),
			})
		}

		v.Compress()

		require.Equal(t, len(before), v.Len())
		for i, want := range before {
			got, err := v.Get(i + 1)
			require.NoError(t, err)
			assert.Equal(t, want.Shape, got.Shape)
			assert.Equal(t, want.Data, got.Data)
		}
	})
}

func TestBytes(t *testing.T) {
	t.Run("append then get returns identical strings", func(t *testing.T) {
		v := NewBytes()
		require.NoError(t, v.Append([]byte("alpha")))
		require.NoError(t, v.Append([]byte{}))
		require.NoError(t, v.Append([]byte("beta")))

		got, err := v.Get(1)
		require.NoError(t, err)
		assert.Equal(t, []byte("alpha"), got)

		got, err = v.Get(2)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)

		got, err = v.Get(3)
		require.NoError(t, err)
		assert.Equal(t, []byte("beta"), got)
	})

	t.Run("nil is rejected, empty is not", func(t *testing.T) {
		v := NewBytes()
		require.ErrorIs(t, v.Append(nil), ErrNilElement)
		require.NoError(t, v.Append([]byte{}))
		assert.Equal(t, 1, v.Len())
	})

	t.Run("sequence and bounds", func(t *testing.T) {
		v := NewBytes()
		require.ErrorIs(t, v.Insert(2, []byte("x")), ErrSequenceViolation)

		_, err := v.Get(1)
		require.ErrorIs(t, err, ErrIndexOutOfBounds)
	})

	t.Run("resize recomputes surviving content", func(t *testing.T) {
		v := NewBytes()
		require.NoError(t, v.Append([]byte("aa")))
		require.NoError(t, v.Append([]byte("bbbb")))
		require.NoError(t, v.Append([]byte("cccccc")))

		require.NoError(t, v.Resize(2))
		require.Equal(t, 2, v.Len())

		got, err := v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []byte("bbbb"), got)

		// Content buffer shrank to exactly the surviving bytes.
		assert.Equal(t, 6, v.cols.content.Len())
		assert.Equal(t, 6, v.cols.content.Cap())
	})
}

func TestNumeric(t *testing.T) {
	t.Run("stride must be positive", func(t *testing.T) {
		_, err := NewNumeric[float32](0)
		require.Error(t, err)
		_, err = NewNumeric[float32](-3)
		require.Error(t, err)
	})

	t.Run("append then get returns identical elements", func(t *testing.T) {
		v, err := NewNumeric[float64](3)
		require.NoError(t, err)
		require.Equal(t, 3, v.Stride())

		require.NoError(t, v.Append([]float64{1, 2, 3}))
		require.NoError(t, v.Append([]float64{4, 5, 6}))

		got, err := v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []float64{4, 5, 6}, got)
	})

	t.Run("wrong width is rejected", func(t *testing.T) {
		v, err := NewNumeric[int32](2)
		require.NoError(t, err)

		err = v.Append([]int32{1})
		require.ErrorIs(t, err, ErrKindMismatch)

		var wErr *WidthError
		require.ErrorAs(t, err, &wErr)
		assert.Equal(t, 1, wErr.Len)
		assert.Equal(t, 2, wErr.Stride)

		require.ErrorIs(t, v.Append([]int32{1, 2, 3}), ErrKindMismatch)
		require.ErrorIs(t, v.Append(nil), ErrNilElement)
		assert.Equal(t, 0, v.Len())
	})

	t.Run("sequence bounds and resize", func(t *testing.T) {
		v, err := NewNumeric[int64](1)
		require.NoError(t, err)

		require.ErrorIs(t, v.Insert(5, []int64{1}), ErrSequenceViolation)

		for i := int64(1); i <= 4; i++ {
			require.NoError(t, v.Append([]int64{i * 10}))
		}
		_, err = v.Get(5)
		require.ErrorIs(t, err, ErrIndexOutOfBounds)

		require.NoError(t, v.Resize(2))
		require.Equal(t, 2, v.Len())
		got, err := v.Get(2)
		require.NoError(t, err)
		assert.Equal(t, []int64{20}, got)

		require.ErrorIs(t, v.Resize(-1), ErrInvalidResize)
	})

	t.Run("iteration", func(t *testing.T) {
		v, err := NewNumeric[int16](2)
		require.NoError(t, err)
		require.NoError(t, v.Append([]int16{1, 2}))
		require.NoError(t, v.Append([]int16{3, 4}))

		var seen [][]int16
		for _, e := range v.All() {
			seen = append(seen, append([]int16(nil), e...))
		}
		assert.Equal(t, [][]int16{{1, 2}, {3, 4}}, seen)
	})
}

// TestGrowthScenario walks the doubling and exact-fit behavior end to end:
// two appends, a larger third element forcing growth, a zero-length
// element, then a truncating resize.
func TestGrowthScenario(t *testing.T) {
	v := NewAtomic[float32](WithInitialCapacity(2))

	require.NoError(t, v.Append(&Array[float32]{Shape: []int64{2}, Data: []float32{1, 2}}))
	assert.Equal(t, 2, v.cols.content.Cap())

	require.NoError(t, v.Append(&Array[float32]{Shape: []int64{2, 2}, Data: []float32{3, 4, 5, 6}}))
	assert.Equal(t, 8, v.cols.content.Cap(), "2 doubles past 6 to 8")

	require.NoError(t, v.Append(&Array[float32]{}))
	assert.Equal(t, 8, v.cols.content.Cap(), "zero-length append does not grow")
	assert.Equal(t, 3, v.Len())

	require.NoError(t, v.Resize(2))
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, 6, v.cols.content.Len())
	assert.Equal(t, 6, v.cols.content.Cap(), "resize reclaims to exact fit")

	got, err := v.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got.Data)
	got, err = v.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4, 5, 6}, got.Data)
}

func TestErrorUnwrapping(t *testing.T) {
	var posErr *PositionError
	err := error(&PositionError{Pos: 9, Count: 3})
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
	require.True(t, errors.As(err, &posErr))

	require.ErrorIs(t, &SequenceError{Pos: 1, Want: 2}, ErrSequenceViolation)
	require.ErrorIs(t, &ShapeError{Shape: []int64{2}, DataLen: 1}, ErrKindMismatch)
	require.ErrorIs(t, &WidthError{Len: 1, Stride: 2}, ErrKindMismatch)
}
