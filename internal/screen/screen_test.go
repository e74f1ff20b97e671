package screen

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder counts Write calls and keeps everything written
type recorder struct {
	calls int
	buf   strings.Builder
}

func (r *recorder) Write(p []byte) (int, error) {
	r.calls++
	return r.buf.Write(p)
}

func (r *recorder) reset() {
	r.calls = 0
	r.buf.Reset()
}

// vt is a minimal terminal that understands cursor moves and ignores SGR
type vt struct {
	grid   [][]rune
	x, y   int
	glyphs int
}

func newVT(w, h int) *vt {
	g := make([][]rune, h)
	for i := range g {
		g[i] = []rune(strings.Repeat(" ", w))
	}
	return &vt{grid: g}
}

func (v *vt) apply(t *testing.T, out string) {
	t.Helper()
	for i := 0; i < len(out); {
		if out[i] == 0x1b {
			require.Less(t, i+1, len(out))
			require.Equal(t, byte('['), out[i+1], "only CSI sequences expected")
			j := i + 2
			for j < len(out) && (out[j] < 0x40 || out[j] > 0x7e) {
				j++
			}
			require.Less(t, j, len(out), "unterminated CSI")
			if out[j] == 'H' {
				parts := strings.Split(out[i+2:j], ";")
				require.Len(t, parts, 2)
				row, err := strconv.Atoi(parts[0])
				require.NoError(t, err)
				col, err := strconv.Atoi(parts[1])
				require.NoError(t, err)
				v.x, v.y = col-1, row-1
			}
			i = j + 1
			continue
		}
		r, size := utf8.DecodeRuneInString(out[i:])
		v.grid[v.y][v.x] = r
		v.x++
		v.glyphs++
		i += size
	}
}

func (v *vt) row(y int) string { return string(v.grid[y]) }

func writeString(s *Screen, x, y int, text string) {
	for i, r := range text {
		s.Set(x+i, y, Cell{Rune: r})
	}
}

func TestFlushEndToEnd(t *testing.T) {
	s := New(10, 3)
	var w recorder

	writeString(s, 0, 0, "HI")
	n, err := s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, "\x1b[1;1HHI", w.buf.String())
	assert.Equal(t, len("\x1b[1;1HHI"), n)

	w.reset()
	writeString(s, 0, 0, "HI")
	n, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, 0, w.calls)
	assert.Equal(t, 0, n)
}

func TestFlushUnchangedFrameWritesNothing(t *testing.T) {
	s := New(20, 5)
	var w recorder

	writeString(s, 3, 2, "hello")
	_, err := s.Flush(&w)
	require.NoError(t, err)
	w.reset()

	for i := 0; i < 3; i++ {
		_, err = s.Flush(&w)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, w.calls)
	assert.Empty(t, w.buf.String())
}

func TestFlushEmitsExactlyChangedCells(t *testing.T) {
	const width, height = 16, 6

	frameA := func(s *Screen) {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				s.Set(x, y, Cell{Rune: rune('a' + (x+y)%26)})
			}
		}
	}
	frameB := func(s *Screen) {
		frameA(s)
		s.Set(0, 0, Cell{Rune: 'X'})
		s.Set(5, 2, Cell{Rune: 'Y'})
		s.Set(6, 2, Cell{Rune: 'Z'})
		s.Set(15, 5, Cell{Rune: '#'})
		// Same rune, different attribute still counts as a change
		s.Set(3, 4, Cell{Rune: s.Get(3, 4).Rune, Bold: true})
	}

	s := New(width, height)
	term := newVT(width, height)
	var w recorder

	frameA(s)
	_, err := s.Flush(&w)
	require.NoError(t, err)
	term.apply(t, w.buf.String())
	assert.Equal(t, width*height-countBlankMatches(s), term.glyphs)

	// Reference copy of A to count the expected diff
	ref := New(width, height)
	frameA(ref)

	w.reset()
	term.glyphs = 0
	s.Clear()
	frameB(s)
	want := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if s.Get(x, y) != ref.Get(x, y) {
				want++
			}
		}
	}
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	term.apply(t, w.buf.String())
	assert.Equal(t, want, term.glyphs)

	for y := 0; y < height; y++ {
		var b strings.Builder
		for x := 0; x < width; x++ {
			b.WriteRune(s.Get(x, y).Rune)
		}
		assert.Equal(t, b.String(), term.row(y), "row %d", y)
	}
}

// countBlankMatches counts cells that already equal the blank initial grid
func countBlankMatches(s *Screen) int {
	n := 0
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) == Blank {
				n++
			}
		}
	}
	return n
}

func TestClearThenFlushOnBlankScreenIsSilent(t *testing.T) {
	s := New(8, 4)
	var w recorder
	s.Clear()
	n, err := s.Flush(&w)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, w.calls)
}

func TestClearKeepsPreviousGrid(t *testing.T) {
	s := New(8, 2)
	var w recorder
	writeString(s, 0, 0, "abc")
	_, err := s.Flush(&w)
	require.NoError(t, err)

	s.Clear()
	assert.Equal(t, Blank, s.Get(0, 0))
	assert.Equal(t, 'a', s.Previous(0, 0).Rune)

	w.reset()
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;1H   ", w.buf.String())
}

func TestCursorMovesOnlyWhenNeeded(t *testing.T) {
	s := New(10, 2)
	var w recorder
	writeString(s, 2, 0, "ab")
	writeString(s, 7, 0, "c")
	writeString(s, 0, 1, "d")
	_, err := s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;3Hab\x1b[1;8Hc\x1b[2;1Hd", w.buf.String())

	// Tracked cursor sits right after "d"; the next cell needs no move
	w.reset()
	writeString(s, 1, 1, "e")
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "e", w.buf.String())
}

func TestColorTokensEmittedOnChange(t *testing.T) {
	const red = "\x1b[31m"
	const blue = "\x1b[44m"

	s := New(6, 1)
	var w recorder
	s.Set(0, 0, Cell{Rune: 'a', Fg: red})
	s.Set(1, 0, Cell{Rune: 'b', Fg: red})
	s.Set(2, 0, Cell{Rune: 'c', Fg: red, Bg: blue})
	s.Set(3, 0, Cell{Rune: 'd'})
	_, err := s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;1H"+red+"ab"+blue+"c"+"\x1b[39m\x1b[49md", w.buf.String())

	// Pen state survives between flushes
	w.reset()
	s.Set(5, 0, Cell{Rune: 'e'})
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;6He", w.buf.String())
}

func TestIntensityTransitions(t *testing.T) {
	tests := []struct {
		name  string
		cells []Cell
		want  string
	}{
		{
			name:  "bold on then off",
			cells: []Cell{{Rune: 'a', Bold: true}, {Rune: 'b'}},
			want:  "\x1b[1ma\x1b[22mb",
		},
		{
			name:  "dim on then off",
			cells: []Cell{{Rune: 'a', Dim: true}, {Rune: 'b'}},
			want:  "\x1b[2ma\x1b[22mb",
		},
		{
			name:  "bold to dim re-emits dim after reset",
			cells: []Cell{{Rune: 'a', Bold: true}, {Rune: 'b', Dim: true}},
			want:  "\x1b[1ma\x1b[22m\x1b[2mb",
		},
		{
			name:  "dropping bold keeps dim active",
			cells: []Cell{{Rune: 'a', Bold: true, Dim: true}, {Rune: 'b', Dim: true}},
			want:  "\x1b[1m\x1b[2ma\x1b[22m\x1b[2mb",
		},
		{
			name:  "adding dim to bold needs no reset",
			cells: []Cell{{Rune: 'a', Bold: true}, {Rune: 'b', Bold: true, Dim: true}},
			want:  "\x1b[1ma\x1b[2mb",
		},
		{
			name:  "unchanged bold emitted once",
			cells: []Cell{{Rune: 'a', Bold: true}, {Rune: 'b', Bold: true}},
			want:  "\x1b[1mab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(len(tt.cells), 1)
			var w recorder
			for i, c := range tt.cells {
				s.Set(i, 0, c)
			}
			_, err := s.Flush(&w)
			require.NoError(t, err)
			assert.Equal(t, "\x1b[1;1H"+tt.want, w.buf.String())
		})
	}
}

func TestSetOutOfBoundsIsIgnored(t *testing.T) {
	s := New(4, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 2}, {100, 100}} {
		s.Set(p[0], p[1], Cell{Rune: 'x'})
	}
	var w recorder
	_, err := s.Flush(&w)
	require.NoError(t, err)
	assert.Zero(t, w.calls)
	assert.Equal(t, Blank, s.Get(-1, -1))
}

func TestResizePreservesOverlap(t *testing.T) {
	sizes := [][4]int{
		{10, 5, 20, 8},
		{10, 5, 4, 3},
		{10, 5, 4, 9},
		{10, 5, 12, 2},
		{3, 3, 3, 3},
	}

	for _, sz := range sizes {
		w0, h0, w1, h1 := sz[0], sz[1], sz[2], sz[3]
		t.Run(fmt.Sprintf("%dx%d->%dx%d", w0, h0, w1, h1), func(t *testing.T) {
			s := New(w0, h0)
			for y := 0; y < h0; y++ {
				for x := 0; x < w0; x++ {
					s.Set(x, y, Cell{Rune: rune('A' + (x*7+y)%26), Bold: x%2 == 0})
				}
			}
			var w recorder
			_, err := s.Flush(&w)
			require.NoError(t, err)

			orig := New(w0, h0)
			for y := 0; y < h0; y++ {
				for x := 0; x < w0; x++ {
					orig.Set(x, y, s.Get(x, y))
				}
			}

			s.Resize(w1, h1)
			assert.Equal(t, w1, s.Width())
			assert.Equal(t, h1, s.Height())

			for y := 0; y < h1; y++ {
				for x := 0; x < w1; x++ {
					if x < min(w0, w1) && y < min(h0, h1) {
						assert.Equal(t, orig.Get(x, y), s.Get(x, y), "cell %d,%d", x, y)
						assert.Equal(t, orig.Get(x, y), s.Previous(x, y), "previous %d,%d", x, y)
					} else {
						assert.Equal(t, Blank, s.Get(x, y), "new cell %d,%d", x, y)
						assert.Equal(t, Blank, s.Previous(x, y), "new previous %d,%d", x, y)
					}
				}
			}
		})
	}
}

func TestResizeThenFlushMovesCursor(t *testing.T) {
	s := New(5, 1)
	var w recorder
	writeString(s, 0, 0, "ab")
	_, err := s.Flush(&w)
	require.NoError(t, err)

	s.Resize(6, 2)
	w.reset()
	writeString(s, 2, 0, "c")
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;3Hc", w.buf.String())
}

func TestInvalidateRepaintsEverything(t *testing.T) {
	s := New(3, 2)
	var w recorder
	_, err := s.Flush(&w)
	require.NoError(t, err)
	assert.Zero(t, w.calls)

	s.Invalidate()
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;1H\x1b[0m   \x1b[2;1H   ", w.buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, fmt.Errorf("broken pipe") }

func TestFlushErrorForcesRepaint(t *testing.T) {
	s := New(3, 1)
	writeString(s, 0, 0, "abc")
	_, err := s.Flush(failingWriter{})
	require.Error(t, err)

	var w recorder
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;1H\x1b[0mabc", w.buf.String())
}

func TestWideGlyphAdvancesTwoColumns(t *testing.T) {
	s := New(6, 1)
	var w recorder
	n := s.RenderText(0, 0, "界a", Style{})
	assert.Equal(t, 3, n)
	assert.Equal(t, rune(0), s.Get(1, 0).Rune)

	_, err := s.Flush(&w)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;1H界a", w.buf.String())
}

func TestWideGlyphClippedAtLeftEdge(t *testing.T) {
	s := New(4, 1)
	s.RenderText(0, 0, "abcd", Style{})
	var w recorder
	_, err := s.Flush(&w)
	require.NoError(t, err)

	s.Clear()
	n := s.RenderText(-1, 0, "界b", Style{})
	assert.Equal(t, 3, n)
	assert.Equal(t, Blank, s.Get(0, 0))
	assert.Equal(t, 'b', s.Get(1, 0).Rune)

	w.buf.Reset()
	_, err = s.Flush(&w)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.buf.String(), "\x1b[1;1H "), "column 0 repainted: %q", w.buf.String())
}
