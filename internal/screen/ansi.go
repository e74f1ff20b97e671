package screen

import "bytes"

// Pre-allocated SGR fragments, written without formatting on the flush path
var (
	csi = []byte("\x1b[")

	sgrReset           = []byte("\x1b[0m")
	sgrBold            = []byte("\x1b[1m")
	sgrDim             = []byte("\x1b[2m")
	sgrNormalIntensity = []byte("\x1b[22m") // clears both bold and dim
	sgrDefaultFg       = []byte("\x1b[39m")
	sgrDefaultBg       = []byte("\x1b[49m")
)

// writeInt writes a non-negative integer without allocating
func writeInt(b *bytes.Buffer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		b.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		b.WriteByte(byte(n/10) + '0')
		b.WriteByte(byte(n%10) + '0')
		return
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	b.Write(buf[i:])
}

// writeCursorPos writes a 1-indexed cursor move for 0-indexed (x, y)
func writeCursorPos(b *bytes.Buffer, x, y int) {
	b.Write(csi)
	writeInt(b, y+1)
	b.WriteByte(';')
	writeInt(b, x+1)
	b.WriteByte('H')
}

// writeRune writes r, taking the single byte path for ASCII
func writeRune(b *bytes.Buffer, r rune) {
	if r < 0x80 {
		b.WriteByte(byte(r))
		return
	}
	b.WriteRune(r)
}
