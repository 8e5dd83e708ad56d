package object

import "encoding/binary"

// SHA-1 (RFC 3174), implemented incrementally so the index writer can hash
// its output buffer and the store can hash framed objects with one code path.

const sha1BlockSize = 64

var sha1K = [4]uint32{0x5A827999, 0x6ED9EBA1, 0x8F1BBCDC, 0xCA62C1D6}

type sha1State struct {
	h      [5]uint32
	buf    [sha1BlockSize]byte
	bufLen int
	total  uint64
}

func newSha1() *sha1State {
	return &sha1State{
		h: [5]uint32{0x67452301, 0xEFCDAB89, 0x98BADCFE, 0x10325476, 0xC3D2E1F0},
	}
}

// update absorbs data, processing complete 64-byte blocks as they fill.
func (s *sha1State) update(data []byte) {
	s.total += uint64(len(data))

	if s.bufLen > 0 {
		n := copy(s.buf[s.bufLen:], data)
		s.bufLen += n
		data = data[n:]
		if s.bufLen == sha1BlockSize {
			s.processBlock(s.buf[:])
			s.bufLen = 0
		}
	}

	for len(data) >= sha1BlockSize {
		s.processBlock(data[:sha1BlockSize])
		data = data[sha1BlockSize:]
	}

	if len(data) > 0 {
		s.bufLen = copy(s.buf[:], data)
	}
}

// sum finalizes the hash: append 0x80, zero-pad so the last 8 bytes of the
// final block hold the big-endian bit length, then emit h0..h4 big-endian.
func (s *sha1State) sum() [20]byte {
	lenBits := s.total * 8

	var pad [sha1BlockSize * 2]byte
	pad[0] = 0x80
	padLen := sha1BlockSize - (s.bufLen+1)%sha1BlockSize
	if padLen < 8 {
		padLen += sha1BlockSize
	}
	binary.BigEndian.PutUint64(pad[1+padLen-8:], lenBits)
	s.update(pad[:1+padLen])

	var out [20]byte
	for i, v := range s.h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func (s *sha1State) processBlock(block []byte) {
	var w [80]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 80; i++ {
		v := w[i-3] ^ w[i-8] ^ w[i-14] ^ w[i-16]
		w[i] = v<<1 | v>>31
	}

	a, b, c, d, e := s.h[0], s.h[1], s.h[2], s.h[3], s.h[4]

	for i := 0; i < 80; i++ {
		var f, k uint32
		switch {
		case i < 20:
			f = (b & c) | (^b & d)
			k = sha1K[0]
		case i < 40:
			f = b ^ c ^ d
			k = sha1K[1]
		case i < 60:
			f = (b & c) | (b & d) | (c & d)
			k = sha1K[2]
		default:
			f = b ^ c ^ d
			k = sha1K[3]
		}

		tmp := (a<<5 | a>>27) + f + e + k + w[i]
		e = d
		d = c
		c = b<<30 | b>>2
		b = a
		a = tmp
	}

	s.h[0] += a
	s.h[1] += b
	s.h[2] += c
	s.h[3] += d
	s.h[4] += e
}

// Sha1 computes the SHA-1 digest of data.
func Sha1(data []byte) [20]byte {
	s := newSha1()
	s.update(data)
	return s.sum()
}
