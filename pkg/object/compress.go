package object

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"grit/pkg/giterr"
)

// compressionLevel is the fixed deflate level for loose objects. Consumers
// never depend on the compressed bytes, only on the OID of the inflated form.
const compressionLevel = 6

// Compress deflates data with a zlib wrapper.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, compressionLevel)
	if err != nil {
		return nil, giterr.Io(err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, giterr.Io(err)
	}
	if err := zw.Close(); err != nil {
		return nil, giterr.Io(err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates zlib-wrapped data. The two-byte header is validated
// before inflating: the compression method must be 8 (deflate) and
// (CMF*256+FLG) must be divisible by 31.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 || !validZlibHeader(data[0], data[1]) {
		return nil, giterr.DecompressionFailed()
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, giterr.DecompressionFailed()
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, giterr.DecompressionFailed()
	}
	return out, nil
}

func validZlibHeader(cmf, flg byte) bool {
	if cmf&0x0F != 8 {
		return false
	}
	if cmf>>4 > 7 {
		return false
	}
	return (uint16(cmf)*256+uint16(flg))%31 == 0
}
