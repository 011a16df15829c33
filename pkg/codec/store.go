package codec

import "io"

// storeBufSize is the working buffer for the identity copy, per spec.md
// §4.5.
const storeBufSize = 64 * 1024

// storeCodec is the pass-through codec. CompressionLevel is always
// recorded as 0 for Store entries by the archive engine, never by the
// codec itself.
type storeCodec struct{}

func (storeCodec) Compress(w io.Writer, r io.Reader, _ int) error {
	buf := make([]byte, storeBufSize)
	_, err := io.CopyBuffer(w, r, buf)
	return err
}

func (storeCodec) Decompress(w io.Writer, r io.Reader) error {
	buf := make([]byte, storeBufSize)
	_, err := io.CopyBuffer(w, r, buf)
	return err
}
