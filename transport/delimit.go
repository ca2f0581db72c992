package transport

import "bytes"

// Delimiter extracts sentinel-delimited chunks from a byte stream,
// tolerating sentinels that straddle read boundaries. Pulled out as its
// own unit, rather than inlined into the TCP reader loop, so the sliding
// window logic is independently testable.
type Delimiter struct {
	sentinel []byte
	maxSize  int
	buf      []byte
}

// NewDelimiter builds a Delimiter splitting on sentinel, bounding its
// internal ring to maxSize bytes of unmatched data.
func NewDelimiter(sentinel []byte, maxSize int) *Delimiter {
	return &Delimiter{sentinel: append([]byte(nil), sentinel...), maxSize: maxSize}
}

// Feed appends newly read bytes and returns every complete
// sentinel-delimited chunk now available, in arrival order. Bytes after
// the last sentinel remain buffered for the next Feed call.
func (d *Delimiter) Feed(chunk []byte) [][]byte {
	d.buf = append(d.buf, chunk...)

	var out [][]byte
	for {
		idx := bytes.Index(d.buf, d.sentinel)
		if idx < 0 {
			break
		}
		piece := make([]byte, idx)
		copy(piece, d.buf[:idx])
		out = append(out, piece)
		d.buf = d.buf[idx+len(d.sentinel):]
	}

	if d.maxSize > 0 && len(d.buf) > d.maxSize {
		keep := len(d.sentinel) - 1
		if keep < 0 {
			keep = 0
		}
		if keep > len(d.buf) {
			keep = len(d.buf)
		}
		drop := len(d.buf) - keep
		tail := make([]byte, keep)
		copy(tail, d.buf[drop:])
		d.buf = tail
	}

	return out
}

// Pending returns the number of unmatched bytes currently buffered.
func (d *Delimiter) Pending() int { return len(d.buf) }
