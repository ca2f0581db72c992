package transport

import (
	"bytes"
	"testing"
)

func TestDelimiterSingleFeed(t *testing.T) {
	d := NewDelimiter([]byte("</>"), 1024)
	chunks := d.Feed([]byte("abc</>def</>gh"))
	if len(chunks) != 2 || !bytes.Equal(chunks[0], []byte("abc")) || !bytes.Equal(chunks[1], []byte("def")) {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
	if d.Pending() != 2 {
		t.Fatalf("expected 2 pending bytes, got %d", d.Pending())
	}
}

func TestDelimiterSentinelStraddlesBoundary(t *testing.T) {
	d := NewDelimiter([]byte("</>"), 1024)
	// split the sentinel "</>"  across two Feed calls
	if out := d.Feed([]byte("hello</")); len(out) != 0 {
		t.Fatalf("expected no complete chunk yet, got %v", out)
	}
	out := d.Feed([]byte(">world</>"))
	if len(out) != 2 || !bytes.Equal(out[0], []byte("hello")) || !bytes.Equal(out[1], []byte("world")) {
		t.Fatalf("unexpected chunks after straddled sentinel: %v", out)
	}
}

func TestDelimiterSlidesWhenOverCapacity(t *testing.T) {
	d := NewDelimiter([]byte("</>"), 8)
	d.Feed(bytes.Repeat([]byte("a"), 20)) // no sentinel at all
	if d.Pending() > len(d.sentinel)-1+1 {
		// allow a little slack but the buffer must not grow unbounded
		t.Fatalf("expected buffer to slide down near sentinel-1 bytes, pending=%d", d.Pending())
	}
}
