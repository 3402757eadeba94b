package wire

import (
	"io"
	"sync"
)

// DumpReader decorates an io.Reader with a side file sink, composed rather
// than inherited: every byte read also lands in dump. Modeled on the
// TeeReader-over-a-non-blocking-writer idiom used for the tunnel tap in the
// retrieval pack (unblocked-chissl's share/cio.PipeWithTee).
type DumpReader struct {
	r    io.Reader
	dump io.WriteCloser
	mu   sync.Mutex
}

// NewDumpReader wraps r so every read is mirrored into dump.
func NewDumpReader(r io.Reader, dump io.WriteCloser) *DumpReader {
	return &DumpReader{r: r, dump: dump}
}

func (d *DumpReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		d.mu.Lock()
		_, _ = d.dump.Write(p[:n])
		d.mu.Unlock()
	}
	return n, err
}

// Rewrap swaps the underlying source reader without disturbing the dump
// sink, for the encryption handshake's mid-connection reader swap.
func (d *DumpReader) Rewrap(r io.Reader) { d.r = r }

// MarkBoundary writes a packet-boundary marker to the dump file on demand.
func (d *DumpReader) MarkBoundary() {
	d.mu.Lock()
	_, _ = d.dump.Write([]byte("\n--packet--\n"))
	d.mu.Unlock()
}

// Close releases the dump file.
func (d *DumpReader) Close() error {
	return d.dump.Close()
}

// DumpWriter decorates an io.Writer with a side file sink.
type DumpWriter struct {
	w    io.Writer
	dump io.WriteCloser
	mu   sync.Mutex
}

// NewDumpWriter wraps w so every write is mirrored into dump.
func NewDumpWriter(w io.Writer, dump io.WriteCloser) *DumpWriter {
	return &DumpWriter{w: w, dump: dump}
}

func (d *DumpWriter) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	if n > 0 {
		d.mu.Lock()
		_, _ = d.dump.Write(p[:n])
		d.mu.Unlock()
	}
	return n, err
}

// Rewrap swaps the underlying destination writer without disturbing the
// dump sink, for the encryption handshake's mid-connection writer swap.
func (d *DumpWriter) Rewrap(w io.Writer) { d.w = w }

// MarkBoundary writes a packet-boundary marker to the dump file on demand.
func (d *DumpWriter) MarkBoundary() {
	d.mu.Lock()
	_, _ = d.dump.Write([]byte("\n--packet--\n"))
	d.mu.Unlock()
}

// Close releases the dump file.
func (d *DumpWriter) Close() error {
	return d.dump.Close()
}
