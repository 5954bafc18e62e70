package wordvec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Snapshot layout (v1), little-endian:
//
//	0..7   magic "PLSWV001"
//	8..15  dim (uint64)
//	16..23 vocab count (uint64)
//	24..31 total examples (uint64)
//	32..39 total words (uint64)
//	then per word: token length (uint32), token bytes, count (uint64),
//	input vector (dim float64), context vector (dim float64)
var snapshotMagic = [8]byte{'P', 'L', 'S', 'W', 'V', '0', '0', '1'}

// maxTokenBytes bounds token length on decode so a corrupt snapshot cannot
// trigger a huge allocation.
const maxTokenBytes = 1 << 16

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo serializes the full model state. The stream is self-delimiting;
// hyperparameters other than the dimension are supplied again on read.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	if _, err := bw.Write(snapshotMagic[:]); err != nil {
		return 0, err
	}
	header := []uint64{
		uint64(m.opts.Dim),
		uint64(len(m.words)),
		uint64(m.totalExamples),
		uint64(m.totalWords),
	}
	for _, v := range header {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return 0, err
		}
	}

	for id, tok := range m.words {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(tok))); err != nil {
			return 0, err
		}
		if _, err := bw.WriteString(tok); err != nil {
			return 0, err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint64(m.counts[id])); err != nil {
			return 0, err
		}
		if err := binary.Write(bw, binary.LittleEndian, m.vectors[id]); err != nil {
			return 0, err
		}
		if err := binary.Write(bw, binary.LittleEndian, m.ctx[id]); err != nil {
			return 0, err
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

// Read restores a model from a snapshot written by WriteTo. opts supplies the
// trainer hyperparameters for resumed training; its dimension must match the
// snapshot's.
func Read(r io.Reader, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	br := bufio.NewReader(r)

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if magic != snapshotMagic {
		return nil, fmt.Errorf("invalid snapshot header (magic mismatch)")
	}

	var dim, vocab, examples, words uint64
	for _, p := range []*uint64{&dim, &vocab, &examples, &words} {
		if err := binary.Read(br, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("read snapshot header: %w", err)
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("invalid snapshot header (dim=0)")
	}
	if int(dim) != opts.Dim {
		return nil, fmt.Errorf("vector dimension mismatch: snapshot dim=%d, requested dim=%d", dim, opts.Dim)
	}

	m := New(opts)
	m.totalExamples = int64(examples)
	m.totalWords = int64(words)

	for i := uint64(0); i < vocab; i++ {
		var tokLen uint32
		if err := binary.Read(br, binary.LittleEndian, &tokLen); err != nil {
			return nil, fmt.Errorf("read vocab entry %d: %w", i, err)
		}
		if tokLen == 0 || tokLen > maxTokenBytes {
			return nil, fmt.Errorf("read vocab entry %d: invalid token length %d", i, tokLen)
		}
		tok := make([]byte, tokLen)
		if _, err := io.ReadFull(br, tok); err != nil {
			return nil, fmt.Errorf("read vocab entry %d: %w", i, err)
		}

		var count uint64
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("read vocab entry %d: %w", i, err)
		}

		id := m.addWord(string(tok))
		m.counts[id] = int64(count)
		if err := binary.Read(br, binary.LittleEndian, m.vectors[id]); err != nil {
			return nil, fmt.Errorf("read vocab entry %d vectors: %w", i, err)
		}
		if err := binary.Read(br, binary.LittleEndian, m.ctx[id]); err != nil {
			return nil, fmt.Errorf("read vocab entry %d vectors: %w", i, err)
		}
	}

	return m, nil
}
