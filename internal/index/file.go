package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Vectors file layout: 4-byte magic, uint32 dimension, uint32 count, then
// count*dimension little-endian float32 values. Row i corresponds to ordinal i
// in the metadata file.
var vectorsMagic = [4]byte{'L', 'D', 'X', '1'}

// ReadVectors reads a vectors file and returns the rows.
func ReadVectors(path string) ([][]float32, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != vectorsMagic {
		return nil, fmt.Errorf("bad magic %q in %s", magic[:], path)
	}

	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dim := binary.LittleEndian.Uint32(header[0:4])
	count := binary.LittleEndian.Uint32(header[4:8])
	if dim == 0 {
		return nil, fmt.Errorf("zero dimension in %s", path)
	}

	rows := make([][]float32, count)
	buf := make([]byte, dim*4)
	for i := range rows {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		rows[i] = row
	}

	return rows, nil
}

// WriteVectors writes rows to a vectors file. All rows must share one
// dimension; an empty set writes a header-only file with dimension dim.
func WriteVectors(path string, rows [][]float32, dim int) error {
	for i, row := range rows {
		if len(row) != dim {
			return fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dim)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if _, err := w.Write(vectorsMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(rows)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	buf := make([]byte, dim*4)
	for i, row := range rows {
		for j, x := range row {
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(x))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Sync()
}
