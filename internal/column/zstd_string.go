package column

import (
	"bytes"
	"encoding/gob"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdStringPartition is a column partition of high-cardinality,
// compressible strings (spec.md §3: free-text fields like author lists or
// submitting labs), stored as independently zstd-compressed blobs sharing
// one column-wide dictionary (Metadata.ZstdDictionary). Unlike STRING, a
// null value is representable: Compressed[row] == nil.
type ZstdStringPartition struct {
	Name string

	// Compressed holds one zstd frame per row; nil encodes null.
	Compressed [][]byte

	dict     []byte
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	decodeMu sync.Mutex
}

// NewZstdStringPartition returns an empty, growable compressed-string
// column partition. dict may be nil for a column with no shared dictionary.
func NewZstdStringPartition(name string, dict []byte) (*ZstdStringPartition, error) {
	var encOpts []zstd.EOption
	var decOpts []zstd.DOption
	if len(dict) > 0 {
		encOpts = append(encOpts, zstd.WithEncoderDict(dict))
		decOpts = append(decOpts, zstd.WithDecoderDicts(dict))
	}
	enc, err := zstd.NewWriter(nil, encOpts...)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, decOpts...)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &ZstdStringPartition{
		Name:    name,
		dict:    dict,
		encoder: enc,
		decoder: dec,
	}, nil
}

// Len returns the number of rows.
func (c *ZstdStringPartition) Len() int { return len(c.Compressed) }

// Append adds a row. value == nil encodes null. An empty (but non-nil)
// string still produces a zero-length decompression, distinct from null.
func (c *ZstdStringPartition) Append(value *string) {
	if value == nil {
		c.Compressed = append(c.Compressed, nil)
		return
	}
	frame := c.encoder.EncodeAll([]byte(*value), make([]byte, 0, len(*value)/2+16))
	c.Compressed = append(c.Compressed, frame)
}

// Get decompresses and returns the row's value and whether it is non-null.
// The decompression function is safe for a zero-length input (an interned
// empty string) and preserves null independently of compressed length.
func (c *ZstdStringPartition) Get(row int) (value string, ok bool, err error) {
	frame := c.Compressed[row]
	if frame == nil {
		return "", false, nil
	}
	if len(frame) == 0 {
		return "", true, nil
	}
	c.decodeMu.Lock()
	defer c.decodeMu.Unlock()
	out, err := c.decoder.DecodeAll(frame, nil)
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}

// IsNull reports whether row is null.
func (c *ZstdStringPartition) IsNull(row int) bool {
	return c.Compressed[row] == nil
}

// Close releases the partition's zstd encoder and decoder.
func (c *ZstdStringPartition) Close() {
	c.encoder.Close()
	c.decoder.Close()
}

// ShrinkToFit trims excess capacity after ingest.
func (c *ZstdStringPartition) ShrinkToFit() {
	data := make([][]byte, len(c.Compressed))
	copy(data, c.Compressed)
	c.Compressed = data
}

// zstdStringGob mirrors ZstdStringPartition for gob; the encoder/decoder
// are runtime-only state rebuilt on decode via NewZstdStringPartition's
// construction logic, not serialized.
type zstdStringGob struct {
	Name       string
	Compressed [][]byte
	Dict       []byte
}

// GobEncode implements gob.GobEncoder.
func (c *ZstdStringPartition) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(zstdStringGob{Name: c.Name, Compressed: c.Compressed, Dict: c.dict})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (c *ZstdStringPartition) GobDecode(data []byte) error {
	var aux zstdStringGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&aux); err != nil {
		return err
	}
	fresh, err := NewZstdStringPartition(aux.Name, aux.Dict)
	if err != nil {
		return err
	}
	c.Name = fresh.Name
	c.dict = fresh.dict
	c.encoder = fresh.encoder
	c.decoder = fresh.decoder
	c.Compressed = aux.Compressed
	return nil
}
