package column

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"sync"

	"github.com/blainsmith/seahash"
	"github.com/patrickmn/go-cache"
)

// SiloString is the fixed-width, 16-byte inline encoding of a STRING column
// value, per spec.md §3: an 8-byte prefix of the raw string bytes (zero
// padded or truncated) followed by an 8-byte seahash fingerprint of the full
// string. Two equal strings always produce the same SiloString; two unequal
// strings produce the same SiloString only in the astronomically unlikely
// case of both a shared 8-byte prefix and a hash collision. The interner
// below does not detect that case: it keeps a single string per
// fingerprint, so both colliding strings resolve to the same one.
type SiloString [16]byte

func newSiloString(s string) SiloString {
	var out SiloString
	copy(out[:8], s)
	binary.BigEndian.PutUint64(out[8:], seahash.Sum64([]byte(s)))
	return out
}

// Interner is the process-local table mapping strings to their SiloString
// fingerprint and back, per spec.md §3's "full string lives in a
// process-local intern table" contract. It is built on patrickmn/go-cache
// with cache.NoExpiration: the interner is a pure memoization table for the
// lifetime of the process, not a TTL cache, so entries are never evicted by
// time and the library's expiration machinery is simply turned off.
type Interner struct {
	mu     sync.RWMutex
	toSilo map[string]SiloString
	toStr  *cache.Cache
}

// NewInterner returns an empty string interner.
func NewInterner() *Interner {
	return &Interner{
		toSilo: make(map[string]SiloString),
		toStr:  cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

// Intern returns the SiloString fingerprint for s, registering s as the
// canonical string for that fingerprint if this is the first time it has
// been seen.
func (in *Interner) Intern(s string) SiloString {
	in.mu.RLock()
	if fp, ok := in.toSilo[s]; ok {
		in.mu.RUnlock()
		return fp
	}
	in.mu.RUnlock()

	fp := newSiloString(s)

	in.mu.Lock()
	defer in.mu.Unlock()
	if existing, ok := in.toSilo[s]; ok {
		return existing
	}
	in.toSilo[s] = fp
	in.toStr.Set(string(fp[:]), s, cache.NoExpiration)
	return fp
}

// Resolve returns the canonical string for a fingerprint previously produced
// by Intern, and false if this interner never saw it.
func (in *Interner) Resolve(fp SiloString) (string, bool) {
	v, ok := in.toStr.Get(string(fp[:]))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// GobEncode implements gob.GobEncoder, persisting the string->fingerprint
// table; toStr is rebuilt from it on decode rather than serialized
// separately, since it holds the same pairs keyed the other way.
func (in *Interner) GobEncode() ([]byte, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(in.toSilo)
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (in *Interner) GobDecode(data []byte) error {
	var toSilo map[string]SiloString
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&toSilo); err != nil {
		return err
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.toSilo = toSilo
	in.toStr = cache.New(cache.NoExpiration, cache.NoExpiration)
	for s, fp := range toSilo {
		in.toStr.Set(string(fp[:]), s, cache.NoExpiration)
	}
	return nil
}

// StringPartition is a column partition of interned strings. There is no
// null encoding for STRING (spec.md §6); callers that need nullability use
// the empty string or an IndexedString column instead.
type StringPartition struct {
	Name     string
	Data     []SiloString
	interner *Interner
}

// NewStringPartition returns an empty, growable string column partition
// backed by the given interner. Multiple partitions of the same column
// share one interner so fingerprints remain comparable across partitions.
func NewStringPartition(name string, interner *Interner) *StringPartition {
	return &StringPartition{Name: name, interner: interner}
}

// Len returns the number of rows.
func (c *StringPartition) Len() int { return len(c.Data) }

// Append adds a row.
func (c *StringPartition) Append(value string) {
	c.Data = append(c.Data, c.interner.Intern(value))
}

// Get returns the row's string value, resolved through the shared interner.
func (c *StringPartition) Get(row int) string {
	s, ok := c.interner.Resolve(c.Data[row])
	if !ok {
		// The interner is process-local and never evicts entries it has
		// seen; this can only happen if row was populated by a different
		// interner instance.
		return ""
	}
	return s
}

// Fingerprint returns the raw SiloString at row, for equality comparisons
// that don't need the resolved string (e.g. StringEquals filter nodes,
// which intern their literal once and compare fingerprints row by row).
func (c *StringPartition) Fingerprint(row int) SiloString {
	return c.Data[row]
}

// ShrinkToFit trims excess capacity after ingest.
func (c *StringPartition) ShrinkToFit() {
	data := make([]SiloString, len(c.Data))
	copy(data, c.Data)
	c.Data = data
}

// SetInterner attaches the shared interner a partition loaded from disk
// should resolve strings through. The interner field is gob-invisible on
// purpose (see internal/table/persistence.go): every partition of a table
// shares one interner, so it is persisted once, not once per STRING
// column.
func (c *StringPartition) SetInterner(in *Interner) {
	c.interner = in
}
