package xbase

import (
	"bytes"
	"strconv"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
)

const dbtBlockSize = 512
const dbtVersionByte = 0x03

// dbtBuffer accumulates memo payloads into a 512-byte block heap during a
// single Writer pass, per spec.md §4.6 "Write path".
type dbtBuffer struct {
	buf       []byte
	nextIndex uint32
}

func newDBTBuffer() *dbtBuffer {
	header := make([]byte, dbtBlockSize)
	header[0] = 1
	header[16] = dbtVersionByte
	return &dbtBuffer{buf: header, nextIndex: 1}
}

// writeMemo appends payload as one or more 512-byte blocks and returns the
// pre-assignment block index the payload occupies - the index the DBF
// writer embeds in the record's M/G/B field.
func (d *dbtBuffer) writeMemo(payload []byte) uint32 {
	index := d.nextIndex
	if len(payload) < dbtBlockSize-2 {
		block := make([]byte, dbtBlockSize)
		copy(block, payload)
		block[dbtBlockSize-1] = eofMarker
		d.buf = append(d.buf, block...)
		d.nextIndex++
	} else {
		span := (len(payload) + dbtBlockSize - 1) / dbtBlockSize
		region := make([]byte, span*dbtBlockSize)
		copy(region, payload)
		region[len(region)-1] = eofMarker
		region[len(region)-2] = eofMarker
		d.buf = append(d.buf, region...)
		d.nextIndex += uint32(span)
	}
	writeU32At(d.buf, 0, d.nextIndex)
	return index
}

// writeU32At overwrites 4 little-endian bytes in place.
func writeU32At(buf []byte, offset int, v uint32) {
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
	buf[offset+2] = byte(v >> 16)
	buf[offset+3] = byte(v >> 24)
}

func (d *dbtBuffer) bytes() []byte { return d.buf }

func validateDBTBuffer(buf []byte) error {
	if len(buf) < 1024 {
		return &ReadError{cause: errors.Errorf("DBT buffer too short: %d bytes, need >= 1024", len(buf))}
	}
	if len(buf)%dbtBlockSize != 0 {
		return &ReadError{cause: errors.Errorf("DBT buffer length %d is not a multiple of %d", len(buf), dbtBlockSize)}
	}
	return nil
}

// ReadMemo resolves the payload stored at the given 1-based block index.
//
// This preserves a known imperfection documented in spec.md §4.6/§9: the
// EOF byte is located by scanning from the start of the whole buffer, not
// from the start of the requested block, so a memo stored in an earlier
// block masks the content of a later one: in a buffer holding several
// memos, every memo stored after the first reads back as an empty string,
// whatever order the blocks are read in. The returned string keeps the
// block's NUL padding up to the EOF byte.
func ReadMemo(dbt []byte, index uint32) (string, error) {
	if err := validateDBTBuffer(dbt); err != nil {
		return "", err
	}
	if int64(dbtBlockSize)*int64(index) >= int64(len(dbt)) {
		return "", &ReadError{cause: errors.Errorf("DBT block index %d out of range for buffer of %d bytes", index, len(dbt))}
	}
	advisory("ReadMemo(%d): scanning for EOF from buffer offset 0, not block offset - earlier blocks may mask this one", index)
	eof := bytes.IndexByte(dbt, eofMarker)
	if eof == -1 {
		return "", &ReadError{cause: errors.Errorf("DBT block %d: no EOF marker found in buffer", index)}
	}
	start := dbtBlockSize * int(index)
	if eof-start >= dbtBlockSize {
		if eof+1 >= len(dbt) || dbt[eof+1] != eofMarker {
			return "", &ReadError{cause: errors.Errorf("DBT block %d: multi-block payload missing second EOF byte", index)}
		}
	}
	if eof < start {
		// This is the masking imperfection itself: an earlier block's
		// EOF byte was found first, so this block's real content is
		// never reached. Preserved rather than special-cased, per
		// spec.md §9.
		return "", nil
	}
	return string(dbt[start:eof]), nil
}

// memoCache is an optional read-through cache in front of ReadMemo, keyed
// by block index, avoiding a repeat buffer-wide EOF scan for memo
// references resolved more than once (e.g. the same row read many times).
type memoCache struct {
	dbt   []byte
	cache *ristretto.Cache
}

// NewMemoCache builds a cached resolver bound to one immutable DBT buffer.
// The cache does not survive across different DBT buffers; build a fresh
// one per buffer.
func NewMemoCache(dbt []byte) (*memoCache, error) {
	if err := validateDBTBuffer(dbt); err != nil {
		return nil, err
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "initializing memo cache")
	}
	return &memoCache{dbt: dbt, cache: c}, nil
}

// ReadMemoCached resolves a memo block index through the cache, falling
// back to ReadMemo on a miss.
func (m *memoCache) ReadMemoCached(index uint32) (string, error) {
	if v, ok := m.cache.Get(index); ok {
		return v.(string), nil
	}
	s, err := ReadMemo(m.dbt, index)
	if err != nil {
		return "", err
	}
	m.cache.Set(index, s, int64(len(s)))
	m.cache.Wait()
	return s, nil
}

// ReadMemosMerged enumerates every block in dbt as a map from block index
// to decoded content, per spec.md §4.6 "Read - enumerate merged". Key 0
// holds the header's next-free-block index stringified. Spanning payloads
// are merged into a single entry keyed by their first block index.
func ReadMemosMerged(dbt []byte) (map[uint32]string, error) {
	if err := validateDBTBuffer(dbt); err != nil {
		return nil, err
	}
	result := map[uint32]string{
		0: strconv.FormatUint(uint64(readU32(dbt, 0)), 10),
	}
	blockIndex := uint32(1)
	for int(blockIndex)*dbtBlockSize < len(dbt) {
		start := int(blockIndex) * dbtBlockSize
		tail := dbt[start:]
		rel := bytes.IndexByte(tail, eofMarker)
		if rel == -1 {
			break
		}
		if rel >= dbtBlockSize {
			span := uint32((rel + dbtBlockSize - 1) / dbtBlockSize)
			result[blockIndex] = string(tail[:rel])
			blockIndex += span
			continue
		}
		result[blockIndex] = string(tail[:rel])
		blockIndex++
	}
	return result, nil
}

// ReadMemosUnmerged enumerates every block in dbt as a flat list, per
// spec.md §4.6 "Read - enumerate unmerged". Element 0 is the header's
// next-free index stringified; every subsequent element is exactly 511
// bytes of its block (the documented off-by-one preserved from the
// reference implementation - a full block is 512 bytes, this returns
// [start, start+511)).
func ReadMemosUnmerged(dbt []byte) ([]string, error) {
	if err := validateDBTBuffer(dbt); err != nil {
		return nil, err
	}
	out := []string{strconv.FormatUint(uint64(readU32(dbt, 0)), 10)}
	for start := dbtBlockSize; start+dbtBlockSize-1 <= len(dbt); start += dbtBlockSize {
		out = append(out, string(dbt[start:start+dbtBlockSize-1]))
	}
	return out, nil
}
