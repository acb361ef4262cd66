package xbase

import (
	"time"

	"github.com/pkg/errors"
)

const (
	versionNoMemo   byte = 0x03
	versionWithMemo byte = 0x83

	markerLive       byte = 0x20
	markerDeleted    byte = 0x2A
	fieldTerminator  byte = 0x0D
	eofMarker        byte = 0x1A
	headerSize            = 32
	fieldDescriptorSize   = 32
)

// dbfHeader mirrors the 32-byte on-disk DBF header described in spec.md §4.2.
type dbfHeader struct {
	Version         byte
	LastUpdateYear  byte // year - 1900
	LastUpdateMonth byte
	LastUpdateDay   byte
	NumRecords      uint32
	HeaderLength    uint16
	RecordLength    uint16
	IncompleteTx    byte
	EncryptFlag     byte
	MDXFlag         byte
	LanguageDriver  byte
}

func headerLength(numColumns int) int {
	return fieldDescriptorSize*numColumns + headerSize + 1
}

func buildHeader(s *Schema, now time.Time) dbfHeader {
	version := versionNoMemo
	if s.HasMemoColumn() {
		version = versionWithMemo
	}
	year, month, day := now.Date()
	return dbfHeader{
		Version:         version,
		LastUpdateYear:  byte(year - 1900),
		LastUpdateMonth: byte(month),
		LastUpdateDay:   byte(day),
		NumRecords:      uint32(s.RecordCount()),
		HeaderLength:    uint16(headerLength(len(s.columns))),
		RecordLength:    uint16(s.RecordWidth()),
	}
}

func (h dbfHeader) encode(b *byteBuffer) {
	b.writeByte(h.Version)
	b.writeByte(h.LastUpdateYear)
	b.writeByte(h.LastUpdateMonth)
	b.writeByte(h.LastUpdateDay)
	b.writeU32(h.NumRecords)
	b.writeU16(h.HeaderLength)
	b.writeU16(h.RecordLength)
	b.writeU16(0) // reserved, offsets 12-13
	b.writeByte(h.IncompleteTx)
	b.writeByte(h.EncryptFlag)
	for i := 0; i < 12; i++ { // reserved, offsets 16-27
		b.writeByte(0)
	}
	b.writeByte(h.MDXFlag)
	b.writeByte(h.LanguageDriver)
	b.writeU16(0) // reserved, offsets 30-31
}

func decodeHeader(buf []byte) (dbfHeader, error) {
	if len(buf) < headerSize {
		return dbfHeader{}, &ReadError{cause: errors.Errorf("buffer too short for DBF header: %d bytes", len(buf))}
	}
	h := dbfHeader{
		Version:         buf[0],
		LastUpdateYear:  buf[1],
		LastUpdateMonth: buf[2],
		LastUpdateDay:   buf[3],
		NumRecords:      readU32(buf, 4),
		HeaderLength:    readU16(buf, 8),
		RecordLength:    readU16(buf, 10),
		IncompleteTx:    buf[14],
		EncryptFlag:     buf[15],
		MDXFlag:         buf[28],
		LanguageDriver:  buf[29],
	}
	if h.IncompleteTx != 0 && h.IncompleteTx != 1 {
		return dbfHeader{}, &ReadError{cause: errors.Errorf("invalid incomplete-transaction flag byte %#x", h.IncompleteTx)}
	}
	if h.EncryptFlag != 0 && h.EncryptFlag != 1 {
		return dbfHeader{}, &ReadError{cause: errors.Errorf("invalid encryption flag byte %#x", h.EncryptFlag)}
	}
	if h.IncompleteTx == 1 {
		advisory("DBF header reports incomplete-transaction flag set; the flag is not interpreted")
	}
	if h.EncryptFlag == 1 {
		advisory("DBF header reports encryption flag set; decryption is not performed, raw bytes are returned")
	}
	return h, nil
}
