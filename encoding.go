package xbase

import "github.com/axgle/mahonia"

// EncodingConverter encodes/decodes type-C (String) field payloads under a
// caller-selected text encoding. The default, returned by UTF8Converter, is
// a byte-transparent UTF-8 passthrough; non-UTF-8 xBase dialects (GBK,
// BIG5, legacy code pages) are supported via NewEncodingConverter, wrapping
// github.com/axgle/mahonia the way the teacher's NewDBFFromFile did.
type EncodingConverter struct {
	name    string
	encoder mahonia.Encoder
	decoder mahonia.Decoder
}

// UTF8Converter is the default converter: field bytes are the value's raw
// UTF-8 bytes, unchanged in either direction.
func UTF8Converter() EncodingConverter {
	return EncodingConverter{name: "utf-8"}
}

// NewEncodingConverter builds a converter for the named mahonia encoding
// (e.g. "gbk", "big5"). An empty name behaves like UTF8Converter.
func NewEncodingConverter(name string) EncodingConverter {
	if name == "" || name == "utf-8" || name == "UTF-8" {
		return UTF8Converter()
	}
	return EncodingConverter{
		name:    name,
		encoder: mahonia.NewEncoder(name),
		decoder: mahonia.NewDecoder(name),
	}
}

// Encode converts a Go string into the field's on-disk bytes.
func (c EncodingConverter) Encode(s string) []byte {
	if c.encoder == nil {
		return []byte(s)
	}
	return []byte(c.encoder.ConvertString(s))
}

// Decode converts raw field bytes into a Go string.
func (c EncodingConverter) Decode(b []byte) string {
	if c.decoder == nil {
		return string(b)
	}
	return c.decoder.ConvertString(string(b))
}
