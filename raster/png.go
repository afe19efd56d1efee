// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// EncodePNG writes the bitmap as a minimal valid PNG: the 8-byte
// signature, an IHDR chunk (8-bit RGBA), a single IDAT chunk holding the
// zlib-deflated scanlines (each prefixed with the "no filter" byte, BGRA
// converted to the RGBA order PNG expects), and an empty IEND chunk. Any
// standard decoder can verify the output.
func EncodePNG(b Bitmap) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	var out bytes.Buffer
	out.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(b.Width))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(b.Height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // color type: RGBA
	// compression, filter and interlace methods stay zero
	writeChunk(&out, "IHDR", ihdr)

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	row := make([]byte, 1+b.Width*4)
	for y := 0; y < b.Height; y++ {
		row[0] = 0 // no per-scanline filter
		src := b.Pix[y*b.Stride:]
		for x := 0; x < b.Width; x++ {
			px := src[x*4 : x*4+4]
			dst := row[1+x*4:]
			dst[0] = px[2] // R
			dst[1] = px[1] // G
			dst[2] = px[0] // B
			dst[3] = px[3] // A
		}
		if _, err := zw.Write(row); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	writeChunk(&out, "IDAT", idat.Bytes())

	writeChunk(&out, "IEND", nil)
	return out.Bytes(), nil
}

// writeChunk emits one length-prefixed, type-tagged chunk trailed by a
// CRC-32 (IEEE) over type+data.
func writeChunk(out *bytes.Buffer, typ string, data []byte) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:], uint32(len(data)))
	copy(hdr[4:], typ)
	out.Write(hdr[:])
	out.Write(data)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())
	out.Write(tail[:])
}
