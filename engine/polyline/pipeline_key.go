package polyline

import (
	"fmt"
	"math/bits"
	"strings"
)

// PolylinePipelineKey selects one variant of the polyline pipeline. The low bits are
// feature flags; bits 29..31 hold log2 of the MSAA sample count.
//
//	bit 0      PERSPECTIVE
//	bit 1      TRANSPARENT_MAIN_PASS
//	bit 2      HDR
//	bits 29-31 log2(msaa samples)
type PolylinePipelineKey uint32

const (
	PolylinePipelineKeyNone                PolylinePipelineKey = 0
	PolylinePipelineKeyPerspective         PolylinePipelineKey = 1 << 0
	PolylinePipelineKeyTransparentMainPass PolylinePipelineKey = 1 << 1
	PolylinePipelineKeyHDR                 PolylinePipelineKey = 1 << 2
)

const (
	msaaMaskBits = 0b111
	msaaShift    = 32 - 3
	flagMask     = PolylinePipelineKeyPerspective | PolylinePipelineKeyTransparentMainPass | PolylinePipelineKeyHDR
)

// FromMSAASamples encodes a sample count. samples must be a power of two up to 128; other
// values encode the largest power of two dividing them.
//
// Parameters:
//   - samples: the MSAA sample count
//
// Returns:
//   - PolylinePipelineKey: a key holding only the sample count
func FromMSAASamples(samples uint32) PolylinePipelineKey {
	log2 := uint32(bits.TrailingZeros32(samples)) & msaaMaskBits
	return PolylinePipelineKey(log2 << msaaShift)
}

// FromHDR returns PolylinePipelineKeyHDR when hdr is set and the empty key otherwise.
func FromHDR(hdr bool) PolylinePipelineKey {
	if hdr {
		return PolylinePipelineKeyHDR
	}
	return PolylinePipelineKeyNone
}

// MSAASamples decodes the sample count.
func (k PolylinePipelineKey) MSAASamples() uint32 {
	return 1 << ((uint32(k) >> msaaShift) & msaaMaskBits)
}

// Contains reports whether every flag set in flags is set in k.
func (k PolylinePipelineKey) Contains(flags PolylinePipelineKey) bool {
	return k&flags == flags
}

// Union returns k with every bit of other set. Combining two keys that both carry a sample
// count ORs the encoded counts, so callers add the sample count once.
func (k PolylinePipelineKey) Union(other PolylinePipelineKey) PolylinePipelineKey {
	return k | other
}

func (k PolylinePipelineKey) String() string {
	var flags []string
	if k.Contains(PolylinePipelineKeyPerspective) {
		flags = append(flags, "PERSPECTIVE")
	}
	if k.Contains(PolylinePipelineKeyTransparentMainPass) {
		flags = append(flags, "TRANSPARENT_MAIN_PASS")
	}
	if k.Contains(PolylinePipelineKeyHDR) {
		flags = append(flags, "HDR")
	}
	if k&flagMask == 0 {
		flags = append(flags, "NONE")
	}
	return fmt.Sprintf("%s|MSAA%d", strings.Join(flags, "|"), k.MSAASamples())
}
