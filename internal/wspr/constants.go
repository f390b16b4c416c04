package wspr

/*
 * WSPR protocol constants.
 * Table layout and naming follow the FT8/FT4 constants convention used
 * elsewhere in this codebase; the values themselves are the WSPR protocol
 * (payload framing, convolutional code, interleaver, sync vector).
 */

const (
	NumSymbols    = 162 // total channel symbols
	PayloadBits   = 50  // callsign(28) + grid/power(22)
	TailBits      = 31  // convolutional flush tail
	InfoBits      = PayloadBits + TailBits
	BufferBytes   = 11 // 88 bits: 50 payload + 31 tail + 7 unused
	BufferBits    = BufferBytes * 8
	ConstraintLen = 32

	SampleRate       = 12000
	SamplesPerSymbol = 8192 // 12000/1.4648 Hz tone spacing
	SymbolPeriodSec  = float64(SamplesPerSymbol) / SampleRate

	ToneSpacingHz = float64(SampleRate) / SamplesPerSymbol // 1.4648 Hz
	CenterFreqHz  = 1500.0
	Amplitude     = 16383 / 4 // 4095, one eighth of int16 peak

	EncodeSamples = NumSymbols * SamplesPerSymbol // 1,327,104
	EncodeBytes   = 2 * EncodeSamples             // 2,654,208

	DecodeWindowSec     = 114
	DecodeWindowSamples = DecodeWindowSec * SampleRate

	// Candidate search bounds (spec.md §4.5)
	FreqSearchHalfWidthHz = 150.0
	FreqSearchStepHz      = 0.5
	TimeSearchMinSec      = -1.0
	TimeSearchMaxSec      = 2.0
	TimeSearchStepSec     = 0.5
	DriftSearchMaxHzPerS  = 4.0
	DriftSearchStepHzPerS = 0.25
	MaxCandidates         = 200

	// Spectrogram front-end (C4)
	FFTSize         = 16384
	FrameOverlap    = 0.5
	SubBandLowHz    = 1350.0
	SubBandHighHz   = 1650.0
	FreqBinWidthHz  = float64(SampleRate) / FFTSize // ~0.732 Hz

	// Fano decoder defaults (spec.md §4.7)
	FanoCycleLimit = 100000
)

// Convolutional encoder polynomials (spec.md §4.2), rate 1/2, constraint length 32.
const (
	Poly0 = 0xF2D05351
	Poly1 = 0xE4613C47
)

// powerCorrection snaps a raw power value (mod 10) to the nearest value of
// the form n where n mod 10 is in {0,3,7}. Index by p%10.
var powerCorrection = [10]int{0, -1, 1, 0, -1, 2, 1, 0, -1, 1}

// interleaveTable is the fixed 162-entry bit-interleave permutation
// (bit-reversal of 8-bit indices, filtered to values < 162, in increasing
// index order). See DESIGN.md for how this is derived and why.
var interleaveTable = [NumSymbols]int{
	0, 128, 64, 32, 160, 96, 16, 144, 80, 48, 112, 8, 136, 72, 40, 104,
	24, 152, 88, 56, 120, 4, 132, 68, 36, 100, 20, 148, 84, 52, 116, 12,
	140, 76, 44, 108, 28, 156, 92, 60, 124, 2, 130, 66, 34, 98, 18, 146,
	82, 50, 114, 10, 138, 74, 42, 106, 26, 154, 90, 58, 122, 6, 134, 70,
	38, 102, 22, 150, 86, 54, 118, 14, 142, 78, 46, 110, 30, 158, 94, 62,
	126, 1, 129, 65, 33, 161, 97, 17, 145, 81, 49, 113, 9, 137, 73, 41,
	105, 25, 153, 89, 57, 121, 5, 133, 69, 37, 101, 21, 149, 85, 53, 117,
	13, 141, 77, 45, 109, 29, 157, 93, 61, 125, 3, 131, 67, 35, 99, 19,
	147, 83, 51, 115, 11, 139, 75, 43, 107, 27, 155, 91, 59, 123, 7, 135,
	71, 39, 103, 23, 151, 87, 55, 119, 15, 143, 79, 47, 111, 31, 159, 95,
	63, 127,
}

// syncVector is the fixed 162-bit WSPR sync pattern carried in the low
// bit of every symbol. Generated from a 9-bit LFSR (taps at bits 9 and 5,
// seed 0x1FF; not maximal-length: after the 9 seed bits the pattern repeats
// every 21 symbols); balanced 81 ones / 81 zeros. See DESIGN.md.
var syncVector = [NumSymbols]uint8{
	1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 1, 0, 1,
	0, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 0, 0, 0, 1, 1,
	1, 1, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0,
	0, 0, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 0, 0, 1, 1,
	0, 0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 1, 0, 1, 0,
	1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 0, 0, 0, 1, 1, 1,
	1, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 0,
	0, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0,
	0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1,
	0, 0,
}

// byteParityTable is the standard 256-entry even-parity lookup table
// (popcount(b) & 1), used to compute convolutional-encoder output bits
// without a popcount instruction.
var byteParityTable = [256]uint8{
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
}
