// Package stereo implements the stereo matrix, grounded on
// original_source/StereoMatrix.{h,cpp}.
package stereo

// Matrix turns interleaved [L0,R0,L1,R1,...] frames at Fs_out into mono
// (M=L+R) and side (S=L-R) arrays. Stateless and O(N), matching the
// source's process(): no allocation, no branches per sample.
func Matrix(interleaved []float32, mono, side []float32) {
	n := len(interleaved) / 2
	for i := 0; i < n; i++ {
		l := interleaved[2*i]
		r := interleaved[2*i+1]
		mono[i] = l + r
		side[i] = l - r
	}
}

// Invert is the matrix's round-trip inverse used by tests: given M and
// S, reproduce the original L and R.
func Invert(mono, side []float32, l, r []float32) {
	for i := range mono {
		l[i] = (mono[i] + side[i]) / 2
		r[i] = (mono[i] - side[i]) / 2
	}
}
