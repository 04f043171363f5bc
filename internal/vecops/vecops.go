// Package vecops holds the narrow, audited primitives that touch sample
// data in the hot render path: add, multiply, scale-multiply-add and
// scale-multiply. Keeping them in one small package means any future SIMD
// specialization (build-tag-gated assembly, or calling into an external
// vector library) only has one place to land, instead of every node
// reimplementing its own inner loop.
package vecops

// Add computes dst[i] += src[i] for i in [0, min(len(dst), len(src))).
func Add(dst, src []float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
}

// Mul computes dst[i] *= src[i] for i in [0, min(len(dst), len(src))).
func Mul(dst, src []float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] *= src[i]
	}
}

// ScalarMul computes dst[i] *= s for every i.
func ScalarMul(dst []float32, s float32) {
	for i := range dst {
		dst[i] *= s
	}
}

// ScaleMulAdd computes dst[i] += src[i] * s for every i.
func ScaleMulAdd(dst, src []float32, s float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i] * s
	}
}

// MulBuffer multiplies dst[i] by gains[i] element-wise, a per-sample gain
// ramp applied to one channel.
func MulBuffer(dst, gains []float32) {
	Mul(dst, gains)
}

// Zero sets every element of dst to 0.
func Zero(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
}

// FlushDenormals snaps values whose magnitude is below 1e-15 (a range
// that includes every denormal float32) to exact zero. Denormal arithmetic is drastically
// slower on most FPUs, which matters in a loop that runs every block.
func FlushDenormals(dst []float32) {
	const threshold = 1e-15
	for i, v := range dst {
		if v < threshold && v > -threshold {
			dst[i] = 0
		}
	}
}
