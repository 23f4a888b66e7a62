// Package binomial computes binomial coefficients with overflow checking,
// used only to decide whether a discard completion is cheap enough to
// enumerate exhaustively.
package binomial

import "math"

// C computes the binomial coefficient "n choose k" using symmetry
// reduction (k <- min(k, n-k)) and checked arithmetic. The second return
// value is false if the true value would overflow uint64.
//
// k > n returns (1, true) rather than (0, true). This is not
// mathematically standard: it treats an impossible combination as "one
// trivial outcome". It exists solely to make the enumeration-threshold
// comparison in the discard strategy cheap to express, and callers must
// not rely on it meaning anything else.
func C(n, k int) (uint64, bool) {
	if n < 0 || k < 0 {
		return 0, false
	}
	if k > n {
		return 1, true
	}
	if k > n-k {
		k = n - k
	}
	if k == 0 {
		return 1, true
	}

	// result * (n-k+i) / i equals C(n-k+i, i) after each step, which is
	// always an integer. Dividing g = gcd(result, i) out of result first
	// leaves i/g dividing n-k+i exactly, so the one multiplication left
	// yields C(n-k+i, i) itself and overflows only when that value does.
	result := uint64(1)
	for i := 1; i <= k; i++ {
		g, r := result, uint64(i)
		for r != 0 {
			g, r = r, g%r
		}
		var overflow bool
		result, overflow = mulOverflows(result/g, uint64(n-k+i)/(uint64(i)/g))
		if overflow {
			return 0, false
		}
	}
	return result, true
}

func mulOverflows(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	if a > math.MaxUint64/b {
		return 0, true
	}
	return a * b, false
}
