package services

import (
	"math"
	"math/bits"

	"github.com/dmitrijs2005/govkeeper/internal/common"
)

// vestedAmount returns how much of total has vested after vestedTime
// seconds of the linear period: min(total, total*vestedTime/linearPeriod),
// computed with a 128-bit intermediate so the multiplication cannot
// overflow. A negative vestedTime yields zero; once vestedTime reaches
// linearPeriod the full total is vested (including the degenerate
// linearPeriod == 0, fully vested at cliff end).
func vestedAmount(total uint64, vestedTime, linearPeriod int64) uint64 {
	if vestedTime < 0 {
		return 0
	}
	if vestedTime >= linearPeriod {
		return total
	}
	hi, lo := bits.Mul64(total, uint64(vestedTime))
	// vestedTime < linearPeriod guarantees the quotient fits in 64 bits,
	// which is exactly the hi < divisor precondition of Div64.
	q, _ := bits.Div64(hi, lo, uint64(linearPeriod))
	return q
}

// checkedAdd returns a+b or common.ErrOverflow.
func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, common.ErrOverflow
	}
	return a + b, nil
}

// checkedMul returns a*b or common.ErrOverflow.
func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, common.ErrOverflow
	}
	return lo, nil
}
