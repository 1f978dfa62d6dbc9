package primitive

// Unify resolves two kinds observed for the same field into one.
// The result does not depend on argument order.
//
//   - equal kinds are kept
//   - integers widen to the wider integer, floats to the wider float
//   - an integer of at most 16 bits and a float32 give float32, any other
//     integer and float mix gives float64
//   - decimal absorbs every other numeric kind
//   - date and timestamp give timestamp
//   - everything else falls back to string, which every scalar can be rendered as
func Unify(a, b KindEnum) KindEnum {
	if a == b {
		return a
	}

	if a == 0 {
		return b
	}

	if b == 0 {
		return a
	}

	if a.IsNumber() && b.IsNumber() {
		return unifyNumbers(a, b)
	}

	if a.IsTemporal() && b.IsTemporal() {
		return KindTimestamp
	}

	return KindString
}

func unifyNumbers(a, b KindEnum) KindEnum {
	switch {
	case a == KindDecimal || b == KindDecimal:
		return KindDecimal
	case a.IsInteger() && b.IsInteger(), a.IsFloat() && b.IsFloat():
		return max(a, b)
	}

	integer, float := a, b
	if a.IsFloat() {
		integer, float = b, a
	}

	if float == KindFloat32 && integer.Bits() <= 16 {
		return KindFloat32
	}

	return KindFloat64
}
