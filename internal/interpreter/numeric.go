package interpreter

import (
	"pawscript/internal/object"
	"pawscript/internal/types"
)

// numKind ranks the four numeric runtime kinds for the widening rule
// spec.md §8 scenario 6 requires (see DESIGN.md's Open Question
// resolution): Double > Float > Long > Int.
type numKind int

const (
	kInt numKind = iota
	kLong
	kFloat
	kDouble
)

func kindOf(v object.Object) (numKind, bool) {
	switch v.(type) {
	case *object.Integer:
		return kInt, true
	case *object.Long:
		return kLong, true
	case *object.Float:
		return kFloat, true
	case *object.Double:
		return kDouble, true
	}
	return 0, false
}

// asFloat64 extracts v's numeric value as a float64, regardless of its
// concrete runtime kind.
func asFloat64(v object.Object) (float64, bool) {
	switch v := v.(type) {
	case *object.Integer:
		return float64(v.Value), true
	case *object.Long:
		return float64(v.Value), true
	case *object.Float:
		return float64(v.Value), true
	case *object.Double:
		return v.Value, true
	}
	return 0, false
}

func makeNumeric(k numKind, f float64) object.Object {
	switch k {
	case kInt:
		return &object.Integer{Value: int32(f)}
	case kLong:
		return &object.Long{Value: int64(f)}
	case kFloat:
		return &object.Float{Value: float32(f)}
	default:
		return &object.Double{Value: f}
	}
}

// widenBoth converts l and r to whichever of their two kinds is wider,
// mirroring internal/typechecker.widenNumeric at runtime.
func widenBoth(l, r object.Object) (object.Object, object.Object, numKind) {
	lk, _ := kindOf(l)
	rk, _ := kindOf(r)
	target := lk
	if rk > target {
		target = rk
	}
	lf, _ := asFloat64(l)
	rf, _ := asFloat64(r)
	return makeNumeric(target, lf), makeNumeric(target, rf), target
}

// primitiveNumericKind maps a static numeric primitive to its runtime
// numKind, for `as` casts that target a concrete numeric type.
func primitiveNumericKind(t types.Type) (numKind, bool) {
	p, ok := t.(*types.Primitive)
	if !ok {
		return 0, false
	}
	switch p.Kind {
	case types.KInt:
		return kInt, true
	case types.KLong:
		return kLong, true
	case types.KFloat:
		return kFloat, true
	case types.KDouble:
		return kDouble, true
	}
	return 0, false
}
