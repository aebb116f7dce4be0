package exec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/inf.v0"

	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// Eval walks a typed, coerced operator tree and produces the Datum it
// evaluates to against row (the current table row, or nil for a
// FROM-less SELECT) and params (the statement's bound parameters,
// 1-indexed as $1, $2, ...).
func Eval(n *tree.Node, row catalog.Row, params []parser.Datum) (parser.Datum, error) {
	if n == nil {
		return parser.DNull, nil
	}

	switch n.Kind {
	case tree.ColumnRef:
		return row[n.ColumnOrdinal], nil

	case tree.Param:
		if n.ParamIndex < 1 || n.ParamIndex > len(params) {
			return parser.DNull, nil
		}
		return params[n.ParamIndex-1], nil

	case tree.Literal:
		return evalLiteral(n)

	case tree.Cast:
		v, err := Eval(n.Operand, row, params)
		if err != nil {
			return nil, err
		}
		return castDatum(v, n.Type)

	case tree.Binary:
		left, err := Eval(n.Left, row, params)
		if err != nil {
			return nil, err
		}
		right, err := Eval(n.Right, row, params)
		if err != nil {
			return nil, err
		}
		return evalBinary(n.Op, left, right, n.Type)

	case tree.Unary:
		v, err := Eval(n.Operand, row, params)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.UnaryOp, v, n.Type)
	}

	return parser.DNull, nil
}

func evalLiteral(n *tree.Node) (parser.Datum, error) {
	switch n.LiteralKind {
	case parser.NullLiteral:
		return parser.DNull, nil
	case parser.BoolLiteral:
		return parser.DBool(n.LiteralBool), nil
	case parser.IntegerLiteral:
		v, err := strconv.ParseInt(n.LiteralText, 10, 64)
		if err != nil {
			return nil, errInvalidText(n.LiteralText, "integer")
		}
		return parser.DInt(v), nil
	case parser.FloatLiteral:
		v, err := strconv.ParseFloat(n.LiteralText, 64)
		if err != nil {
			return nil, errInvalidText(n.LiteralText, "double precision")
		}
		return parser.DFloat(v), nil
	case parser.StringLiteral:
		return parser.DString(n.LiteralText), nil
	}
	return parser.DNull, nil
}

func castDatum(v parser.Datum, target types.Type) (parser.Datum, error) {
	if v == parser.DNull {
		return parser.DNull, nil
	}
	switch target.Family {
	case types.Bool:
		return coerceToBool(v)
	case types.SmallInt, types.Integer, types.BigInt:
		return coerceToInt(v, target)
	case types.Real, types.Double:
		return coerceToFloat(v)
	case types.Numeric:
		return coerceToDecimal(v)
	case types.Char, types.VarChar, types.Text:
		return coerceToString(v)
	}
	return v, nil
}

func coerceToBool(v parser.Datum) (parser.Datum, error) {
	switch d := v.(type) {
	case parser.DBool:
		return d, nil
	case parser.DString:
		switch strings.ToLower(strings.TrimSpace(string(d))) {
		case "t", "true", "y", "yes", "on", "1":
			return parser.DBool(true), nil
		case "f", "false", "n", "no", "off", "0":
			return parser.DBool(false), nil
		}
		return nil, errInvalidText(string(d), "boolean")
	}
	return nil, errInvalidText(fmt.Sprint(v), "boolean")
}

func coerceToInt(v parser.Datum, target types.Type) (parser.Datum, error) {
	var i int64
	switch d := v.(type) {
	case parser.DInt:
		i = int64(d)
	case parser.DFloat:
		i = int64(d)
	case *parser.DDecimal:
		f, _ := strconv.ParseFloat(d.String(), 64)
		i = int64(f)
	case parser.DString:
		parsed, err := strconv.ParseInt(strings.TrimSpace(string(d)), 10, 64)
		if err != nil {
			return nil, errInvalidText(string(d), target.String())
		}
		i = parsed
	default:
		return nil, errInvalidText(fmt.Sprint(v), target.String())
	}
	if err := checkIntRange(i, target); err != nil {
		return nil, err
	}
	return parser.DInt(i), nil
}

func checkIntRange(i int64, target types.Type) error {
	switch target.Family {
	case types.SmallInt:
		if i < math.MinInt16 || i > math.MaxInt16 {
			return errOutOfRange("smallint")
		}
	case types.Integer:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return errOutOfRange("integer")
		}
	}
	return nil
}

func coerceToFloat(v parser.Datum) (parser.Datum, error) {
	switch d := v.(type) {
	case parser.DFloat:
		return d, nil
	case parser.DInt:
		return parser.DFloat(float64(d)), nil
	case *parser.DDecimal:
		f, _ := strconv.ParseFloat(d.String(), 64)
		return parser.DFloat(f), nil
	case parser.DString:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(d)), 64)
		if err != nil {
			return nil, errInvalidText(string(d), "double precision")
		}
		return parser.DFloat(f), nil
	}
	return nil, errInvalidText(fmt.Sprint(v), "double precision")
}

func coerceToDecimal(v parser.Datum) (parser.Datum, error) {
	switch d := v.(type) {
	case *parser.DDecimal:
		return d, nil
	case parser.DInt:
		return &parser.DDecimal{Dec: *inf.NewDec(int64(d), 0)}, nil
	case parser.DFloat:
		dec, ok := new(inf.Dec).SetString(strconv.FormatFloat(float64(d), 'f', -1, 64))
		if !ok {
			return nil, errInvalidText(fmt.Sprint(d), "numeric")
		}
		return &parser.DDecimal{Dec: *dec}, nil
	case parser.DString:
		dec, ok := new(inf.Dec).SetString(strings.TrimSpace(string(d)))
		if !ok {
			return nil, errInvalidText(string(d), "numeric")
		}
		return &parser.DDecimal{Dec: *dec}, nil
	}
	return nil, errInvalidText(fmt.Sprint(v), "numeric")
}

func coerceToString(v parser.Datum) (parser.Datum, error) {
	switch d := v.(type) {
	case parser.DString:
		return d, nil
	case parser.DInt:
		return parser.DString(strconv.FormatInt(int64(d), 10)), nil
	case parser.DFloat:
		return parser.DString(strconv.FormatFloat(float64(d), 'g', -1, 64)), nil
	case *parser.DDecimal:
		return parser.DString(d.String()), nil
	case parser.DBool:
		if bool(d) {
			return parser.DString("true"), nil
		}
		return parser.DString("false"), nil
	}
	return parser.DString(fmt.Sprint(v)), nil
}

func asDecimal(v parser.Datum) *inf.Dec {
	switch d := v.(type) {
	case *parser.DDecimal:
		return &d.Dec
	case parser.DInt:
		return inf.NewDec(int64(d), 0)
	case parser.DFloat:
		dec, _ := new(inf.Dec).SetString(strconv.FormatFloat(float64(d), 'f', -1, 64))
		return dec
	}
	return inf.NewDec(0, 0)
}

func evalBinary(op parser.BinaryOperator, left, right parser.Datum, resultType types.Type) (parser.Datum, error) {
	if op != parser.OpAnd && op != parser.OpOr && (left == parser.DNull || right == parser.DNull) {
		return parser.DNull, nil
	}

	switch op {
	case parser.OpAdd, parser.OpSub, parser.OpMul, parser.OpDiv, parser.OpMod, parser.OpPow:
		return evalArith(op, left, right, resultType)
	case parser.OpLt, parser.OpLe, parser.OpEq, parser.OpNe, parser.OpGe, parser.OpGt:
		return evalCompare(op, left, right)
	case parser.OpAnd:
		return evalAnd(left, right)
	case parser.OpOr:
		return evalOr(left, right)
	case parser.OpBitAnd, parser.OpBitOr, parser.OpShl, parser.OpShr, parser.OpBitXor:
		return evalBitwise(op, left, right)
	case parser.OpConcat:
		return evalConcat(left, right)
	case parser.OpLike, parser.OpNotLike:
		return evalLike(op, left, right)
	}
	return parser.DNull, nil
}

func evalArith(op parser.BinaryOperator, left, right parser.Datum, resultType types.Type) (parser.Datum, error) {
	switch resultType.Family {
	case types.SmallInt, types.Integer, types.BigInt:
		l, lok := left.(parser.DInt)
		r, rok := right.(parser.DInt)
		if !lok || !rok {
			lf, _ := coerceToInt(left, resultType)
			rf, _ := coerceToInt(right, resultType)
			l, _ = lf.(parser.DInt)
			r, _ = rf.(parser.DInt)
		}
		v, err := intArith(op, int64(l), int64(r))
		if err != nil {
			return nil, err
		}
		if err := checkIntRange(v, resultType); err != nil {
			return nil, err
		}
		return parser.DInt(v), nil

	case types.Real, types.Double:
		lf, err := coerceToFloat(left)
		if err != nil {
			return nil, err
		}
		rf, err := coerceToFloat(right)
		if err != nil {
			return nil, err
		}
		l, r := float64(lf.(parser.DFloat)), float64(rf.(parser.DFloat))
		v, err := floatArith(op, l, r)
		if err != nil {
			return nil, err
		}
		return parser.DFloat(v), nil

	case types.Numeric:
		l, r := asDecimal(left), asDecimal(right)
		return decimalArith(op, l, r)
	}
	return parser.DNull, nil
}

// intArith performs the arithmetic at int64 width (wide enough for
// BigInt, the widest integer family) and reports overflow explicitly:
// the result must never silently wrap, even when the declared result
// type is BigInt itself.
func intArith(op parser.BinaryOperator, l, r int64) (int64, error) {
	switch op {
	case parser.OpAdd:
		v := l + r
		if (r > 0 && v < l) || (r < 0 && v > l) {
			return 0, errOutOfRange("bigint")
		}
		return v, nil
	case parser.OpSub:
		v := l - r
		if (r < 0 && v < l) || (r > 0 && v > l) {
			return 0, errOutOfRange("bigint")
		}
		return v, nil
	case parser.OpMul:
		if l == 0 || r == 0 {
			return 0, nil
		}
		v := l * r
		if v/r != l || (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
			return 0, errOutOfRange("bigint")
		}
		return v, nil
	case parser.OpDiv:
		if r == 0 {
			return 0, errDivByZero()
		}
		if l == math.MinInt64 && r == -1 {
			return 0, errOutOfRange("bigint")
		}
		return l / r, nil
	case parser.OpMod:
		if r == 0 {
			return 0, errDivByZero()
		}
		return l % r, nil
	case parser.OpPow:
		f := math.Pow(float64(l), float64(r))
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, errOutOfRange("bigint")
		}
		return int64(f), nil
	}
	return 0, nil
}

func floatArith(op parser.BinaryOperator, l, r float64) (float64, error) {
	switch op {
	case parser.OpAdd:
		return l + r, nil
	case parser.OpSub:
		return l - r, nil
	case parser.OpMul:
		return l * r, nil
	case parser.OpDiv:
		if r == 0 {
			return 0, errDivByZero()
		}
		return l / r, nil
	case parser.OpPow:
		return math.Pow(l, r), nil
	}
	return 0, nil
}

func decimalArith(op parser.BinaryOperator, l, r *inf.Dec) (parser.Datum, error) {
	z := new(inf.Dec)
	switch op {
	case parser.OpAdd:
		z.Add(l, r)
	case parser.OpSub:
		z.Sub(l, r)
	case parser.OpMul:
		z.Mul(l, r)
	case parser.OpDiv:
		if r.Sign() == 0 {
			return nil, errDivByZero()
		}
		z.QuoRound(l, r, 16, inf.RoundHalfEven)
	default:
		return nil, errInvalidText(string(op), "numeric")
	}
	return &parser.DDecimal{Dec: *z}, nil
}

func evalCompare(op parser.BinaryOperator, left, right parser.Datum) (parser.Datum, error) {
	c, ok := compareDatums(left, right)
	if !ok {
		return parser.DNull, nil
	}
	switch op {
	case parser.OpLt:
		return parser.DBool(c < 0), nil
	case parser.OpLe:
		return parser.DBool(c <= 0), nil
	case parser.OpEq:
		return parser.DBool(c == 0), nil
	case parser.OpNe:
		return parser.DBool(c != 0), nil
	case parser.OpGe:
		return parser.DBool(c >= 0), nil
	case parser.OpGt:
		return parser.DBool(c > 0), nil
	}
	return parser.DNull, nil
}

func compareDatums(left, right parser.Datum) (int, bool) {
	switch l := left.(type) {
	case parser.DInt:
		switch r := right.(type) {
		case parser.DInt:
			return cmpInt64(int64(l), int64(r)), true
		case parser.DFloat:
			return cmpFloat64(float64(l), float64(r)), true
		case *parser.DDecimal:
			return asDecimal(l).Cmp(&r.Dec), true
		}
	case parser.DFloat:
		rf, err := coerceToFloat(right)
		if err == nil {
			return cmpFloat64(float64(l), float64(rf.(parser.DFloat))), true
		}
	case *parser.DDecimal:
		return l.Dec.Cmp(asDecimal(right)), true
	case parser.DString:
		if r, ok := right.(parser.DString); ok {
			return strings.Compare(string(l), string(r)), true
		}
	case parser.DBool:
		if r, ok := right.(parser.DBool); ok {
			if l == r {
				return 0, true
			}
			if !bool(l) {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func cmpInt64(l, r int64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func cmpFloat64(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

// evalAnd implements three-valued AND: FALSE dominates even a NULL peer.
func evalAnd(left, right parser.Datum) (parser.Datum, error) {
	lb, lnull := asTriBool(left)
	rb, rnull := asTriBool(right)
	if !lnull && !lb {
		return parser.DBool(false), nil
	}
	if !rnull && !rb {
		return parser.DBool(false), nil
	}
	if lnull || rnull {
		return parser.DNull, nil
	}
	return parser.DBool(lb && rb), nil
}

// evalOr implements three-valued OR: TRUE dominates even a NULL peer.
func evalOr(left, right parser.Datum) (parser.Datum, error) {
	lb, lnull := asTriBool(left)
	rb, rnull := asTriBool(right)
	if !lnull && lb {
		return parser.DBool(true), nil
	}
	if !rnull && rb {
		return parser.DBool(true), nil
	}
	if lnull || rnull {
		return parser.DNull, nil
	}
	return parser.DBool(lb || rb), nil
}

func asTriBool(d parser.Datum) (bool, bool) {
	if d == parser.DNull {
		return false, true
	}
	if b, ok := d.(parser.DBool); ok {
		return bool(b), false
	}
	return false, true
}

func evalBitwise(op parser.BinaryOperator, left, right parser.Datum) (parser.Datum, error) {
	if left == parser.DNull || right == parser.DNull {
		return parser.DNull, nil
	}
	l, _ := coerceToInt(left, types.T(types.BigInt))
	r, _ := coerceToInt(right, types.T(types.BigInt))
	a, b := int64(l.(parser.DInt)), int64(r.(parser.DInt))
	switch op {
	case parser.OpBitAnd:
		return parser.DInt(a & b), nil
	case parser.OpBitOr:
		return parser.DInt(a | b), nil
	case parser.OpShl:
		return parser.DInt(a << uint(b)), nil
	case parser.OpShr:
		return parser.DInt(a >> uint(b)), nil
	case parser.OpBitXor:
		return parser.DInt(a ^ b), nil
	}
	return parser.DNull, nil
}

func evalConcat(left, right parser.Datum) (parser.Datum, error) {
	if left == parser.DNull || right == parser.DNull {
		return parser.DNull, nil
	}
	l, err := coerceToString(left)
	if err != nil {
		return nil, err
	}
	r, err := coerceToString(right)
	if err != nil {
		return nil, err
	}
	return parser.DString(string(l.(parser.DString)) + string(r.(parser.DString))), nil
}

func evalLike(op parser.BinaryOperator, left, right parser.Datum) (parser.Datum, error) {
	if left == parser.DNull || right == parser.DNull {
		return parser.DNull, nil
	}
	l, _ := coerceToString(left)
	r, _ := coerceToString(right)
	re, err := likeToRegexp(string(r.(parser.DString)))
	if err != nil {
		return nil, err
	}
	matched := re.MatchString(string(l.(parser.DString)))
	if op == parser.OpNotLike {
		matched = !matched
	}
	return parser.DBool(matched), nil
}

func likeToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile("(?s)" + b.String())
	if err != nil {
		return nil, errInvalidText(pattern, "LIKE pattern")
	}
	return re, nil
}

func evalUnary(op parser.UnaryOperator, v parser.Datum, resultType types.Type) (parser.Datum, error) {
	if v == parser.DNull {
		return parser.DNull, nil
	}
	switch op {
	case parser.OpNeg:
		if d, ok := v.(parser.DInt); ok {
			if d == math.MinInt64 {
				return nil, errOutOfRange("bigint")
			}
			if err := checkIntRange(int64(-d), resultType); err != nil {
				return nil, err
			}
		}
		return negateDatum(v)
	case parser.OpPos:
		return v, nil
	case parser.OpNot:
		b, isNull := asTriBool(v)
		if isNull {
			return parser.DNull, nil
		}
		return parser.DBool(!b), nil
	case parser.OpBitNot:
		i, _ := coerceToInt(v, types.T(types.BigInt))
		return parser.DInt(^int64(i.(parser.DInt))), nil
	case parser.OpAbs:
		return absDatum(v)
	case parser.OpFactorial:
		i, _ := coerceToInt(v, types.T(types.BigInt))
		return factorial(int64(i.(parser.DInt)))
	case parser.OpSqrt:
		f, _ := coerceToFloat(v)
		return parser.DFloat(math.Sqrt(float64(f.(parser.DFloat)))), nil
	case parser.OpCubeRoot:
		f, _ := coerceToFloat(v)
		return parser.DFloat(math.Cbrt(float64(f.(parser.DFloat)))), nil
	}
	return parser.DNull, nil
}

func negateDatum(v parser.Datum) (parser.Datum, error) {
	switch d := v.(type) {
	case parser.DInt:
		return parser.DInt(-d), nil
	case parser.DFloat:
		return parser.DFloat(-d), nil
	case *parser.DDecimal:
		z := new(inf.Dec).Neg(&d.Dec)
		return &parser.DDecimal{Dec: *z}, nil
	}
	return nil, errInvalidText(fmt.Sprint(v), "numeric")
}

func absDatum(v parser.Datum) (parser.Datum, error) {
	switch d := v.(type) {
	case parser.DInt:
		if d < 0 {
			return parser.DInt(-d), nil
		}
		return d, nil
	case parser.DFloat:
		return parser.DFloat(math.Abs(float64(d))), nil
	}
	return nil, errInvalidText(fmt.Sprint(v), "numeric")
}

func factorial(n int64) (parser.Datum, error) {
	if n < 0 {
		return nil, errInvalidText(strconv.FormatInt(n, 10), "factorial operand")
	}
	var result int64 = 1
	for i := int64(2); i <= n; i++ {
		next := result * i
		if next/i != result {
			return nil, errOutOfRange("bigint")
		}
		result = next
	}
	return parser.DInt(result), nil
}
