package abiarg

import (
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrArgCount        = errors.New("argument count mismatch")
	ErrUnknownVar      = errors.New("unknown variable")
	ErrUnsupportedType = errors.New("unsupported abi type")
	ErrOutOfRange      = errors.New("integer out of range")
)

var (
	varPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.:-]+)\}`)
	bigIntType = reflect.TypeOf(&big.Int{})

	// 金额单位
	units = map[string]int32{
		"wei":   0,
		"gwei":  9,
		"ether": 18,
	}
)

// Vars 参数中 ${name} 的取值: 已部署合约的地址、签名者地址、call 的结果
type Vars map[string]string

// Set 设置变量
func (v Vars) Set(name, value string) {
	v[name] = value
}

// Expand 替换 s 中所有的 ${name}
func (v Vars) Expand(s string) (string, error) {
	var missing []string
	out := varPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := varPattern.FindStringSubmatch(m)[1]
		val, ok := v[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return val
	})
	if len(missing) > 0 {
		return "", errors.Wrapf(ErrUnknownVar, "%s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Convert 按 ABI 参数列表把字符串参数转换为 go-ethereum 需要的类型
func Convert(args abi.Arguments, raw []string, vars Vars) ([]interface{}, error) {
	if len(args) != len(raw) {
		return nil, errors.Wrapf(ErrArgCount, "want %d, got %d", len(args), len(raw))
	}

	out := make([]interface{}, 0, len(raw))
	for i, arg := range args {
		s, err := vars.Expand(raw[i])
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d (%s)", i, arg.Name)
		}
		v, err := Value(arg.Type, s)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d (%s %s)", i, arg.Type.String(), arg.Name)
		}
		out = append(out, v)
	}
	return out, nil
}

// Value 把单个字符串转换为 ABI 类型 t 对应的 Go 值
// string 类型原样保留，其余类型忽略首尾空白
func Value(t abi.Type, s string) (interface{}, error) {
	if t.T != abi.StringTy {
		s = strings.TrimSpace(s)
	}
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, errors.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.Errorf("invalid bool %q", s)
		}
		return b, nil

	case abi.StringTy:
		return s, nil

	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid bytes %q", s)
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid bytes%d %q", t.Size, s)
		}
		if len(b) > t.Size {
			return nil, errors.Errorf("%q is longer than bytes%d", s, t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.UintTy, abi.IntTy:
		n, err := ParseInteger(s)
		if err != nil {
			return nil, err
		}
		return fitInteger(t, n)

	case abi.SliceTy, abi.ArrayTy:
		return list(t, s)

	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%s", t.String())
	}
}

// ParseInteger 解析整数: 十进制、0x 十六进制、科学计数 (100e18)、带单位 (1.5 ether)
func ParseInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, errors.Errorf("invalid hex integer %q", s)
		}
		return n, nil
	}

	num, exp := s, int32(0)
	if fields := strings.Fields(s); len(fields) == 2 {
		e, ok := units[strings.ToLower(fields[1])]
		if !ok {
			return nil, errors.Errorf("unknown unit %q", fields[1])
		}
		num, exp = fields[0], e
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return nil, errors.Errorf("invalid integer %q", s)
	}
	d = d.Shift(exp)
	if !d.IsInteger() {
		return nil, errors.Errorf("%q is not an integer", s)
	}
	return d.BigInt(), nil
}

func fitInteger(t abi.Type, n *big.Int) (interface{}, error) {
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, errors.Wrapf(ErrOutOfRange, "%s for uint%d", n, t.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		minimum := new(big.Int).Neg(limit)
		if n.Cmp(minimum) < 0 || n.Cmp(limit) >= 0 {
			return nil, errors.Wrapf(ErrOutOfRange, "%s for int%d", n, t.Size)
		}
	}

	goType := t.GetType()
	if goType == bigIntType {
		return n, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
}

// list 解析 [a, b, c] 形式的数组参数
// 元素可以用双引号包裹 (["a,b", " c"])，引号内的逗号和空白按字面量处理
func list(t abi.Type, s string) (interface{}, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errors.Errorf("invalid %s %q, want [a,b,...]", t.String(), s)
	}
	if t.Elem.T == abi.SliceTy || t.Elem.T == abi.ArrayTy || t.Elem.T == abi.TupleTy {
		return nil, errors.Wrapf(ErrUnsupportedType, "nested %s", t.String())
	}

	items, err := splitItems(s[1 : len(s)-1])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s %q", t.String(), s)
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return nil, errors.Errorf("%s needs %d items, got %d", t.String(), t.Size, len(items))
		}
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		v, err := Value(*t.Elem, item)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		out.Index(i).Set(reflect.ValueOf(v))
	}
	return out.Interface(), nil
}

// splitItems 按引号外的逗号切分，去掉首尾空白并解开双引号
func splitItems(inner string) ([]string, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	var (
		items   []string
		start   int
		quoted  bool
		escaped bool
	)
	for i, r := range inner {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			items = append(items, inner[start:i])
			start = i + 1
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	items = append(items, inner[start:])

	for i, item := range items {
		item = strings.TrimSpace(item)
		if strings.HasPrefix(item, `"`) {
			unquoted, err := strconv.Unquote(item)
			if err != nil {
				return nil, errors.Errorf("invalid quoted item %s", item)
			}
			item = unquoted
		}
		items[i] = item
	}
	return items, nil
}

// Format 把调用结果格式化为可以再次作为参数使用的字符串
func Format(v interface{}) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = Format(rv.Index(i).Interface())
			if rv.Type().Elem().Kind() == reflect.String {
				items[i] = strconv.Quote(items[i])
			}
		}
		return "[" + strings.Join(items, ",") + "]"
	}
	return fmt.Sprint(v)
}
