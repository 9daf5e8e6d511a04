package abiarg

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, s string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(s, "", nil)
	require.NoError(t, err)
	return typ
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestParseInteger(t *testing.T) {
	cases := map[string]*big.Int{
		"0":          big.NewInt(0),
		"500":        big.NewInt(500),
		"86400":      big.NewInt(86400),
		"0x1f4":      big.NewInt(500),
		"100e18":     ether(100),
		"100000e18":  ether(100000),
		"10 ether":   ether(10),
		"1.5 ether":  new(big.Int).Div(ether(3), big.NewInt(2)),
		"2 gwei":     big.NewInt(2_000_000_000),
		"-12":        big.NewInt(-12),
		" 12 ":       big.NewInt(12),
		"1.25e2":     big.NewInt(125),
		"7 wei":      big.NewInt(7),
		"1 ETHER":    ether(1),
		"0x00000001": big.NewInt(1),
	}
	for in, want := range cases {
		got, err := ParseInteger(in)
		require.NoError(t, err, in)
		assert.Equal(t, 0, want.Cmp(got), "%s: got %s", in, got)
	}

	for _, bad := range []string{"", "abc", "1.5", "0xzz", "1 dollars", "1e-1"} {
		_, err := ParseInteger(bad)
		assert.Error(t, err, bad)
	}
}

func TestValueScalars(t *testing.T) {
	addr := "0xA46E5F6c4bA286e2bC234f2dd504f7d3D7418981"

	v, err := Value(mustType(t, "address"), addr)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(addr), v)

	_, err = Value(mustType(t, "address"), "0x1234")
	assert.Error(t, err)

	v, err = Value(mustType(t, "bool"), "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Value(mustType(t, "string"), "https://ipfs.io/ipfs/")
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.io/ipfs/", v)

	v, err = Value(mustType(t, "bytes"), "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)

	v, err = Value(mustType(t, "bytes32"), "0x01")
	require.NoError(t, err)
	want := [32]byte{0x01}
	assert.Equal(t, want, v)

	_, err = Value(mustType(t, "bytes4"), "0x0102030405")
	assert.Error(t, err)
}

func TestValueIntegerSizes(t *testing.T) {
	v, err := Value(mustType(t, "uint256"), "100e18")
	require.NoError(t, err)
	assert.Equal(t, 0, ether(100).Cmp(v.(*big.Int)))

	v, err = Value(mustType(t, "uint8"), "255")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), v)

	v, err = Value(mustType(t, "uint64"), "86400")
	require.NoError(t, err)
	assert.Equal(t, uint64(86400), v)

	v, err = Value(mustType(t, "int32"), "-5")
	require.NoError(t, err)
	assert.Equal(t, int32(-5), v)

	v, err = Value(mustType(t, "uint96"), "12")
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(12).Cmp(v.(*big.Int)))

	_, err = Value(mustType(t, "uint8"), "256")
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = Value(mustType(t, "uint256"), "-1")
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = Value(mustType(t, "int8"), "128")
	require.ErrorIs(t, err, ErrOutOfRange)

	v, err = Value(mustType(t, "int8"), "-128")
	require.NoError(t, err)
	assert.Equal(t, int8(-128), v)
}

func TestValueLists(t *testing.T) {
	v, err := Value(mustType(t, "uint256[]"), "[1, 2e3, 0x10]")
	require.NoError(t, err)
	got := v.([]*big.Int)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2000), got[1].Int64())
	assert.Equal(t, int64(16), got[2].Int64())

	v, err = Value(mustType(t, "address[2]"), "[0x0000000000000000000000000000000000000001,0x0000000000000000000000000000000000000002]")
	require.NoError(t, err)
	pair := v.([2]common.Address)
	assert.Equal(t, common.HexToAddress("0x2"), pair[1])

	v, err = Value(mustType(t, "bool[]"), "[]")
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = Value(mustType(t, "address[2]"), "[0x0000000000000000000000000000000000000001]")
	assert.Error(t, err)

	_, err = Value(mustType(t, "uint8[]"), "1,2")
	assert.Error(t, err)

	_, err = Value(mustType(t, "uint8[][]"), "[[1]]")
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestValueStrings(t *testing.T) {
	v, err := Value(mustType(t, "string"), "  padded ")
	require.NoError(t, err)
	assert.Equal(t, "  padded ", v)

	v, err = Value(mustType(t, "string[]"), `["x,y", " z ", plain, "say \"hi\""]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x,y", " z ", "plain", `say "hi"`}, v)

	v, err = Value(mustType(t, "string[2]"), ` [a, "b,c"] `)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"a", "b,c"}, v)

	_, err = Value(mustType(t, "string[]"), `["open, close]`)
	assert.Error(t, err)

	back, err := Value(mustType(t, "string[]"), Format([]string{"x,y", "z"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"x,y", "z"}, back)
}

func TestConvert(t *testing.T) {
	args := abi.Arguments{
		{Name: "nft", Type: mustType(t, "address")},
		{Name: "token", Type: mustType(t, "address")},
		{Name: "fee", Type: mustType(t, "uint256")},
	}
	vars := Vars{
		"MoonNFT": "0x0000000000000000000000000000000000000aaa",
		"MOON":    "0x0000000000000000000000000000000000000bbb",
	}

	out, err := Convert(args, []string{"${MoonNFT}", "${MOON}", "100"}, vars)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, common.HexToAddress("0xaaa"), out[0])
	assert.Equal(t, common.HexToAddress("0xbbb"), out[1])
	assert.Equal(t, int64(100), out[2].(*big.Int).Int64())

	_, err = Convert(args, []string{"${MoonNFT}", "${Missing}", "100"}, vars)
	require.ErrorIs(t, err, ErrUnknownVar)
	assert.Contains(t, err.Error(), "Missing")

	_, err = Convert(args, []string{"${MoonNFT}"}, vars)
	require.ErrorIs(t, err, ErrArgCount)
}

func TestVarsExpand(t *testing.T) {
	vars := Vars{}
	vars.Set("owner", "0xabc")

	s, err := vars.Expand("${owner}")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", s)

	s, err = vars.Expand("plain $owner text")
	require.NoError(t, err)
	assert.Equal(t, "plain $owner text", s)

	_, err = vars.Expand("${a} ${b}")
	require.ErrorIs(t, err, ErrUnknownVar)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0xA46E5F6c4bA286e2bC234f2dd504f7d3D7418981",
		Format(common.HexToAddress("0xa46e5f6c4ba286e2bc234f2dd504f7d3d7418981")))
	assert.Equal(t, "100", Format(big.NewInt(100)))
	assert.Equal(t, "0x0102", Format([]byte{1, 2}))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "x", Format("x"))
	assert.Equal(t, "7", Format(uint8(7)))
	assert.Equal(t, "0x"+"00"+"ff", Format([2]byte{0, 0xff}))
	assert.Equal(t, "[1,2]", Format([]*big.Int{big.NewInt(1), big.NewInt(2)}))

	role := [32]byte{0x9f}
	back, err := Value(mustType(t, "bytes32"), Format(role))
	require.NoError(t, err)
	assert.Equal(t, role, back)
}
