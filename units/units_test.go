package units

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcrowdsale-go/fault"
)

func maxU256() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

func TestCheckedArithmetic(t *testing.T) {
	z, err := Add(U(2), U(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), z.Uint64())

	_, err = Add(maxU256(), U(1))
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorIs(t, err, fault.ErrCapacity)

	z, err = Sub(U(5), U(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), z.Uint64())

	_, err = Sub(U(3), U(5))
	assert.ErrorIs(t, err, ErrUnderflow)

	_, err = Mul(maxU256(), U(2))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name    string
		x, y, d *uint256.Int
		want    *uint256.Int
		err     error
	}{
		{"exact", U(10), U(3), U(5), U(6), nil},
		{"floor", U(10), U(1), U(3), U(3), nil},
		{"zero operand", U(0), U(3), U(5), U(0), nil},
		{"wide intermediate", maxU256(), U(2), U(4), new(uint256.Int).Rsh(maxU256(), 1), nil},
		{"overflow", maxU256(), U(2), U(1), nil, ErrOverflow},
		{"zero divisor", U(1), U(1), U(0), nil, ErrDivisionByZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulDiv(tt.x, tt.y, tt.d)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Dec(), got.Dec())
		})
	}
}

func TestMulMod(t *testing.T) {
	got, err := MulMod(U(56), U(10), U(99))
	require.NoError(t, err)
	assert.Equal(t, uint64(65), got.Uint64())

	_, err = MulMod(U(1), U(1), U(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPercent(t *testing.T) {
	got, err := Percent(U(1000), 15)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), got.Uint64())

	got, err = Percent(U(7), 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Uint64())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		dec  uint
		want string
		err  bool
	}{
		{"1", 18, "1000000000000000000", false},
		{"1.5", 18, "1500000000000000000", false},
		{".25", 2, "25", false},
		{"  42 ", 0, "42", false},
		{"0.000000000000000001", 18, "1", false},
		{"1.0000000000000000001", 18, "", true},
		{"", 18, "", true},
		{"-1", 18, "", true},
		{"1e18", 18, "", true},
		{"1.2.3", 18, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in, tt.dec)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   *uint256.Int
		dec  uint
		want string
	}{
		{One, Decimals, "1"},
		{uint256.MustFromDecimal("1500000000000000000"), Decimals, "1.5"},
		{U(1), Decimals, "0.000000000000000001"},
		{U(0), Decimals, "0"},
		{nil, Decimals, "0"},
		{U(1234), 0, "1234"},
		{U(1234), 2, "12.34"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in, tt.dec))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "12.5", "0.001", "123456789.123456789"} {
		v, err := ParseAmount(s, Decimals)
		require.NoError(t, err)
		assert.Equal(t, s, FormatAmount(v, Decimals))
	}
}
