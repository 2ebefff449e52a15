package fixed_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/demurrage/fixed"
)

func TestFromIntAndString(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-1, "-1"},
		{50, "50"},
		{math.MaxInt64, "9223372036854775807"},
		{math.MinInt64, "-9223372036854775808"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := fixed.FromInt(tt.in).String(); got != tt.want {
				t.Errorf("FromInt(%d).String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5", "0.5"},
		{"-0.25", "-0.25"},
		{"100", "100"},
		{"1e-3", "0.0009999999999999999666065730874464634325704537332057952880859375"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			x, err := fixed.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got := x.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "abc", "9223372036854775808", "-9223372036854775809"} {
		if _, err := fixed.Parse(bad); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}

func TestLimits(t *testing.T) {
	if got := fixed.Max.String(); got != "9223372036854775807.9999999999999999999457898913757247782996273599565029144287109375" {
		t.Errorf("Max = %s", got)
	}
	if fixed.Min.Floor() != math.MinInt64 {
		t.Errorf("Min.Floor() = %d", fixed.Min.Floor())
	}
	if !fixed.Min.LessThan(fixed.Max) {
		t.Error("Min should be less than Max")
	}
}

func TestCheckedAdd(t *testing.T) {
	sum, ok := fixed.FromInt(40).CheckedAdd(fixed.FromInt(10))
	if !ok || !sum.Equal(fixed.FromInt(50)) {
		t.Fatalf("40 + 10 = %s, %v", sum, ok)
	}

	if _, ok := fixed.Max.CheckedAdd(fixed.FromBits(0, 1)); ok {
		t.Error("Max + ulp should overflow")
	}
	if _, ok := fixed.Min.CheckedSub(fixed.FromBits(0, 1)); ok {
		t.Error("Min - ulp should overflow")
	}
	if got, ok := fixed.Max.CheckedAdd(fixed.Min); !ok || !got.Equal(fixed.FromBits(-1, math.MaxUint64)) {
		t.Errorf("Max + Min = %s, %v", got, ok)
	}
}

func TestCheckedSub(t *testing.T) {
	diff, ok := fixed.FromInt(30).CheckedSub(fixed.FromInt(40))
	if !ok || !diff.Equal(fixed.FromInt(-10)) {
		t.Fatalf("30 - 40 = %s, %v", diff, ok)
	}
	if !diff.IsNegative() {
		t.Error("expected negative difference")
	}
}

func TestCheckedNegAbs(t *testing.T) {
	if _, ok := fixed.Min.CheckedNeg(); ok {
		t.Error("-Min should overflow")
	}
	if _, ok := fixed.Min.CheckedAbs(); ok {
		t.Error("|Min| should overflow")
	}
	abs, ok := fixed.FromInt(-7).CheckedAbs()
	if !ok || !abs.Equal(fixed.FromInt(7)) {
		t.Errorf("|-7| = %s, %v", abs, ok)
	}
	neg, ok := fixed.Max.CheckedNeg()
	if !ok || !neg.IsNegative() {
		t.Errorf("-Max = %s, %v", neg, ok)
	}
}

func TestCheckedMul(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"integers", "6", "7", "42"},
		{"fraction", "100", "0.5", "50"},
		{"negative", "-3", "0.5", "-1.5"},
		{"both negative", "-2", "-2.25", "4.5"},
		{"zero", "0", "123.456", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fixed.MustParse(tt.a).CheckedMul(fixed.MustParse(tt.b))
			if !ok {
				t.Fatal("unexpected overflow")
			}
			if got.String() != tt.want {
				t.Errorf("%s * %s = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if _, ok := fixed.FromInt(1 << 32).CheckedMul(fixed.FromInt(1 << 31)); ok {
		t.Error("2^32 * 2^31 should overflow")
	}
	if got, ok := fixed.FromInt(1 << 32).CheckedMul(fixed.FromInt(-(1 << 31))); !ok || !got.Equal(fixed.Min) {
		t.Errorf("2^32 * -2^31 = %s, %v; want Min", got, ok)
	}
}

func TestCheckedMulRounding(t *testing.T) {
	ulp := fixed.FromBits(0, 1)
	half := fixed.MustParse("0.5")

	// ulp/2 rounds down to zero, -ulp/2 rounds down to -ulp.
	if got, _ := ulp.CheckedMul(half); !got.IsZero() {
		t.Errorf("ulp * 0.5 = %s, want 0", got)
	}
	negUlp, _ := ulp.CheckedNeg()
	if got, _ := negUlp.CheckedMul(half); !got.Equal(negUlp) {
		t.Errorf("-ulp * 0.5 = %s, want -ulp", got)
	}
}

func TestCheckedDiv(t *testing.T) {
	got, ok := fixed.FromInt(1).CheckedDiv(fixed.FromInt(4))
	if !ok || got.String() != "0.25" {
		t.Errorf("1 / 4 = %s, %v", got, ok)
	}

	got, ok = fixed.FromInt(-1).CheckedDiv(fixed.FromInt(4))
	if !ok || got.String() != "-0.25" {
		t.Errorf("-1 / 4 = %s, %v", got, ok)
	}

	if _, ok := fixed.One.CheckedDiv(fixed.Zero); ok {
		t.Error("division by zero should fail")
	}
	if _, ok := fixed.Max.CheckedDiv(fixed.MustParse("0.5")); ok {
		t.Error("Max / 0.5 should overflow")
	}

	third, ok := fixed.FromRatio(1, 3)
	if !ok {
		t.Fatal("1/3 failed")
	}
	back, _ := third.CheckedMul(fixed.FromInt(3))
	if back.Equal(fixed.One) || fixed.One.Float64()-back.Float64() > 1e-18 {
		t.Errorf("3 * (1/3) = %s", back)
	}
}

func TestCmp(t *testing.T) {
	a := fixed.FromInt(-5)
	b := fixed.FromInt(3)

	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Error("Cmp mismatch")
	}
	if !a.Min(b).Equal(a) || !a.Max(b).Equal(b) {
		t.Error("Min/Max mismatch")
	}
	if !b.IsPositive() || a.IsPositive() || fixed.Zero.IsPositive() {
		t.Error("IsPositive mismatch")
	}
}

func TestFloor(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"2.75", 2},
		{"-2.75", -3},
		{"-3", -3},
		{"0.1", 0},
	}
	for _, tt := range tests {
		if got := fixed.MustParse(tt.in).Floor(); got != tt.want {
			t.Errorf("Floor(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	values := []fixed.I64F64{
		fixed.Zero,
		fixed.One,
		fixed.FromInt(-1),
		fixed.Max,
		fixed.Min,
		fixed.MustParse("50.000000000000159872115546022541821"),
	}

	for _, v := range values {
		h := v.Hex()
		if len(h) != 32 {
			t.Fatalf("Hex(%s) = %q: want 32 digits", v, h)
		}
		back, err := fixed.ParseHex(h)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", h, err)
		}
		if !back.Equal(v) {
			t.Errorf("hex round trip: %s -> %q -> %s", v, h, back)
		}
	}

	if fixed.One.Hex() != "00000000000000010000000000000000" {
		t.Errorf("One.Hex() = %q", fixed.One.Hex())
	}
	if _, err := fixed.ParseHex("xyz"); err == nil {
		t.Error("expected error for short input")
	}
}

func TestDecimalIsExact(t *testing.T) {
	x := fixed.FromBits(0, 1)
	want := decimal.RequireFromString("5.42101086242752217003726400434970855712890625e-20")
	if !x.Decimal().Equal(want) {
		t.Errorf("ulp = %s, want %s", x, want)
	}

	back, ok := fixed.FromDecimal(x.Decimal())
	if !ok || !back.Equal(x) {
		t.Errorf("decimal round trip = %s, %v", back, ok)
	}
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount fixed.I64F64 `json:"amount"`
	}

	data, err := json.Marshal(payload{Amount: fixed.MustParse("12.5")})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"amount":"12.5"}` {
		t.Errorf("marshal = %s", data)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"amount":7.25}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Amount.String() != "7.25" {
		t.Errorf("unmarshal bare number = %s", p.Amount)
	}
	if err := json.Unmarshal([]byte(`{"amount":"-3"}`), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Amount.Equal(fixed.FromInt(-3)) {
		t.Errorf("unmarshal quoted = %s", p.Amount)
	}
}
