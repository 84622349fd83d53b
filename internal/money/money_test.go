package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Amount
		ok   bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-3.10", -310, true},
		{"1.005", 100, true}, // half-even: 100.5 -> 100
		{"1.015", 102, true}, // half-even: 101.5 -> 102
		{"1.0051", 101, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.ok {
				if err != nil || got != tc.want {
					t.Fatalf("Parse(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tc.in)
			}
		})
	}
}

func TestString(t *testing.T) {
	cases := map[Amount]string{
		0:       "0.00",
		5:       "0.05",
		100:     "1.00",
		123456:  "1234.56",
		-1250:   "-12.50",
		-7:      "-0.07",
		50000:   "500.00",
		1000001: "10000.01",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("Amount(%d).String() = %q, want %q", int64(in), got, want)
		}
	}
}

func TestSplitAssignsRemainderToFirst(t *testing.T) {
	tests := []struct {
		name  string
		total Amount
		n     int
		want  []Amount
	}{
		{"even", 60000, 2, []Amount{30000, 30000}},
		{"one cent over", 10000, 3, []Amount{3334, 3333, 3333}},
		{"two cents over", 10001, 3, []Amount{3335, 3333, 3333}},
		{"less than n", 2, 3, []Amount{2, 0, 0}},
		{"negative", -10000, 3, []Amount{-3334, -3333, -3333}},
		{"single", 999, 1, []Amount{999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.total.Split(tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("share[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
			if Sum(got...) != tt.total {
				t.Errorf("shares sum to %d, want %d", Sum(got...), tt.total)
			}
		})
	}

	if got := Amount(100).Split(0); got != nil {
		t.Errorf("Split(0) = %v, want nil", got)
	}
}

func TestAllocate(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name    string
		total   Amount
		weights []decimal.Decimal
		want    []Amount
	}{
		{
			name:    "even meal units",
			total:   100000,
			weights: []decimal.Decimal{d("2"), d("2")},
			want:    []Amount{50000, 50000},
		},
		{
			name:    "thirds",
			total:   10000,
			weights: []decimal.Decimal{d("1"), d("1"), d("1")},
			want:    []Amount{3334, 3333, 3333},
		},
		{
			name:    "half meals",
			total:   1000,
			weights: []decimal.Decimal{d("0.5"), d("1.5")},
			want:    []Amount{250, 750},
		},
		{
			name:    "remainder skips zero weight",
			total:   1000,
			weights: []decimal.Decimal{d("0"), d("1"), d("2")},
			want:    []Amount{0, 334, 666},
		},
		{
			name:    "all zero weights",
			total:   1000,
			weights: []decimal.Decimal{d("0"), d("0")},
			want:    []Amount{0, 0},
		},
		{
			name:    "negative weight ignored",
			total:   900,
			weights: []decimal.Decimal{d("-1"), d("3")},
			want:    []Amount{0, 900},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.total.Allocate(tt.weights)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("share[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIsZeroUsesEpsilon(t *testing.T) {
	if !Amount(1).IsZero(Epsilon) || !Amount(-1).IsZero(Epsilon) {
		t.Error("one minor unit should be within epsilon")
	}
	if Amount(2).IsZero(Epsilon) {
		t.Error("two minor units should not be within epsilon")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Amount `json:"amount"`
	}{Amount: 50000})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"amount":"500.00"}` {
		t.Errorf("Marshal = %s", b)
	}

	for _, in := range []string{`"12.34"`, `12.34`} {
		var a Amount
		if err := json.Unmarshal([]byte(in), &a); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", in, err)
		}
		if a != 1234 {
			t.Errorf("Unmarshal(%s) = %d, want 1234", in, a)
		}
	}
}

func TestScan(t *testing.T) {
	var a Amount
	for _, src := range []any{int64(250), "250", []byte("250"), float64(250)} {
		if err := a.Scan(src); err != nil {
			t.Fatalf("Scan(%v) failed: %v", src, err)
		}
		if a != 250 {
			t.Errorf("Scan(%v) = %d, want 250", src, a)
		}
	}
	if err := a.Scan(true); err == nil {
		t.Error("Scan(bool) expected error")
	}
}
