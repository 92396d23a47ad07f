package money

import (
	"fmt"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"R$ 500,00", 500},
		{"500", 500},
		{"1.000", 1000},
		{"0,50", 0.5},
		{"quinhentos reais", 0},
		{"", 0},
		{"R$ ", 0},
		{"12,3", 12.3},
		{"R$1.234.567,89", 1234567.89},
	}
	for _, c := range cases {
		if got := Parse(c.in); got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{500, "R$ 500,00"},
		{1234.56, "R$ 1.234,56"},
		{1234567.89, "R$ 1.234.567,89"},
		{0.5, "R$ 0,50"},
		{149.5, "R$ 149,50"},
		{999.999, "R$ 1.000,00"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	// Every whole-cent value up to R$ 20,00 must survive a round trip.
	for cents := 0; cents < 2000; cents++ {
		v := float64(cents) / 100
		if got := Parse(Format(v)); got != v {
			t.Fatalf("round trip %v: got %v", v, got)
		}
	}
}

func TestSum(t *testing.T) {
	got := Sum("R$ 100,00", "R$ 250,50", "R$ 49,50")
	if got != "R$ 400,00" {
		t.Errorf("Sum = %q, want R$ 400,00", got)
	}
	if got := Sum(); got != "R$ 0,00" {
		t.Errorf("empty Sum = %q", got)
	}
}

func ExampleFormat() {
	fmt.Println(Format(1234.56))
	// Output: R$ 1.234,56
}
