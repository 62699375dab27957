package student

import "testing"

func TestFormatCode(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "sid01"},
		{7, "sid07"},
		{10, "sid10"},
		{99, "sid99"},
		{100, "sid100"},
		{1234, "sid1234"},
	}
	for _, tt := range tests {
		if got := FormatCode(tt.n); got != tt.want {
			t.Errorf("FormatCode(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		code   string
		want   int
		wantOk bool
	}{
		{code: "sid01", want: 1, wantOk: true},
		{code: "SID01", want: 1, wantOk: true},
		{code: "  sid42  ", want: 42, wantOk: true},
		{code: "sid100", want: 100, wantOk: true},
		{code: "sid", wantOk: false},
		{code: "sidab", wantOk: false},
		{code: "01", wantOk: false},
		{code: "student01", wantOk: false},
		{code: "", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := ParseCode(tt.code)
			if ok != tt.wantOk {
				t.Fatalf("ParseCode(%q) ok = %v, want %v", tt.code, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("ParseCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
