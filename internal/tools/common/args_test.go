package common

import (
	"testing"
)

func TestGetIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    int
		wantErr bool
	}{
		{name: "missing uses default", args: map[string]interface{}{}, want: 7},
		{name: "json number", args: map[string]interface{}{"n": float64(3)}, want: 3},
		{name: "negative", args: map[string]interface{}{"n": float64(-2)}, want: -2},
		{name: "numeric string", args: map[string]interface{}{"n": " 12 "}, want: 12},
		{name: "empty string uses default", args: map[string]interface{}{"n": ""}, want: 7},
		{name: "fraction", args: map[string]interface{}{"n": 1.5}, wantErr: true},
		{name: "not a number", args: map[string]interface{}{"n": "abc"}, wantErr: true},
		{name: "wrong type", args: map[string]interface{}{"n": true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetIntArg(tt.args, "n", 7)
			if tt.wantErr {
				if err == nil {
					t.Errorf("GetIntArg() = %d, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetIntArg() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GetIntArg() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetStringArg(t *testing.T) {
	args := map[string]interface{}{"guid": " abc ", "blank": "  ", "num": 1.0}

	if got := GetStringArg(args, "guid", "x"); got != "abc" {
		t.Errorf("GetStringArg(guid) = %q, want %q", got, "abc")
	}
	if got := GetStringArg(args, "blank", "x"); got != "x" {
		t.Errorf("GetStringArg(blank) = %q, want %q", got, "x")
	}
	if got := GetStringArg(args, "num", "x"); got != "x" {
		t.Errorf("GetStringArg(num) = %q, want %q", got, "x")
	}
	if _, err := RequireStringArg(args, "missing"); err == nil {
		t.Error("RequireStringArg(missing) expected error")
	}
}

func TestGetBoolArg(t *testing.T) {
	args := map[string]interface{}{"a": true, "b": "false", "c": "nope"}

	if !GetBoolArg(args, "a", false) {
		t.Error("GetBoolArg(a) = false, want true")
	}
	if GetBoolArg(args, "b", true) {
		t.Error("GetBoolArg(b) = true, want false")
	}
	if !GetBoolArg(args, "c", true) {
		t.Error("GetBoolArg(c) should fall back to default")
	}
	if GetBoolArg(args, "missing", false) {
		t.Error("GetBoolArg(missing) should fall back to default")
	}
}

func TestGetStringSliceArg(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want []string
	}{
		{name: "missing", args: map[string]interface{}{}, want: nil},
		{name: "array", args: map[string]interface{}{"tags": []interface{}{"work", " home ", ""}}, want: []string{"work", "home"}},
		{name: "comma separated", args: map[string]interface{}{"tags": "work, home,,"}, want: []string{"work", "home"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetStringSliceArg(tt.args, "tags")
			if len(got) != len(tt.want) {
				t.Fatalf("GetStringSliceArg() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("GetStringSliceArg()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
