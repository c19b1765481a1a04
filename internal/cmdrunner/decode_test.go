package cmdrunner

import (
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// LooksGarbled is a heuristic; these cases pin its current behavior,
// they do not claim it is correct for every locale.
func TestLooksGarbled(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"ascii", "Hosted network status  : Started", false},
		{"chinese", "承载网络状态  : 已启动", false},
		{"replacement char", "status ��", true},
		{"latin mojibake", "Ã©tat du rÃ©seau", true},
		{"chinese with mojibake", "已启动 �", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksGarbled(tt.in); got != tt.want {
				t.Errorf("LooksGarbled(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeUTF8InvalidBytes(t *testing.T) {
	got := DecodeUTF8([]byte{'o', 'k', 0xff, 0xfe})
	if !LooksGarbled(got) {
		t.Errorf("Expected invalid bytes to decode to replacement characters, got %q", got)
	}
}

func TestDecodeGBK(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("已启动"))
	if err != nil {
		t.Fatalf("Failed to encode GBK: %v", err)
	}

	if s := DecodeUTF8(raw); !LooksGarbled(s) {
		t.Errorf("Expected GBK bytes to look garbled as UTF-8, got %q", s)
	}
	if got := Decode(raw, 936); got != "已启动" {
		t.Errorf("Decode(936) = %q, want 已启动", got)
	}
	if got := DecodeAuto(raw, 936); got != "已启动" {
		t.Errorf("DecodeAuto = %q, want 已启动", got)
	}
	if got := DecodeAuto([]byte("Started"), 936); got != "Started" {
		t.Errorf("DecodeAuto on ASCII = %q", got)
	}
}

func TestEncodingForCodePage(t *testing.T) {
	for _, cp := range []int{65001, 936, 950, 932, 949, 437, 866, 1252} {
		if _, ok := EncodingForCodePage(cp); !ok {
			t.Errorf("Expected mapping for code page %d", cp)
		}
	}
	if _, ok := EncodingForCodePage(12345); ok {
		t.Error("Expected no mapping for code page 12345")
	}
	// Unknown pages decode as UTF-8
	if got := Decode([]byte("abc"), 12345); got != "abc" {
		t.Errorf("Decode with unknown page = %q", got)
	}
}

func TestResolveCodePage(t *testing.T) {
	if got := ResolveCodePage(950); got != 950 {
		t.Errorf("Expected configured code page 950, got %d", got)
	}
	if got := ResolveCodePage(0); got <= 0 {
		t.Errorf("Expected a positive fallback code page, got %d", got)
	}
}

func TestStripNUL(t *testing.T) {
	if got := StripNUL("1\x00\r\n"); got != "1\r\n" {
		t.Errorf("StripNUL = %q", got)
	}
}
