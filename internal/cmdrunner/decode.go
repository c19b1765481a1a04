package cmdrunner

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Code pages.
const (
	CodePageUTF8 = 65001

	// DefaultLegacyCodePage is used when neither the config nor the OS names one.
	DefaultLegacyCodePage = 936
)

// EncodingForCodePage maps a Windows code page to a decoder. ok is false for
// code pages without a mapping.
func EncodingForCodePage(cp int) (enc encoding.Encoding, ok bool) {
	switch cp {
	case CodePageUTF8:
		return unicode.UTF8, true
	case 936:
		return simplifiedchinese.GBK, true
	case 54936:
		return simplifiedchinese.GB18030, true
	case 950:
		return traditionalchinese.Big5, true
	case 932:
		return japanese.ShiftJIS, true
	case 949:
		return korean.EUCKR, true
	case 437:
		return charmap.CodePage437, true
	case 850:
		return charmap.CodePage850, true
	case 866:
		return charmap.CodePage866, true
	case 1250:
		return charmap.Windows1250, true
	case 1251:
		return charmap.Windows1251, true
	case 1252:
		return charmap.Windows1252, true
	}
	return nil, false
}

// ResolveCodePage picks the legacy code page: the configured one, then the
// OS one, then DefaultLegacyCodePage.
func ResolveCodePage(configured int) int {
	if configured > 0 {
		return configured
	}
	if cp := SystemCodePage(); cp > 0 {
		return cp
	}
	return DefaultLegacyCodePage
}

// DecodeUTF8 decodes b as UTF-8. Invalid sequences become U+FFFD.
func DecodeUTF8(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

// Decode decodes b in code page cp, falling back to UTF-8 for unmapped pages.
func Decode(b []byte, cp int) string {
	enc, ok := EncodingForCodePage(cp)
	if !ok || cp == CodePageUTF8 {
		return DecodeUTF8(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return DecodeUTF8(b)
	}
	return string(out)
}

// DecodeAuto decodes b as UTF-8 unless that looks garbled, in which case the
// same bytes are decoded in the legacy code page.
func DecodeAuto(b []byte, legacyCodePage int) string {
	s := DecodeUTF8(b)
	if !LooksGarbled(s) {
		return s
	}
	return Decode(b, legacyCodePage)
}

// LooksGarbled reports whether s is probably mis-decoded console output:
// it contains U+FFFD, or it contains non-ASCII text but no CJK ideograph.
// This is a heuristic tuned for Chinese Windows and may misfire on other locales.
func LooksGarbled(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsRune(s, '\uFFFD') {
		return true
	}

	hasNonASCII := false
	hasCJK := false
	for _, r := range s {
		if r > 127 {
			hasNonASCII = true
		}
		if r >= 0x4E00 && r <= 0x9FFF {
			hasCJK = true
		}
	}
	return hasNonASCII && !hasCJK
}

// StripNUL removes NUL characters some tools emit between UTF-16 code units.
func StripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
