package util

import (
	"strings"
	"testing"
	"time"
)

func TestApplySeeMoreWithHeader(t *testing.T) {
	out := ApplySeeMoreWithHeader("♜ 최근 기보\n• #1\n• #2", "♜ 최근 기보")
	if !strings.HasPrefix(out, "♜ 최근 기보"+KakaoZeroWidthSpace) {
		t.Fatalf("instruction should lead the padding: %q", out[:32])
	}
	if strings.Count(out, KakaoZeroWidthSpace) != KakaoSeeMorePadding {
		t.Fatalf("padding count = %d", strings.Count(out, KakaoZeroWidthSpace))
	}
	if !strings.HasSuffix(out, "\n• #1\n• #2") {
		t.Fatalf("body lost: %q", out)
	}
	if strings.Count(out, "♜ 최근 기보") != 1 {
		t.Fatalf("header should appear once")
	}
}

func TestApplyKakaoSeeMorePaddingEmpty(t *testing.T) {
	if got := ApplyKakaoSeeMorePadding("  ", "head"); got != "  " {
		t.Fatalf("blank text should pass through, got %q", got)
	}
}

func TestStripLeadingHeader(t *testing.T) {
	cases := []struct {
		text, header, want string
	}{
		{"head\n\nbody", "head", "body"},
		{"head\r\nbody", "head", "body"},
		{"other\nbody", "head", "other\nbody"},
		{"body", "", "body"},
	}
	for _, tc := range cases {
		if got := StripLeadingHeader(tc.text, tc.header); got != tc.want {
			t.Fatalf("StripLeadingHeader(%q, %q) = %q, want %q", tc.text, tc.header, got, tc.want)
		}
	}
}

func TestClampRunes(t *testing.T) {
	if got := ClampRunes("가나다라마", 3); got != "가나…" {
		t.Fatalf("ClampRunes = %q", got)
	}
	if got := ClampRunes("abc", 3); got != "abc" {
		t.Fatalf("ClampRunes = %q", got)
	}
}

func TestFormatKST(t *testing.T) {
	ts := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	if got := FormatKST(ts, "2006-01-02 15:04"); got != "2024-03-02 00:30" {
		t.Fatalf("FormatKST = %q", got)
	}
	if FormatKST(time.Time{}, time.RFC3339) != "" {
		t.Fatalf("zero time should format empty")
	}
}
