package util

import "strings"

const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
	// KakaoMessageLimit는 한 메시지로 보내는 본문의 최대 글자 수.
	KakaoMessageLimit = 4000
)

// 카카오톡 '전체보기'용 제로폭 문자를 채워 메시지를 확장.
func ApplyKakaoSeeMorePadding(text, instruction string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	message := strings.TrimSpace(instruction)

	var builder strings.Builder
	builder.Grow(len(text) + KakaoSeeMorePadding*len(KakaoZeroWidthSpace) + len(message) + 2)

	if message != "" {
		builder.WriteString(message)
	}
	builder.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	if !strings.HasPrefix(text, "\n") {
		builder.WriteByte('\n')
	}
	builder.WriteString(text)

	return builder.String()
}

// 첫 줄에 중복된 헤더가 있으면 제거한다.
func StripLeadingHeader(text, header string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(header) == "" {
		return text
	}

	for _, candidate := range []string{header + "\r\n", header + "\n", header} {
		if strings.HasPrefix(text, candidate) {
			return strings.TrimLeft(strings.TrimPrefix(text, candidate), "\r\n")
		}
	}
	return text
}

// 본문 첫 줄의 헤더를 '전체보기' 앞 안내문으로 옮긴다.
func ApplySeeMoreWithHeader(text, header string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	return ApplyKakaoSeeMorePadding(StripLeadingHeader(text, header), header)
}

// ClampRunes는 limit 글자를 넘는 본문을 잘라 말줄임표를 붙인다.
func ClampRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
