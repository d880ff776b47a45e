package reviewpresenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-review-bot/internal/domain"
	"github.com/park285/cheese-review-bot/internal/msgcat"
	"github.com/park285/cheese-review-bot/internal/util"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

const (
	reviewHelpInstruction    = "♞ 기보 복기 명령어 안내"
	reviewHistoryInstruction = "♜ 최근 기보"
	reviewMovesInstruction   = "♜ 수순"
	reviewExportInstruction  = "♜ PGN 내보내기"

	activeMarker = "▶ "
	idleMarker   = "   "
)

// PrefixProvider exposes the Prefix that Kakao messages should use.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders review DTOs into Kakao-friendly text blocks. Fixed
// phrases come from the message catalog.
type Formatter struct {
	prefixProvider PrefixProvider
	catalog        *msgcat.Catalog
}

func NewFormatter(provider PrefixProvider, catalog *msgcat.Catalog) *Formatter {
	return &Formatter{prefixProvider: provider, catalog: catalog}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

func (f *Formatter) text(key string, data map[string]any, fallback string) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Prefix"] = f.Prefix()
	if f == nil || f.catalog == nil {
		return fallback
	}
	return f.catalog.RenderOr(key, data, fallback)
}

func (f *Formatter) Help() string {
	content := f.text("review.help", nil, reviewHelpInstruction)
	return util.ApplySeeMoreWithHeader(content, reviewHelpInstruction)
}

// Frame is the caption sent with a board image.
func (f *Formatter) Frame(state *reviewdto.ReviewState) string {
	if state == nil {
		return f.text("review.no_active", nil, "열린 복기가 없습니다.")
	}
	var sb strings.Builder
	sb.WriteString("♟️ ")
	sb.WriteString(state.Title)
	sb.WriteByte('\n')
	if state.AtStart {
		sb.WriteString("시작 위치")
	} else {
		sb.WriteString(state.ActiveLabel)
	}
	sb.WriteString(fmt.Sprintf(" • %d/%d", state.Ply(), state.Total))
	sb.WriteString(" • ")
	sb.WriteString(formatOrientation(state.Orientation))
	if state.OpeningCode != "" {
		sb.WriteString(fmt.Sprintf("\n📖 %s %s", state.OpeningCode, state.OpeningTitle))
	}
	return sb.String()
}

// MoveList prints every ply with the active entry marked.
func (f *Formatter) MoveList(state *reviewdto.ReviewState) string {
	if state == nil {
		return f.text("review.no_active", nil, "열린 복기가 없습니다.")
	}
	var sb strings.Builder
	sb.WriteString(reviewMovesInstruction)
	sb.WriteByte('\n')
	if state.AtStart {
		sb.WriteString(activeMarker)
	} else {
		sb.WriteString(idleMarker)
	}
	sb.WriteString("시작 위치\n")
	for _, mv := range state.Moves {
		if mv.Active {
			sb.WriteString(activeMarker)
		} else {
			sb.WriteString(idleMarker)
		}
		sb.WriteString(mv.Label)
		sb.WriteByte(' ')
		sb.WriteString(mv.Algebraic)
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("\n특정 수로 가려면 `%s리뷰 이동 <n>`을 사용하세요.", f.Prefix()))
	return util.ApplySeeMoreWithHeader(sb.String(), reviewMovesInstruction)
}

func (f *Formatter) History(games []reviewdto.GameSummary) string {
	if len(games) == 0 {
		return f.text("review.history_empty", nil, "저장된 기보가 없습니다.")
	}
	var sb strings.Builder
	sb.WriteString(reviewHistoryInstruction)
	sb.WriteByte('\n')
	for _, g := range games {
		sb.WriteString(fmt.Sprintf("• #%d %s", g.ID, g.Title))
		if r := strings.TrimSpace(g.Result); r != "" && r != "*" {
			sb.WriteString(fmt.Sprintf(" (%s)", r))
		}
		sb.WriteByte('\n')
		sb.WriteString(fmt.Sprintf("  %s • %s • %s\n", formatShortTime(g.CreatedAt), formatSource(g.Source), formatColor(g.UserColor)))
	}
	sb.WriteString(fmt.Sprintf("\n복기하려면 `%s리뷰 열기 <ID>` 명령을 사용하세요.", f.Prefix()))
	return util.ApplySeeMoreWithHeader(sb.String(), reviewHistoryInstruction)
}

func (f *Formatter) Imported(result *reviewdto.ImportResult) string {
	if result == nil {
		return f.text("review.internal", nil, "처리 중 오류가 발생했습니다.")
	}
	data := map[string]any{"GameID": result.GameID, "Plies": result.Plies, "Title": result.Title}
	out := f.text("review.imported", data, fmt.Sprintf("✅ 기보 #%d 저장 완료", result.GameID))
	meta := result.ChessCom
	if meta == nil {
		return out
	}
	var sb strings.Builder
	sb.WriteString(out)
	if meta.ResultMessage != "" {
		sb.WriteString("\n• 결과: ")
		sb.WriteString(meta.ResultMessage)
	}
	if meta.TimeControl != "" {
		sb.WriteString("\n• 시간: ")
		sb.WriteString(meta.TimeControl)
	}
	if meta.EndTime != nil {
		sb.WriteString("\n• 종료: ")
		sb.WriteString(formatShortTime(*meta.EndTime))
	}
	if !meta.IsFinished {
		sb.WriteString("\n• 아직 끝나지 않은 대국입니다.")
	}
	return sb.String()
}

func (f *Formatter) Export(pgn string) string {
	body := util.ClampRunes(strings.TrimSpace(pgn), util.KakaoMessageLimit)
	return util.ApplyKakaoSeeMorePadding(body, reviewExportInstruction)
}

func (f *Formatter) Closed() string {
	return f.text("review.closed", nil, "복기를 종료했습니다.")
}

func (f *Formatter) Unknown() string {
	return f.text("review.unknown", nil, "알 수 없는 명령입니다.")
}

func (f *Formatter) Suggest(subcommand string) string {
	return f.text("review.suggest", map[string]any{"Suggestion": subcommand}, f.Unknown())
}

// Usage renders the usage line for open, goto, import or pgn.
func (f *Formatter) Usage(name string) string {
	return f.text("review.usage."+name, nil, f.Help())
}

func formatOrientation(o string) string {
	if strings.EqualFold(o, "black") {
		return "흑 시점"
	}
	return "백 시점"
}

func formatColor(c string) string {
	if strings.EqualFold(c, "b") {
		return "흑"
	}
	return "백"
}

func formatSource(source string) string {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case domain.SourceChessCom:
		return "Chess.com"
	case domain.SourceSample:
		return "샘플"
	default:
		return "PGN"
	}
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return util.FormatKST(t, "2006-01-02 15:04")
}
