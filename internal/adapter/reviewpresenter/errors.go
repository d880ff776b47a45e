package reviewpresenter

import (
	"context"
	"errors"

	"github.com/park285/cheese-review-bot/internal/chesscom"
	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/service/review"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

type errorRule struct {
	targets   []error
	code      string
	key       string
	fallback  string
	retryable bool
}

var errorRules = []errorRule{
	{targets: []error{review.ErrRoomNotAllowed}, code: "room_denied", key: "review.room_denied", fallback: "이 방에서는 기보 복기를 사용할 수 없습니다."},
	{targets: []error{review.ErrNoActiveReview, replay.ErrViewerClosed}, code: "no_active", key: "review.no_active", fallback: "열린 복기가 없습니다."},
	{targets: []error{review.ErrViewerLoading}, code: "loading", key: "review.loading", fallback: "기보를 불러오는 중입니다.", retryable: true},
	{targets: []error{review.ErrGameNotFound}, code: "not_found", key: "review.not_found", fallback: "기보를 찾을 수 없습니다."},
	{
		targets: []error{
			review.ErrMalformedGame, replay.ErrNilReplay, replay.ErrEmptyStartingPosition,
			replay.ErrColorSequence, replay.ErrMoveNumber, replay.ErrEmptyPosition,
		},
		code: "load_failed", key: "review.load_failed", fallback: "기보를 불러오지 못했습니다.",
	},
	{targets: []error{context.DeadlineExceeded}, code: "load_failed", key: "review.load_failed", fallback: "기보를 불러오지 못했습니다.", retryable: true},
	{targets: []error{review.ErrBlackToMove}, code: "black_to_move", key: "review.black_to_move", fallback: "흑 차례로 시작하는 기보는 지원하지 않습니다."},
	{targets: []error{review.ErrGameTooLong}, code: "too_long", key: "review.too_long", fallback: "기보가 너무 깁니다."},
	{targets: []error{review.ErrEmptyPGN, review.ErrInvalidPGN, review.ErrInvalidFEN}, code: "invalid_pgn", key: "review.invalid_pgn", fallback: "PGN을 해석하지 못했습니다."},
	{targets: []error{chesscom.ErrMissingReference, chesscom.ErrNotChessCom, chesscom.ErrNoGameID}, code: "chesscom_url", key: "review.chesscom_url", fallback: "Chess.com 대국 주소를 확인해주세요."},
	{targets: []error{chesscom.ErrNotFound}, code: "chesscom_not_found", key: "review.chesscom_not_found", fallback: "Chess.com에서 대국을 찾지 못했습니다."},
	{targets: []error{chesscom.ErrUpstream, chesscom.ErrInvalidPayload}, code: "chesscom_upstream", key: "review.chesscom_upstream", fallback: "Chess.com 응답이 원활하지 않습니다.", retryable: true},
	{targets: []error{review.ErrChessComDisabled}, code: "chesscom_disabled", key: "review.chesscom_disabled", fallback: "Chess.com 가져오기가 설정되어 있지 않습니다."},
	{targets: []error{review.ErrServiceUnavailable}, code: "unavailable", key: "review.unavailable", fallback: "복기 서비스를 사용할 수 없습니다.", retryable: true},
}

// DomainError maps a service error to the message shown in chat. Unknown
// errors become a generic retryable failure.
func (f *Formatter) DomainError(err error) reviewdto.DomainError {
	if err == nil {
		return reviewdto.DomainError{}
	}
	var de reviewdto.DomainError
	if errors.As(err, &de) {
		return de
	}
	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return reviewdto.DomainError{
					Code:      rule.code,
					Message:   f.text(rule.key, nil, rule.fallback),
					Retryable: rule.retryable,
				}
			}
		}
	}
	return reviewdto.DomainError{
		Code:      "internal",
		Message:   f.text("review.internal", nil, "처리 중 오류가 발생했습니다."),
		Retryable: true,
	}
}

// Error is the chat text for err.
func (f *Formatter) Error(err error) string {
	return f.DomainError(err).Error()
}
