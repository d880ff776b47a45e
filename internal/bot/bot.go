// Package bot routes KakaoTalk chat commands to the review service.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/park285/cheese-review-bot/internal/adapter/reviewpresenter"
	"github.com/park285/cheese-review-bot/internal/irisfast"
	"github.com/park285/cheese-review-bot/internal/msgcat"
	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/service/review"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

var commandWords = map[string]struct{}{"리뷰": {}, "review": {}}

// Sender delivers replies to a room. irisfast.Egress satisfies it.
type Sender interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

type Config struct {
	Prefix       string
	AllowedRooms []string
	// RatePerSec is the per-room command rate; zero disables throttling.
	RatePerSec   float64
	Burst        int
	ReplyTimeout time.Duration
}

type Bot struct {
	cfg       Config
	svc       *review.Service
	sender    Sender
	presenter *reviewpresenter.Presenter
	formatter *reviewpresenter.Formatter
	allowed   map[string]struct{}
	logger    *zap.Logger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	wg sync.WaitGroup
}

func New(svc *review.Service, sender Sender, catalog *msgcat.Catalog, cfg Config, logger *zap.Logger) (*Bot, error) {
	if svc == nil {
		return nil, errors.New("review service is required")
	}
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = "!"
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{})
	for _, room := range cfg.AllowedRooms {
		if r := strings.ToLower(strings.TrimSpace(room)); r != "" {
			allowed[r] = struct{}{}
		}
	}
	b := &Bot{
		cfg:      cfg,
		svc:      svc,
		sender:   sender,
		allowed:  allowed,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
	b.presenter = reviewpresenter.NewPresenter(b.sendText, b.sendImage)
	b.formatter = reviewpresenter.NewFormatter(b, catalog)
	return b, nil
}

func (b *Bot) Prefix() string { return strings.TrimSpace(b.cfg.Prefix) }

// OnMessage handles msg on its own goroutine so the WebSocket read loop is
// never blocked.
func (b *Bot) OnMessage(msg *irisfast.Message) {
	if msg == nil || strings.TrimSpace(msg.Msg) == "" {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.Handle(context.Background(), msg)
	}()
}

// Wait blocks until every in-flight command has replied.
func (b *Bot) Wait() { b.wg.Wait() }

// Handle parses and executes one chat message. Messages that are not review
// commands are ignored.
func (b *Bot) Handle(ctx context.Context, msg *irisfast.Message) {
	if msg == nil {
		return
	}
	text := strings.TrimSpace(msg.Msg)
	prefix := b.Prefix()
	if !strings.HasPrefix(text, prefix) {
		return
	}
	word, rest := cutWord(strings.TrimPrefix(text, prefix))
	if _, ok := commandWords[strings.ToLower(word)]; !ok {
		return
	}
	if !b.roomAllowed(msg.Room) {
		b.logger.Debug("review_room_ignored", zap.String("room", msg.Room))
		return
	}
	if !b.allow(msg.Room) {
		b.logger.Debug("review_throttled", zap.String("room", msg.Room), zap.String("sender", msg.SenderName()))
		return
	}

	meta := reviewdto.RequestMeta{Room: msg.Room, Sender: msg.SenderName(), SenderID: msg.SenderID()}
	sub, args := cutWord(rest)
	if sub == "" {
		b.reply(meta.Room, b.formatter.Help())
		return
	}
	cmd, ok := lookupCommand(sub)
	if !ok {
		if name, found := suggest(sub); found {
			b.reply(meta.Room, b.formatter.Suggest(name))
		} else {
			b.reply(meta.Room, b.formatter.Unknown())
		}
		return
	}

	start := time.Now()
	err := b.dispatch(ctx, meta, cmd, args)
	fields := []zap.Field{
		zap.String("room", meta.Room),
		zap.String("sender", meta.Sender),
		zap.String("command", sub),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		de := b.formatter.DomainError(err)
		if de.Code == "internal" {
			b.logger.Warn("review_command_failed", append(fields, zap.Error(err))...)
		} else {
			b.logger.Info("review_command_rejected", append(fields, zap.String("code", de.Code))...)
		}
		b.reply(meta.Room, de.Message)
		return
	}
	b.logger.Debug("review_command", fields...)
}

func (b *Bot) dispatch(ctx context.Context, meta reviewdto.RequestMeta, cmd command, args string) error {
	switch cmd {
	case cmdHelp:
		b.reply(meta.Room, b.formatter.Help())
		return nil
	case cmdOpen:
		id, ok := parseGameID(args)
		if !ok {
			b.reply(meta.Room, b.formatter.Usage("open"))
			return nil
		}
		state, err := b.svc.Open(ctx, meta, id)
		if err != nil {
			return err
		}
		b.board(meta.Room, state)
		return nil
	case cmdNext, cmdPrev, cmdFirst, cmdLast:
		state, _, err := b.svc.Navigate(ctx, meta, actionFor(cmd))
		if err != nil {
			return err
		}
		b.board(meta.Room, state)
		return nil
	case cmdGoto:
		word, _ := cutWord(args)
		ply, err := strconv.Atoi(word)
		if err != nil {
			b.reply(meta.Room, b.formatter.Usage("goto"))
			return nil
		}
		state, _, err := b.svc.Select(ctx, meta, ply)
		if err != nil {
			return err
		}
		b.board(meta.Room, state)
		return nil
	case cmdMoves:
		state, err := b.svc.Current(ctx, meta)
		if err != nil {
			return err
		}
		b.reply(meta.Room, b.formatter.MoveList(state))
		return nil
	case cmdClose:
		if err := b.svc.CloseReview(meta); err != nil {
			return err
		}
		b.reply(meta.Room, b.formatter.Closed())
		return nil
	case cmdList:
		games, err := b.svc.History(ctx, meta, 0)
		if err != nil {
			return err
		}
		b.reply(meta.Room, b.formatter.History(games))
		return nil
	case cmdSample:
		res, err := b.svc.ImportSample(ctx, meta)
		if err != nil {
			return err
		}
		b.reply(meta.Room, b.formatter.Imported(res))
		return nil
	case cmdImport:
		ref, rest := cutWord(args)
		if ref == "" {
			b.reply(meta.Room, b.formatter.Usage("import"))
			return nil
		}
		color, _ := parseColor(rest)
		res, err := b.svc.ImportChessCom(ctx, meta, ref, color)
		if err != nil {
			return err
		}
		b.reply(meta.Room, b.formatter.Imported(res))
		return nil
	case cmdPGN:
		body := args
		word, rest := cutWord(args)
		color, isColor := parseColor(word)
		if isColor {
			body = rest
		}
		if strings.TrimSpace(body) == "" {
			b.reply(meta.Room, b.formatter.Usage("pgn"))
			return nil
		}
		res, err := b.svc.ImportPGN(ctx, meta, body, color)
		if err != nil {
			return err
		}
		b.reply(meta.Room, b.formatter.Imported(res))
		return nil
	case cmdExport:
		pgn, err := b.svc.ExportPGN(ctx, meta, 0)
		if err != nil {
			return err
		}
		b.reply(meta.Room, b.formatter.Export(pgn))
		return nil
	default:
		b.reply(meta.Room, b.formatter.Unknown())
		return nil
	}
}

func actionFor(cmd command) replay.Action {
	switch cmd {
	case cmdNext:
		return replay.ActionStepForward
	case cmdPrev:
		return replay.ActionStepBackward
	case cmdFirst:
		return replay.ActionGoToStart
	case cmdLast:
		return replay.ActionGoToEnd
	default:
		return replay.ActionNone
	}
}

func parseGameID(args string) (int64, bool) {
	word, _ := cutWord(args)
	id, err := strconv.ParseInt(strings.TrimPrefix(word, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (b *Bot) board(room string, state *reviewdto.ReviewState) {
	if err := b.presenter.Board(room, b.formatter.Frame(state), state); err != nil {
		b.logger.Warn("review_reply_failed", zap.String("room", room), zap.Error(err))
	}
}

func (b *Bot) reply(room, message string) {
	if err := b.presenter.Text(room, message); err != nil {
		b.logger.Warn("review_reply_failed", zap.String("room", room), zap.Error(err))
	}
}

func (b *Bot) sendText(room, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.ReplyTimeout)
	defer cancel()
	return b.sender.SendText(ctx, room, message)
}

func (b *Bot) sendImage(room, imageBase64 string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.ReplyTimeout)
	defer cancel()
	return b.sender.SendImage(ctx, room, imageBase64)
}

func (b *Bot) roomAllowed(room string) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[strings.ToLower(strings.TrimSpace(room))]
	return ok
}

func (b *Bot) allow(room string) bool {
	if b.cfg.RatePerSec <= 0 {
		return true
	}
	key := strings.ToLower(strings.TrimSpace(room))
	b.limiterMu.Lock()
	lim, ok := b.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(b.cfg.RatePerSec), b.cfg.Burst)
		b.limiters[key] = lim
	}
	b.limiterMu.Unlock()
	return lim.Allow()
}
