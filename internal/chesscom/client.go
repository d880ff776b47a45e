// Package chesscom imports finished games from Chess.com's live-game callback.
package chesscom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrMissingReference = errors.New("chesscom: game url is required")
	ErrNotChessCom      = errors.New("chesscom: url is not a chess.com link")
	ErrNoGameID         = errors.New("chesscom: unable to determine game id")
	ErrNotFound         = errors.New("chesscom: game not found")
	ErrUpstream         = errors.New("chesscom: upstream request failed")
	ErrInvalidPayload   = errors.New("chesscom: invalid payload")
)

const (
	DefaultBaseURL   = "https://www.chess.com"
	defaultUserAgent = "CheeseReview/1.0"
)

// Game is the metadata of one imported live game.
type Game struct {
	ID            string
	SourceURL     string
	WhiteUsername string
	BlackUsername string
	ResultMessage string
	IsFinished    bool
	GameEndReason string
	EndTime       *time.Time
	TimeControl   string
	UUID          string
	Headers       map[string]string
	// PGN is set when the payload embeds the full game text.
	PGN string
	// MovesUCI is decoded from the TCN move list; empty when absent.
	MovesUCI []string
}

type Client struct {
	baseURL   string
	http      *fasthttp.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	userAgent string
	logger    *zap.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(strings.TrimSpace(u), "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit paces outgoing requests to perSecond with a burst of one.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		http:      &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		timeout:   10 * time.Second,
		limiter:   rate.NewLimiter(rate.Limit(1), 1),
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var trailingDigits = regexp.MustCompile(`(\d+)/?$`)

// ExtractGameID finds the numeric game id in a Chess.com URL or a bare id.
// The path is searched first, then the fragment.
func ExtractGameID(ref string) (string, error) {
	candidate := strings.TrimSpace(ref)
	if candidate == "" {
		return "", ErrMissingReference
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		parsed = &url.URL{}
	}
	if parsed.Host != "" && !strings.Contains(strings.ToLower(parsed.Host), "chess.com") {
		return "", ErrNotChessCom
	}
	targets := []string{parsed.Path, parsed.Fragment}
	if parsed.Host == "" {
		targets = append(targets, candidate)
	}
	for _, target := range targets {
		if m := trailingDigits.FindStringSubmatch(target); m != nil {
			return m[1], nil
		}
	}
	return "", ErrNoGameID
}

// FetchGame resolves ref and downloads the callback payload.
func (c *Client) FetchGame(ctx context.Context, ref string) (*Game, error) {
	id, err := ExtractGameID(ref)
	if err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := c.baseURL + "/callback/live/game/" + id
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(endpoint)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent(c.userAgent)

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		c.logger.Warn("chesscom_request_failed", zap.String("game_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	status := resp.StatusCode()
	if status == fasthttp.StatusNotFound {
		return nil, ErrNotFound
	}
	if status < 200 || status >= 300 {
		c.logger.Warn("chesscom_unexpected_status", zap.String("game_id", id), zap.Int("status", status))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, status)
	}

	var payload callbackPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	game, err := payload.toGame(id, strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	c.logger.Info("chesscom_game_fetched",
		zap.String("game_id", id),
		zap.Bool("finished", game.IsFinished),
		zap.Int("plies", len(game.MovesUCI)),
	)
	return game, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

type callbackPlayer struct {
	Username string `json:"username"`
}

type callbackPayload struct {
	Game *struct {
		ResultMessage string         `json:"resultMessage"`
		IsFinished    bool           `json:"isFinished"`
		GameEndReason string         `json:"gameEndReason"`
		EndTime       *float64       `json:"endTime"`
		UUID          string         `json:"uuid"`
		MoveList      string         `json:"moveList"`
		PGN           string         `json:"pgn"`
		PGNHeaders    map[string]any `json:"pgnHeaders"`
	} `json:"game"`
	Players *struct {
		Top    *callbackPlayer `json:"top"`
		Bottom *callbackPlayer `json:"bottom"`
	} `json:"players"`
}

func (p callbackPayload) toGame(id, sourceURL string) (*Game, error) {
	g := &Game{ID: id, SourceURL: sourceURL, Headers: map[string]string{}}
	if p.Game != nil {
		for k, v := range p.Game.PGNHeaders {
			g.Headers[k] = strings.TrimSpace(fmt.Sprint(v))
		}
		g.ResultMessage = p.Game.ResultMessage
		g.IsFinished = p.Game.IsFinished
		g.GameEndReason = p.Game.GameEndReason
		g.UUID = p.Game.UUID
		g.PGN = strings.TrimSpace(p.Game.PGN)
		if p.Game.EndTime != nil {
			t := time.Unix(int64(*p.Game.EndTime), 0).UTC()
			g.EndTime = &t
		}
		if ml := strings.TrimSpace(p.Game.MoveList); ml != "" {
			moves, err := DecodeTCN(ml)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			g.MovesUCI = moves
		}
	}
	// the bottom player is white in the callback payload
	if p.Players != nil {
		if p.Players.Bottom != nil {
			g.WhiteUsername = p.Players.Bottom.Username
		}
		if p.Players.Top != nil {
			g.BlackUsername = p.Players.Top.Username
		}
	}
	if g.WhiteUsername == "" {
		g.WhiteUsername = g.Headers["White"]
	}
	if g.BlackUsername == "" {
		g.BlackUsername = g.Headers["Black"]
	}
	if g.ResultMessage == "" {
		g.ResultMessage = g.Headers["Result"]
	}
	g.TimeControl = g.Headers["TimeControl"]
	return g, nil
}
