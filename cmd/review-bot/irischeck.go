package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/park285/cheese-review-bot/internal/config"
	"github.com/park285/cheese-review-bot/internal/irisfast"
)

// IrisCheck probes /config and, when a WebSocket url is given, prints the
// messages that arrive during the watch window.
func (r *Runner) IrisCheck(ctx context.Context, cmd *cli.Command) error {
	baseURL := strings.TrimSpace(cmd.String("base-url"))
	if baseURL == "" {
		return fmt.Errorf("IRIS_BASE_URL is required")
	}
	cfg := config.LoadTUI()

	client := irisfast.NewClient(baseURL,
		irisfast.WithHeaderProvider(cfg.IrisHeaders),
		irisfast.WithTimeout(8*time.Second),
		irisfast.WithLogger(r.logger),
	)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	bridge, err := client.GetConfig(pctx)
	cancel()
	if err != nil {
		r.writePlainln("/config error: %v", err)
	} else {
		r.writePlainln("/config ok: bot=%s port=%d polling=%d rate=%d endpoint=%s",
			bridge.BotName, bridge.Port, bridge.PollingSpeed, bridge.MessageRate, bridge.WebserverEndpoint)
	}

	wsURL := strings.TrimSpace(cmd.String("ws-url"))
	if wsURL == "" {
		return r.writePlainln("IRIS_WS_URL not set; skipping WS check")
	}

	ws := irisfast.NewWebSocket(wsURL, 0, 0)
	ws.SetHeaderProvider(cfg.IrisHeaders)
	ws.SetLogger(r.logger)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		r.writePlainln("WS state: %s", state)
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		from := msg.SenderName()
		if from == "" {
			from = "?"
		}
		r.writePlainln("WS msg room=%s from=%s text=%q", msg.Room, from, msg.Msg)
	})

	cctx, ccancel := context.WithTimeout(ctx, 10*time.Second)
	err = ws.Connect(cctx)
	ccancel()
	if err != nil {
		return fmt.Errorf("ws connect error: %w", err)
	}

	t := time.NewTimer(cmd.Duration("watch"))
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	t.Stop()
	return ws.Close(context.Background())
}
