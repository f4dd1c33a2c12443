package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fraudline/roomlink/internal/adapters/audio"
	"github.com/fraudline/roomlink/internal/adapters/ws"
	"github.com/fraudline/roomlink/internal/config"
	"github.com/fraudline/roomlink/internal/core"
	"github.com/fraudline/roomlink/internal/domain"
	"github.com/fraudline/roomlink/internal/token"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	endpoint, tok, err := resolveCredentials(ctx, &cfg.Client)
	if err != nil {
		log.Fatal().Err(err).Msg("could not obtain room credentials")
	}

	capture := audio.NewCapture(func() (audio.FrameSource, error) {
		return audio.SilenceSource{}, nil
	})
	ctrl := core.NewController(
		ws.NewTransport(),
		&audio.StaticGate{Allowed: cfg.Client.MicAllowed},
		capture,
		core.Options{
			LocalLabel: cfg.Client.Identity,
			AgentLabel: cfg.Client.AgentLabel,
		},
	)
	defer ctrl.Close()

	if cfg.Client.Bootstrap != "" {
		payload, err := loadBootstrap(cfg.Client.Bootstrap)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Client.Bootstrap).Msg("bad bootstrap file")
		}
		ctrl.QueueBootstrap(*payload)
	}

	go printUpdates(ctrl.Updates())

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	err = ctrl.Connect(connectCtx, endpoint, tok)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect failed")
	}
	log.Info().Str("endpoint", endpoint).Msg("joined room")
	fmt.Println("type a message and press enter; /mic on, /mic off, /quit")

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			switch strings.TrimSpace(line) {
			case "/quit":
				break loop
			case "/mic on":
				if err := ctrl.EnableMicrophone(ctx); err != nil {
					log.Error().Err(err).Msg("mic enable")
				}
			case "/mic off":
				ctrl.DisableMicrophone(ctx)
			default:
				ctrl.SendChat(line, cfg.Client.DisplayName)
			}
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	ctrl.Disconnect(shutdownCtx)
	log.Info().Msg("left room")
}

// resolveCredentials prefers a statically configured token, falling
// back to the token service.
func resolveCredentials(ctx context.Context, cfg *config.Client) (string, string, error) {
	if cfg.Token != "" {
		return cfg.Endpoint, cfg.Token, nil
	}
	creds, err := token.NewClient(cfg.TokenURL).Fetch(ctx, cfg.Room, cfg.Identity, cfg.DisplayName)
	if err != nil {
		return "", "", err
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = creds.URL
	}
	return endpoint, creds.Token, nil
}

func loadBootstrap(path string) (*domain.BootstrapPayload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload domain.BootstrapPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func printUpdates(updates <-chan core.Snapshot) {
	var seen int
	for snap := range updates {
		for _, m := range snap.Messages[seen:] {
			fmt.Printf("[%s] %s: %s\n", m.Role, m.From, m.Text)
		}
		seen = len(snap.Messages)
		if snap.Err != nil {
			log.Warn().Err(snap.Err).Str("state", snap.State.String()).Msg("session")
		}
	}
}
