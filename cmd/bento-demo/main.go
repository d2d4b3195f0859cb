// Command bento-demo previews the card grid effects in a terminal: the
// pointer spotlight, card glow, particles, tilt, magnetism and click
// ripples, over the hackathon listings or the member directory.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"

	"hackpulse/bento"
	"hackpulse/clock"
	"hackpulse/connect"
)

func main() {
	opts := bento.DefaultOptions()
	pflag.Float64Var(&opts.Radius, "radius", opts.Radius, "spotlight radius in layout units (one column is 10)")
	pflag.IntVar(&opts.ParticleCount, "particles", opts.ParticleCount, "particles per hovered card")
	pflag.BoolVar(&opts.DisableAnimations, "no-animations", false, "turn every effect off")
	pflag.BoolVar(&opts.EnableSpotlight, "spotlight", opts.EnableSpotlight, "ambient spotlight")
	pflag.BoolVar(&opts.EnableStars, "stars", opts.EnableStars, "particles and per-card effects")
	pflag.BoolVar(&opts.EnableTilt, "tilt", opts.EnableTilt, "tilt hovered cards")
	pflag.BoolVar(&opts.EnableMagnetism, "magnetism", opts.EnableMagnetism, "pull hovered cards towards the pointer")
	pflag.BoolVar(&opts.ClickEffect, "click", opts.ClickEffect, "ripple on click")
	server := pflag.String("server", "", "HackPulse server URL; empty uses built-in sample members")
	email := pflag.String("email", "", "login email for --server")
	password := pflag.String("password", "", "login password for --server")
	view := pflag.String("view", viewHackathons, "initial view: hackathons or members")
	fps := pflag.Int("fps", 60, "frames per second")
	logPath := pflag.String("log", "", "write JSON logs to this file")
	pflag.Parse()

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	backend, err := openBackend(ctx, *server, *email, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	sched := bento.NewScheduler(clock.Real())
	a := newApp(ctx, screen, sched, opts, log)
	a.members = connect.NewView(backend,
		connect.WithConfirmer(connect.ConfirmFunc(a.confirm)),
		connect.WithLogger(log),
		connect.WithOnChange(a.changed),
	)
	a.show(*view)
	a.run(time.Second / time.Duration(max(*fps, 1)))
	cancel()
}

func openBackend(ctx context.Context, server, email, password string) (connect.Backend, error) {
	if server == "" {
		return sampleBackend(), nil
	}
	b, err := connect.NewHTTPBackend(server, 10*time.Second)
	if err != nil {
		return nil, err
	}
	if email != "" {
		if err := b.Login(ctx, email, password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	return b, nil
}

// sampleBackend is an in-memory directory signed in as "me".
func sampleBackend() *connect.MemoryBackend {
	b := connect.NewMemoryBackend()
	b.SignIn("me")
	people := []struct {
		id, name, role, looking string
		skills                  []string
	}{
		{"me", "You", "Full Stack", "", []string{"Go"}},
		{"sarah", "Sarah Chen", "Frontend Dev", "Backend, UI/UX", []string{"React", "Tailwind"}},
		{"mike", "Mike Ross", "Full Stack", "AI/ML Engineer", []string{"Node.js", "Python"}},
		{"ana", "Ana Lima", "ML Engineer", "Designer", []string{"PyTorch", "CUDA"}},
		{"kofi", "Kofi Mensah", "Designer", "", []string{"Figma", "Motion"}},
		{"li", "", "", "", nil},
	}
	for _, p := range people {
		fields := map[string]any{"name": p.name, "role": p.role, "looking_for": p.looking}
		if p.skills != nil {
			fields["skills"] = p.skills
		}
		b.Put(connect.CollectionUsers, p.id, fields)
	}
	now := time.Now().UTC()
	b.Put(connect.CollectionRequests, "seed-1", map[string]any{"from": "me", "to": "mike", "status": "pending", "timestamp": now})
	b.Put(connect.CollectionRequests, "seed-2", map[string]any{"from": "ana", "to": "me", "status": "accepted", "timestamp": now})
	return b
}
