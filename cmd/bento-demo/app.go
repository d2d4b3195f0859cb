package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"hackpulse/bento"
	"hackpulse/connect"
	"hackpulse/listing"
)

const (
	viewHackathons = "hackathons"
	viewMembers    = "members"
)

var hackathonFilters = []string{listing.FilterAll, "Online", "Offline", "Hybrid", "AI", "Web", "IoT"}

type confirmRequest struct {
	prompt string
	answer chan bool
}

// app owns the screen and the scene. Everything that touches the scene
// runs on the goroutine that calls run; connect operations run in the
// background and report back over channels.
type app struct {
	ctx    context.Context
	screen tcell.Screen
	sched  *bento.Scheduler
	opts   bento.Options
	log    *slog.Logger
	scene  *scene
	view   string

	members   *connect.View
	term      string
	searching bool
	filter    int

	status  string
	prompt  *confirmRequest
	prompts chan *confirmRequest
	notes   chan string
	refresh chan struct{}
	buttons tcell.ButtonMask
	now     func() time.Time
}

func newApp(ctx context.Context, screen tcell.Screen, sched *bento.Scheduler, opts bento.Options, log *slog.Logger) *app {
	return &app{
		ctx:     ctx,
		screen:  screen,
		sched:   sched,
		opts:    opts,
		log:     log,
		prompts: make(chan *confirmRequest),
		notes:   make(chan string, 8),
		refresh: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// confirm blocks a background operation until the user answers y or n.
func (a *app) confirm(ctx context.Context, prompt string) bool {
	req := &confirmRequest{prompt: prompt, answer: make(chan bool, 1)}
	select {
	case a.prompts <- req:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-req.answer:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (a *app) changed(string) {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

func (a *app) note(msg string) {
	select {
	case a.notes <- msg:
	default:
	}
}

func (a *app) show(view string) {
	if a.scene != nil {
		a.scene.close()
	}
	w, h := a.screen.Size()
	a.scene = newScene(w, h-1, a.sched, a.opts)
	a.view = view
	switch view {
	case viewMembers:
		a.scene.addSection("Members", listing.ColorMembers, "magic-bento-card")
		a.renderMembers()
		a.reload()
	default:
		a.scene.addSection("Hackathons", listing.ColorHackathons, "hackathon-card")
		a.scene.addSection("Winners", listing.ColorWinners, "winner-card")
		a.scene.addSection("Looking for a team", listing.ColorTeam, "team-card")
		a.renderListings()
	}
}

func (a *app) renderListings() {
	hs := listing.Filter(listing.Hackathons(), hackathonFilters[a.filter])
	ids := make([]string, len(hs))
	lines := make([]func() []string, len(hs))
	for i, h := range hs {
		ids[i] = fmt.Sprint(h.ID)
		lines[i] = func() []string {
			return []string{h.Title, h.Organizer, h.Date + " · " + h.Mode, strings.Join(h.Tags, " "), listing.Countdown(h.Deadline, a.now())}
		}
	}
	a.scene.setTiles(a.scene.sections[0], ids, lines)

	ws := listing.Winners()
	ids, lines = make([]string, len(ws)), make([]func() []string, len(ws))
	for i, w := range ws {
		ids[i] = fmt.Sprint(w.ID)
		lines[i] = func() []string {
			return []string{w.TeamName, w.Project, strings.Join(w.Members, ", ")}
		}
	}
	a.scene.setTiles(a.scene.sections[1], ids, lines)

	ts := listing.TeamRequests()
	ids, lines = make([]string, len(ts)), make([]func() []string, len(ts))
	for i, t := range ts {
		ids[i] = fmt.Sprint(t.ID)
		lines[i] = func() []string {
			return []string{t.User, t.Role + " @ " + t.Event, "needs " + strings.Join(t.LookingFor, ", "), strings.Join(t.Skills, " ")}
		}
	}
	a.scene.setTiles(a.scene.sections[2], ids, lines)
}

func (a *app) renderMembers() {
	ms := a.members.Members(a.term)
	ids := make([]string, len(ms))
	lines := make([]func() []string, len(ms))
	machine := a.members.Machine()
	for i, m := range ms {
		ids[i] = m.ID
		lines[i] = func() []string {
			ctl := machine.Control(m.ID)
			label := "[ " + ctl.Label + " ]"
			if ctl.Disabled {
				label = "  " + ctl.Label
			}
			return []string{m.Name, m.Role, strings.Join(m.Skills, " "), m.LookingFor, label}
		}
	}
	a.scene.setTiles(a.scene.sections[0], ids, lines)
	title := "Members"
	if a.term != "" || a.searching {
		title += "  /" + a.term
	}
	a.scene.sections[0].title = title
}

func (a *app) reload() {
	go func() {
		if err := a.members.Load(a.ctx); err != nil {
			a.log.Error("load members", "err", err)
			a.note("Could not load members")
		}
		a.changed("")
	}()
}

func (a *app) press(target string) {
	go func() {
		err := a.members.Press(a.ctx, target)
		if msg := connect.Alert(err); msg != "" {
			a.note(msg)
		}
		if err != nil {
			a.log.Info("press", "target", target, "err", err)
		}
		a.changed(target)
	}()
}

// handle applies one terminal event. It returns false to quit.
func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		w, h := a.screen.Size()
		a.scene.resize(w, h-1)
	case *tcell.EventMouse:
		x, y := ev.Position()
		a.scene.page.MovePointer(cellCenter(x, y))
		pressed := ev.Buttons()&tcell.Button1 != 0 && a.buttons&tcell.Button1 == 0
		a.buttons = ev.Buttons()
		if pressed && a.prompt == nil {
			a.scene.page.Click(cellCenter(x, y))
			if t := a.scene.tileAt(x, y); t != nil && a.view == viewMembers {
				a.press(t.id)
			}
		}
	case *tcell.EventKey:
		return a.key(ev)
	}
	return true
}

func (a *app) key(ev *tcell.EventKey) bool {
	if a.prompt != nil {
		switch {
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y'):
			a.prompt.answer <- true
			a.prompt = nil
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyRune:
			a.prompt.answer <- false
			a.prompt = nil
		}
		return true
	}
	if a.searching {
		switch ev.Key() {
		case tcell.KeyEnter, tcell.KeyEscape:
			a.searching = false
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if r := []rune(a.term); len(r) > 0 {
				a.term = string(r[:len(r)-1])
			}
		case tcell.KeyRune:
			a.term += string(ev.Rune())
		}
		a.renderMembers()
		return true
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		if a.view == viewMembers {
			a.show(viewHackathons)
		} else {
			a.show(viewMembers)
		}
		return true
	case tcell.KeyRune:
	default:
		return true
	}
	switch ev.Rune() {
	case 'q':
		return false
	case 'l':
		a.scene.page.LeaveWindow()
	case 'f':
		if a.view == viewHackathons {
			a.filter = (a.filter + 1) % len(hackathonFilters)
			a.renderListings()
			a.status = "filter: " + hackathonFilters[a.filter]
		}
	case '/':
		if a.view == viewMembers {
			a.searching = true
			a.renderMembers()
		}
	case 'r':
		if a.view == viewMembers {
			a.reload()
		}
	}
	return true
}

func (a *app) statusLine() string {
	switch {
	case a.prompt != nil:
		return a.prompt.prompt + " (y/n)"
	case a.searching:
		return "search: " + a.term + "▏  enter to finish"
	case a.status != "":
		return a.status
	}
	if a.view == viewMembers {
		return "click a card to connect · / search · r reload · tab listings · q quit"
	}
	return "move the mouse over the cards · f filter · l leave · tab members · q quit"
}

func (a *app) draw() {
	w, h := a.screen.Size()
	c := newCanvas(w, h)
	a.scene.render(c)
	c.text(1, h-1, w-2, a.statusLine(), colorMuted)
	c.flush(a.screen)
	a.screen.Show()
}

func (a *app) run(frame time.Duration) {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	for {
		// one question at a time
		var prompts chan *confirmRequest
		if a.prompt == nil {
			prompts = a.prompts
		}
		select {
		case <-a.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || !a.handle(ev) {
				return
			}
		case req := <-prompts:
			a.prompt = req
		case msg := <-a.notes:
			a.status = msg
		case <-a.refresh:
			if a.view == viewMembers {
				a.renderMembers()
			}
		case <-ticker.C:
			a.sched.Tick()
			a.draw()
		}
	}
}
