package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppdesk/internal/bus"
	"github.com/matheus3301/wppdesk/internal/outbox"
	"github.com/matheus3301/wppdesk/internal/ticketview"
	"github.com/matheus3301/wppdesk/internal/tui/keys"
	"github.com/matheus3301/wppdesk/internal/tui/model"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/matheus3301/wppdesk/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	promptHeight  = 3
	headerRows    = 6
	flashInterval = time.Second
)

// TicketView is the ticket view controller as the shell drives it.
type TicketView interface {
	SetTicketID(id int64)
	Reset()
	OpenDrawer()
	CloseDrawer()
	SetTaxID(taxID string)
	SubmitInvoice()
	Send(body string)
	LoadOlderMessages()
	Snapshot() ticketview.State
	Layout() ticketview.Layout
}

// Retrier requeues failed outgoing messages.
type Retrier interface {
	RetryFailed() (int, error)
}

// Options configure the shell.
type Options struct {
	Agent  ui.AgentData
	UserID int64
	Logger *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	root     *tview.Flex
	pages    *ui.Pages
	prompt   *ui.Prompt
	menu     *ui.Menu
	agent    *ui.AgentInfo
	crumbs   *ui.Crumbs
	flash    *ui.FlashModel
	flashBar *ui.FlashBar
	registry *keys.Registry

	list   *views.TicketList
	ticket *views.TicketPage
	help   *views.HelpView

	view      TicketView
	tickets   *model.Tickets
	retrier   Retrier
	bus       *bus.Bus
	logger    *zap.Logger
	agentData ui.AgentData

	promptShown bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewApp creates the TUI application with the ticket list on top.
func NewApp(view TicketView, tickets *model.Tickets, retrier Retrier, b *bus.Bus, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		prompt:    ui.NewPrompt(theme),
		menu:      ui.NewMenu(theme),
		agent:     ui.NewAgentInfo(theme),
		crumbs:    ui.NewCrumbs(theme),
		flash:     ui.NewFlashModel(),
		flashBar:  ui.NewFlashBar(theme),
		registry:  keys.NewRegistry(),
		list:      views.NewTicketList(theme),
		ticket:    views.NewTicketPage(theme),
		help:      views.NewHelpView(theme),
		view:      view,
		tickets:   tickets,
		retrier:   retrier,
		bus:       b,
		logger:    logger,
		agentData: opts.Agent,
		ctx:       ctx,
		cancel:    cancel,
	}
	a.list.SetMine(opts.UserID)

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	a.agent.Update(&a.agentData)
	a.pages.Reset(views.PageTickets)

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':',
		Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?',
		Description: "Help", Visible: true,
		Handler: func() { a.pages.Push(views.PageHelp) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q',
		Description: "Quit", Visible: true,
		Handler: a.Stop,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyEscape, Label: "Esc",
		Description: "Back",
		Handler:     a.back,
	})

	a.registry.AddView(views.PageTickets, &keys.Action{
		Key: tcell.KeyRune, Rune: '/',
		Handler: func() { a.showPrompt(ui.PromptFilter) },
	})
	a.registry.AddView(views.PageTickets, &keys.Action{
		Key: tcell.KeyRune, Rune: '0',
		Handler: func() { a.list.SetFilter("") },
	})
	a.registry.AddView(views.PageTickets, &keys.Action{
		Key: tcell.KeyRune, Rune: 'r',
		Handler: a.reloadTickets,
	})
	a.registry.AddView(views.PageTickets, &keys.Action{
		Key: tcell.KeyRune, Rune: 'm',
		Handler: a.loadMoreTickets,
	})

	a.registry.AddView(views.PageTicket, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i',
		Handler: a.focusComposer,
	})
	a.registry.AddView(views.PageTicket, &keys.Action{
		Key: tcell.KeyRune, Rune: 'b',
		Handler: func() { a.app.SetFocus(a.ticket.Invoice().Input()) },
	})
	a.registry.AddView(views.PageTicket, &keys.Action{
		Key: tcell.KeyRune, Rune: 'd',
		Handler: a.toggleDrawer,
	})
	a.registry.AddView(views.PageTicket, &keys.Action{
		Key: tcell.KeyRune, Rune: 'o',
		Handler: a.view.LoadOlderMessages,
	})
}

func (a *App) setupCallbacks() {
	a.list.SetOnOpen(a.openTicket)
	a.list.SetOnStart(a.reloadTickets)

	a.ticket.Thread().SetOnSend(a.view.Send)
	a.ticket.Invoice().SetHandlers(a.view.SetTaxID, a.view.SubmitInvoice)

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(text)
		case ui.PromptFilter:
			a.list.SetFilter(text)
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)

	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(stack, a.crumbLabel)
		a.updateMenu()
		a.focusPage()
	})
}

func (a *App) setupLayout() {
	a.pages.Register(a.list)
	a.pages.Register(a.ticket)
	a.pages.Register(a.help)

	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.agent, 0, 2, false).
		AddItem(a.menu, 0, 3, false).
		AddItem(ui.NewLogo(a.theme, "tenant "+strconv.FormatInt(a.agentData.Tenant, 10)), 20, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerRows, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	// Text inputs own their keys; Esc leaves the composer and invoice fields.
	focus := a.app.GetFocus()
	if focus == tview.Primitive(a.prompt) {
		return ev
	}
	if _, ok := focus.(*tview.InputField); ok {
		if ev.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.ticket.Thread().Messages())
			return nil
		}
		return ev
	}
	if a.registry.HandleEvent(a.pages.Current(), ev) {
		return nil
	}
	return ev
}

func (a *App) updateMenu() {
	var hints []ui.MenuHint
	if c := a.pages.Component(a.pages.Current()); c != nil {
		hints = append(hints, c.Hints()...)
	}
	hints = append(hints, a.registry.Hints("")...)
	a.menu.Update(hints)
}

func (a *App) focusPage() {
	switch a.pages.Current() {
	case views.PageTicket:
		a.app.SetFocus(a.ticket.Thread().Messages())
	case views.PageTickets:
		a.app.SetFocus(a.list)
	case views.PageHelp:
		a.app.SetFocus(a.help)
	}
}

func (a *App) crumbLabel(page string) string {
	if page == views.PageTicket {
		if id := a.view.Snapshot().TicketID; id != 0 {
			return fmt.Sprintf("ticket #%d", id)
		}
	}
	return page
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	if !a.promptShown {
		a.promptShown = true
		a.root.ResizeItem(a.prompt, promptHeight, 0)
	}
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	if a.promptShown {
		a.promptShown = false
		a.root.ResizeItem(a.prompt, 0, 0)
	}
	a.focusPage()
}

// back closes the drawer when it is open, otherwise pops the page.
func (a *App) back() {
	if a.pages.Current() == views.PageTicket && a.ticket.DrawerShown() {
		a.view.CloseDrawer()
		return
	}
	if a.pages.Pop() == views.PageTicket {
		a.view.Reset()
	}
}

func (a *App) openTicket(id int64) {
	a.view.SetTicketID(id)
	if a.pages.Current() == views.PageTicket {
		a.crumbs.Update(a.pages.Stack(), a.crumbLabel)
		return
	}
	a.pages.Push(views.PageTicket)
}

func (a *App) showTickets() {
	if a.pages.Current() == views.PageTicket {
		a.view.Reset()
	}
	a.pages.Reset(views.PageTickets)
}

func (a *App) toggleDrawer() {
	if a.view.Snapshot().DrawerOpen {
		a.view.CloseDrawer()
	} else {
		a.view.OpenDrawer()
	}
}

func (a *App) focusComposer() {
	if a.ticket.Thread().ComposerVisible() {
		a.app.SetFocus(a.ticket.Thread().Composer())
		return
	}
	a.setFlash(ticketview.TextTicketClosed, ui.FlashErr)
}

func (a *App) runCommand(text string) {
	cmd := ParseCommand(text)
	switch cmd.Name {
	case "ticket", "t":
		id, err := ParseTicketID(cmd.Args)
		if err != nil {
			a.setFlash(err.Error(), ui.FlashErr)
			return
		}
		a.openTicket(id)
	case "tickets":
		a.showTickets()
	case "search":
		a.tickets.SetSearch(cmd.Args)
		a.showTickets()
	case "retry":
		n, err := a.retrier.RetryFailed()
		if err != nil {
			a.setFlash("Retry failed: "+err.Error(), ui.FlashErr)
			return
		}
		a.setFlash(fmt.Sprintf("Requeued %d message(s)", n), ui.FlashInfo)
	case "help", "h":
		a.pages.Push(views.PageHelp)
	case "quit", "q":
		a.Stop()
	default:
		a.setFlash("Unknown command: "+cmd.Name, ui.FlashErr)
	}
}

func (a *App) setFlash(msg string, level ui.FlashLevel) {
	a.flash.Set(msg, level)
	a.flashBar.Update(a.flash.Current())
}

func (a *App) reloadTickets() {
	go func() {
		if err := a.tickets.Load(a.ctx); err != nil && a.ctx.Err() == nil {
			a.logger.Warn("failed to load tickets", zap.Error(err))
			a.bus.Notify(bus.LevelError, "Load tickets failed: "+err.Error())
		}
	}()
}

func (a *App) loadMoreTickets() {
	go func() {
		if err := a.tickets.LoadMore(a.ctx); err != nil && a.ctx.Err() == nil {
			a.bus.Notify(bus.LevelError, "Load tickets failed: "+err.Error())
		}
	}()
}

// render applies the controller's current layout.
func (a *App) render() {
	l := a.view.Layout()
	a.ticket.Apply(l)
	if !l.ShowComposer && a.app.GetFocus() == a.ticket.Thread().Composer() {
		a.app.SetFocus(a.ticket.Thread().Messages())
	}
	if a.agentData.Live != l.Live {
		a.agentData.Live = l.Live
		a.agent.Update(&a.agentData)
	}
	a.crumbs.Update(a.pages.Stack(), a.crumbLabel)
}

// handleEvent runs on the UI goroutine for every bus event.
func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindViewChanged:
		a.render()
	case bus.KindViewNotify:
		if n, ok := evt.Payload.(bus.Notification); ok {
			a.flash.Notify(n)
			a.flashBar.Update(a.flash.Current())
		}
	case bus.KindViewNavigate:
		if nav, ok := evt.Payload.(bus.Navigation); ok && nav.Route == ticketview.RouteTickets {
			a.pages.Reset(views.PageTickets)
		}
	case bus.KindMessageFailed:
		if ack, ok := evt.Payload.(outbox.Ack); ok {
			a.setFlash(fmt.Sprintf("Reply to #%d failed: %s (:retry)", ack.TicketID, ack.Error), ui.FlashErr)
		}
	}
}

func (a *App) consume(events <-chan bus.Event) {
	for {
		select {
		case <-a.ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			a.app.QueueUpdateDraw(func() { a.handleEvent(evt) })
		}
	}
}

func (a *App) watch() {
	ticker := time.NewTicker(flashInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.tickets.RefreshCh():
			list := a.tickets.List()
			a.app.QueueUpdateDraw(func() { a.list.Update(list) })
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() { a.flashBar.Update(a.flash.Current()) })
		}
	}
}

// eventStreams subscribes to the bus once per kind of traffic so a burst of
// view.changed cannot push navigation or notifications out of a full buffer.
// One queued view.changed is enough: the render it triggers reads the latest
// layout.
func (a *App) eventStreams() ([]<-chan bus.Event, func()) {
	subs := []struct {
		namespace string
		buf       int
	}{
		{bus.KindViewChanged, 1},
		{bus.KindViewNavigate, 16},
		{bus.KindViewNotify, 64},
		{"message.", 64},
	}
	streams := make([]<-chan bus.Event, 0, len(subs))
	unsubs := make([]func(), 0, len(subs))
	for _, s := range subs {
		ch, unsub := a.bus.Subscribe(s.namespace, s.buf)
		streams = append(streams, ch)
		unsubs = append(unsubs, unsub)
	}
	return streams, func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Run starts the TUI application. A non-zero ticketID opens that ticket.
func (a *App) Run(ticketID int64) error {
	streams, unsub := a.eventStreams()
	defer unsub()

	for _, events := range streams {
		go a.consume(events)
	}
	go a.watch()

	if ticketID != 0 {
		a.openTicket(ticketID)
	}
	err := a.app.Run()
	a.cancel()
	return err
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
