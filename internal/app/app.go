// Package app wires config, storage, the wizard engine and the Telegram
// transport together and runs the long-poll loop.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tradecoach/internal/chart"
	"tradecoach/internal/coach"
	"tradecoach/internal/config"
	"tradecoach/internal/gateway/telegram"
	"tradecoach/internal/ledger"
	"tradecoach/internal/ledger/gormstore"
	"tradecoach/internal/logger"
	"tradecoach/internal/workflow"
)

const chatQueueDepth = 16

const storageRetryText = "⚠️ Временная ошибка хранилища, попробуй еще раз."

type App struct {
	cfg    *config.Config
	store  ledger.Store
	engine *workflow.Engine
	client *telegram.Client

	mu        sync.Mutex
	sessions  map[int64]*workflow.Session
	keyboards map[int64][][]workflow.Button
	queues    map[int64]chan telegram.Update
}

func New(cfg *config.Config) (*App, error) {
	var store ledger.Store
	if cfg.Storage.Path != "" {
		s, err := gormstore.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("app: open store: %w", err)
		}
		store = s
	} else {
		logger.Warnf("storage.path is empty, using in-memory store; trades will not survive restarts")
		store = ledger.NewMemoryStore()
	}

	opts := []workflow.Option{}
	if cfg.Chart.Enabled {
		renderer := chart.NewRenderer(time.Duration(cfg.Chart.TimeoutSeconds) * time.Second)
		opts = append(opts, workflow.WithChartRenderer(renderer))
	}
	engine := workflow.New(store, coach.NewSelector(), opts...)

	a := &App{
		cfg:       cfg,
		store:     store,
		engine:    engine,
		sessions:  make(map[int64]*workflow.Session),
		keyboards: make(map[int64][][]workflow.Button),
		queues:    make(map[int64]chan telegram.Update),
	}
	if cfg.Telegram.Enabled {
		a.client = telegram.NewClient(cfg.Telegram.BotToken)
	}
	return a, nil
}

// Run polls Telegram until ctx is canceled. Updates are fanned out to one
// worker per chat so each user's wizard sees its messages in order while
// different users proceed in parallel.
func (a *App) Run(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("app: telegram transport is disabled, nothing to run")
	}
	if a.cfg.Chart.Enabled {
		if err := chart.EnsureHeadlessAvailable(ctx); err != nil {
			logger.Warnf("headless chrome unavailable, journal charts disabled: %v", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.pollLoop(ctx, g) })
	return g.Wait()
}

func (a *App) pollLoop(ctx context.Context, g *errgroup.Group) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := a.client.GetUpdates(ctx, offset, a.cfg.Telegram.PollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Errorf("poll updates: %v", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			if upd.Message == nil || upd.Message.Text == "" {
				continue
			}
			a.dispatch(ctx, g, upd)
		}
	}
}

// dispatch routes an update onto its chat's serial queue, creating the
// worker on first contact.
func (a *App) dispatch(ctx context.Context, g *errgroup.Group, upd telegram.Update) {
	chatID := upd.Message.Chat.ID

	a.mu.Lock()
	q, ok := a.queues[chatID]
	if !ok {
		q = make(chan telegram.Update, chatQueueDepth)
		a.queues[chatID] = q
		g.Go(func() error {
			for {
				select {
				case u := <-q:
					a.handleUpdate(ctx, u)
				case <-ctx.Done():
					return nil
				}
			}
		})
	}
	a.mu.Unlock()

	select {
	case q <- upd:
	default:
		logger.Warnf("chat %d queue full, dropping update %d", chatID, upd.UpdateID)
	}
}

func (a *App) handleUpdate(ctx context.Context, upd telegram.Update) {
	msg := upd.Message
	chatID := msg.Chat.ID

	firstName := ""
	if msg.From != nil {
		firstName = msg.From.FirstName
	}

	sess := a.session(chatID)
	var (
		reply workflow.Reply
		err   error
	)
	switch {
	case msg.Text == "/start" || sess == nil:
		sess = &workflow.Session{UserID: chatID}
		a.setSession(chatID, sess)
		reply, err = a.engine.Start(ctx, sess, firstName)
	default:
		in := a.mapInput(chatID, sess, msg.Text)
		reply, err = a.engine.Handle(ctx, sess, in)
	}
	if err != nil {
		logger.Errorf("chat %d: %v", chatID, err)
		a.send(ctx, chatID, workflow.Reply{Text: storageRetryText, Keyboard: a.lastKeyboard(chatID)})
		return
	}
	a.send(ctx, chatID, reply)
}

// mapInput resolves inbound message text against the last keyboard shown to
// this chat. Unmatched text only counts in the two free-text states.
func (a *App) mapInput(chatID int64, sess *workflow.Session, text string) workflow.Input {
	for _, row := range a.lastKeyboard(chatID) {
		for _, btn := range row {
			if btn.Label == text {
				return btn.Input
			}
		}
	}
	if workflow.AcceptsText(sess.State) {
		return workflow.Input{Text: text}
	}
	return workflow.Input{}
}

func (a *App) send(ctx context.Context, chatID int64, reply workflow.Reply) {
	markup := a.buildMarkup(chatID, reply)

	if reply.Photo != nil {
		err := a.client.SendPhoto(ctx, chatID, reply.Photo.Bytes, reply.Photo.Filename, reply.Text, markup)
		if err == nil {
			return
		}
		logger.Warnf("chat %d: send photo: %v, falling back to text", chatID, err)
	}
	if err := a.client.SendMessage(ctx, chatID, reply.Text, markup); err != nil {
		logger.Errorf("chat %d: send message: %v", chatID, err)
	}
}

// buildMarkup converts the engine keyboard to Bot API markup and records it
// for the next mapInput call.
func (a *App) buildMarkup(chatID int64, reply workflow.Reply) any {
	if reply.RemoveKeyboard {
		a.setKeyboard(chatID, nil)
		return telegram.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	if len(reply.Keyboard) == 0 {
		return nil
	}
	a.setKeyboard(chatID, reply.Keyboard)
	rows := make([][]telegram.KeyboardButton, len(reply.Keyboard))
	for i, row := range reply.Keyboard {
		rows[i] = make([]telegram.KeyboardButton, len(row))
		for j, btn := range row {
			rows[i][j] = telegram.KeyboardButton{Text: btn.Label}
		}
	}
	return telegram.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

func (a *App) session(chatID int64) *workflow.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[chatID]
}

func (a *App) setSession(chatID int64, s *workflow.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[chatID] = s
}

func (a *App) lastKeyboard(chatID int64) [][]workflow.Button {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keyboards[chatID]
}

func (a *App) setKeyboard(chatID int64, kb [][]workflow.Button) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if kb == nil {
		delete(a.keyboards, chatID)
		return
	}
	a.keyboards[chatID] = kb
}
