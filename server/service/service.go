package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"kirves-server/server/engine"
	"kirves-server/server/tx"
)

// ActionIn is the wire form of one game action.
type ActionIn struct {
	Action        engine.ActionKind `json:"action"`
	Index         *int              `json:"index,omitempty"`
	DeclineCut    bool              `json:"declineCut,omitempty"`
	KeepExtraCard bool              `json:"keepExtraCard,omitempty"`
	Suit          engine.Suit       `json:"suit,omitempty"`
	Speak         string            `json:"speak,omitempty"`
}

// loggedActions are the in-hand actions appended to the hand's audit
// trail. DEAL initializes the trail instead of appending.
var loggedActions = map[engine.ActionKind]bool{
	engine.ActionPlayCard:  true,
	engine.ActionFold:      true,
	engine.ActionAceOrTwo:  true,
	engine.ActionSpeak:     true,
	engine.ActionSpeakSuit: true,
	engine.ActionDiscard:   true,
	engine.ActionSetValtti: true,
}

// Service owns the arena of live games. All mutation funnels through
// Action/Join/Inactivate, which serialize per game id via the
// transaction handler and roll back to the pre-transaction clone on any
// failure.
type Service struct {
	store Store
	txh   *tx.Handler

	mu    sync.RWMutex
	games map[string]*engine.Game
	logs  map[string]*ActionLog

	now func() time.Time
}

func New(store Store, txTimeout time.Duration) *Service {
	return &Service{
		store: store,
		txh:   tx.NewHandler(txTimeout),
		games: map[string]*engine.Game{},
		logs:  map[string]*ActionLog{},
		now:   time.Now,
	}
}

// Init creates a new game with the admin seated as the first player.
func (s *Service) Init(ctx context.Context, admin string) (*engine.Game, error) {
	id := uuid.NewString()
	g := engine.NewGame(id, admin)
	data, err := g.ToJSON()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateGame(ctx, id, admin, len(g.Players), g.CanJoin, data); err != nil {
		return nil, err
	}
	s.put(id, g)
	s.txh.Register(id)
	log.Printf("created game id=%s admin=%s", id, admin)
	return g, nil
}

func (s *Service) ActiveGames(ctx context.Context) ([]GameBrief, error) {
	return s.store.ListActiveGames(ctx)
}

func (s *Service) put(id string, g *engine.Game) {
	s.mu.Lock()
	s.games[id] = g
	s.mu.Unlock()
}

// GetGame returns the live game, deserializing from the gateway and
// registering the transaction on a cold start.
func (s *Service) GetGame(ctx context.Context, id string) (*engine.Game, error) {
	s.mu.RLock()
	g, ok := s.games[id]
	s.mu.RUnlock()
	if ok {
		return g, nil
	}
	data, err := s.store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err = engine.FromJSON(data)
	if err != nil {
		return nil, err
	}
	s.put(id, g)
	s.txh.Register(id)
	return g, nil
}

// View projects the game state for one viewer.
func (s *Service) View(ctx context.Context, id, viewer string) (engine.GameOut, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return engine.GameOut{}, err
	}
	return g.Out(viewer), nil
}

// Join seats a new player. It runs under the game's transaction so
// concurrent joins cannot interleave.
func (s *Service) Join(ctx context.Context, id, email string) (*engine.Game, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err = s.begin(id, email, g)
	if err != nil {
		return nil, err
	}
	if err := g.AddPlayer(email); err != nil {
		s.restore(id)
		return nil, err
	}
	if err := s.commit(ctx, id, g); err != nil {
		return nil, err
	}
	log.Printf("player %s joined game id=%s", email, id)
	return g, nil
}

// Action is the single mutating entry point for game play.
func (s *Service) Action(ctx context.Context, id string, in ActionIn, email string) (*engine.Game, error) {
	return s.action(ctx, id, in, email, 0)
}

// action takes a delay used only by tests to force a transaction past
// its deadline between Begin and End.
func (s *Service) action(ctx context.Context, id string, in ActionIn, email string, delay time.Duration) (*engine.Game, error) {
	if in.Action == "" {
		return nil, fmt.Errorf("%w: action is required", ErrBadAction)
	}
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err = s.begin(id, email, g)
	if err != nil {
		return nil, err
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := s.txh.Check(id, email); err != nil {
		s.restore(id)
		return nil, err
	}
	if err := s.execute(in, email, g); err != nil {
		s.restore(id)
		return nil, err
	}
	if err := s.txh.End(id); err != nil {
		log.Printf("ending transaction failed (id=%s, user=%s): %v; rolling back", id, email, err)
		s.restore(id)
		return nil, fmt.Errorf("ending transaction failed, previous state restored: %w", err)
	}
	if err := s.save(ctx, id, g, in, email); err != nil {
		return nil, err
	}
	return g, nil
}

// begin opens the transaction with a clone-on-begin snapshot. A stale
// holder is rolled back (its snapshot reinstated) and Begin retried
// once, after which the reinstated game is the one to mutate.
func (s *Service) begin(id, email string, g *engine.Game) (*engine.Game, error) {
	err := s.txh.Begin(id, email, g.Clone())
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, tx.ErrTxTimeout) {
		return nil, err
	}
	log.Printf("stale transaction on game id=%s, rolling back", id)
	restored := s.restore(id)
	if restored != nil {
		g = restored
	}
	if err := s.txh.Begin(id, email, g.Clone()); err != nil {
		return nil, err
	}
	return g, nil
}

// restore rolls the transaction back and reinstates its snapshot as the
// authoritative in-memory state.
func (s *Service) restore(id string) *engine.Game {
	snap, err := s.txh.Rollback(id)
	if err != nil {
		log.Printf("rollback failed for game id=%s: %v", id, err)
		return nil
	}
	g, ok := snap.(*engine.Game)
	if !ok || g == nil {
		return nil
	}
	s.put(id, g)
	return g
}

func (s *Service) commit(ctx context.Context, id string, g *engine.Game) error {
	if err := s.txh.End(id); err != nil {
		s.restore(id)
		return fmt.Errorf("ending transaction failed, previous state restored: %w", err)
	}
	data, err := g.ToJSON()
	if err != nil {
		return err
	}
	if err := s.store.SaveGame(ctx, id, len(g.Players), g.CanJoin, data); err != nil {
		return err
	}
	s.put(id, g)
	return nil
}

// execute validates the action against the caller's permitted set and
// dispatches. Every branch mutates state or returns a typed error.
func (s *Service) execute(in ActionIn, email string, g *engine.Game) error {
	if !g.HasActionAvailable(email, in.Action) {
		return fmt.Errorf("%w: %s", engine.ErrActionNotAvailable, in.Action)
	}
	switch in.Action {
	case engine.ActionDeal:
		return g.Deal(email, nil)
	case engine.ActionPlayCard:
		if in.Index == nil {
			return fmt.Errorf("%w: PLAY_CARD requires index", engine.ErrInvalidIndex)
		}
		return g.PlayCard(email, *in.Index)
	case engine.ActionCut:
		return g.Cut(email, in.DeclineCut, nil)
	case engine.ActionAceOrTwo:
		return g.AceOrTwoDecision(email, in.KeepExtraCard)
	case engine.ActionDiscard:
		if in.Index == nil {
			return fmt.Errorf("%w: DISCARD requires index", engine.ErrInvalidIndex)
		}
		return g.Discard(email, *in.Index)
	case engine.ActionSetValtti:
		return g.SetValtti(email, in.Suit)
	case engine.ActionFold, engine.ActionSpeak, engine.ActionSpeakSuit:
		// Accepted on the wire, never granted by this rule set.
		return fmt.Errorf("%w: %s", engine.ErrActionNotAvailable, in.Action)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrBadAction, in.Action)
	}
}

// save persists the committed state and updates the hand's audit trail.
func (s *Service) save(ctx context.Context, id string, g *engine.Game, in ActionIn, email string) error {
	if in.Action == engine.ActionDeal {
		g.IncrementHandID()
	}
	data, err := g.ToJSON()
	if err != nil {
		return err
	}
	if err := s.store.SaveGame(ctx, id, len(g.Players), g.CanJoin, data); err != nil {
		return err
	}
	s.put(id, g)

	if in.Action == engine.ActionDeal {
		l := NewActionLog(data)
		l.Add(email, in, s.now())
		if err := s.saveLog(ctx, id, g.HandID, l); err != nil {
			return err
		}
		log.Printf("action log initialized for game id=%s hand=%d", id, g.HandID)
	} else if loggedActions[in.Action] {
		l, err := s.ActionLogFor(ctx, id, g.HandID)
		if err != nil {
			return err
		}
		l.Add(email, in, s.now())
		if err := s.saveLog(ctx, id, g.HandID, l); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) saveLog(ctx context.Context, id string, handID int64, l *ActionLog) error {
	key := actionLogKey(id, handID)
	data, err := l.ToJSON()
	if err != nil {
		return err
	}
	if err := s.store.SaveActionLog(ctx, key, data); err != nil {
		return err
	}
	s.mu.Lock()
	s.logs[key] = l
	s.mu.Unlock()
	return nil
}

// ActionLogFor returns the audit trail for one game hand.
func (s *Service) ActionLogFor(ctx context.Context, id string, handID int64) (*ActionLog, error) {
	key := actionLogKey(id, handID)
	s.mu.RLock()
	l, ok := s.logs[key]
	s.mu.RUnlock()
	if ok {
		return l, nil
	}
	data, err := s.store.LoadActionLog(ctx, key)
	if err != nil {
		return nil, err
	}
	l, err = ActionLogFromJSON(data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.logs[key] = l
	s.mu.Unlock()
	return l, nil
}

// Inactivate retires a game. Admin only; the engine itself never
// destroys a game.
func (s *Service) Inactivate(ctx context.Context, id, email string) error {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.begin(id, email, g); err != nil {
		return err
	}
	if g.Admin != email {
		s.restore(id)
		return fmt.Errorf("%w: %s (game id=%s)", ErrNotAdmin, email, id)
	}
	if err := s.store.InactivateGame(ctx, id); err != nil {
		s.restore(id)
		return err
	}
	if err := s.txh.End(id); err != nil {
		s.restore(id)
		return err
	}
	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
	log.Printf("inactivated game id=%s", id)
	return nil
}
