// Package blackjack implements single-player blackjack against the house.
// Cards are drawn with replacement from a uniform 13-rank distribution, so
// no shoe state is kept between hands.
package blackjack

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"vaultbot/internal/model"
	"vaultbot/internal/repository"
	"vaultbot/internal/service"
)

// Rules.
const (
	BlackjackTotal   = 21
	DealerStandsOver = 16  // dealer hits while total <= 16
	NaturalPayout    = 1.5 // paid on an ace + ten-value first two cards
)

// Errors surfaced to players.
var (
	ErrHandInProgress = errors.New("you already have a hand in play")
	ErrNoHand         = errors.New("you have no hand in play")
	ErrCannotDouble   = errors.New("you can only double down on your first two cards")
	ErrInvalidBet     = errors.New("bet must be positive")
)

// Card is a rank; suits do not affect play.
type Card int

const (
	Two Card = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (c Card) String() string {
	switch c {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return fmt.Sprintf("%d", int(c))
	}
}

// value is the card's hard value; aces count 1 here and are softened in
// HandTotal.
func (c Card) value() int {
	switch {
	case c == Ace:
		return 1
	case c >= Ten:
		return 10
	default:
		return int(c)
	}
}

// Draw returns one card from the with-replacement distribution.
func Draw(rng *rand.Rand) Card {
	return Card(2 + rng.Intn(13))
}

// HandTotal computes the best total, counting one ace as 11 only when that
// keeps the hand at 21 or below. The second return reports a soft hand.
func HandTotal(cards []Card) (total int, soft bool) {
	aces := 0
	for _, c := range cards {
		total += c.value()
		if c == Ace {
			aces++
		}
	}
	if aces > 0 && total+10 <= BlackjackTotal {
		return total + 10, true
	}
	return total, false
}

// IsNatural reports an ace plus ten-value card as the first two cards.
func IsNatural(cards []Card) bool {
	if len(cards) != 2 {
		return false
	}
	total, _ := HandTotal(cards)
	return total == BlackjackTotal
}

// FormatHand renders cards for chat output.
func FormatHand(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Outcome of a settled hand.
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeLoss
	OutcomePush
	OutcomeNatural
)

// Session is one in-flight hand.
type Session struct {
	PlayerID  int64
	Bet       int64
	Player    []Card
	Dealer    []Card
	Doubled   bool
	StartedAt time.Time
}

// Result is a settled hand ready for rendering.
type Result struct {
	Outcome     Outcome
	Payout      int64 // net balance change
	Player      []Card
	Dealer      []Card
	PlayerTotal int
	DealerTotal int
	Message     string
}

// Game holds at most one hand per player.
type Game struct {
	ledger    *service.LedgerService
	statsRepo *repository.StatsRepository
	rng       *rand.Rand

	mu       sync.Mutex
	sessions map[int64]*Session
}

// New creates a blackjack game.
func New(ledger *service.LedgerService, statsRepo *repository.StatsRepository) *Game {
	return &Game{
		ledger:    ledger,
		statsRepo: statsRepo,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions:  make(map[int64]*Session),
	}
}

// Deal starts a hand. A natural resolves immediately at 1.5x without the
// dealer playing; otherwise the hand waits for hit/stand/double.
func (g *Game) Deal(ctx context.Context, playerID, bet int64) (*Session, *Result, error) {
	if bet <= 0 {
		return nil, nil, ErrInvalidBet
	}
	player, err := g.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if player.Balance < bet {
		return nil, nil, service.ErrInsufficientFunds
	}

	g.mu.Lock()
	if _, exists := g.sessions[playerID]; exists {
		g.mu.Unlock()
		return nil, nil, ErrHandInProgress
	}
	s := &Session{
		PlayerID:  playerID,
		Bet:       bet,
		Player:    []Card{Draw(g.rng), Draw(g.rng)},
		Dealer:    []Card{Draw(g.rng), Draw(g.rng)},
		StartedAt: time.Now(),
	}
	if !IsNatural(s.Player) {
		g.sessions[playerID] = s
	}
	g.mu.Unlock()

	if IsNatural(s.Player) {
		res, err := g.settle(ctx, s, OutcomeNatural)
		return s, res, err
	}
	return s, nil, nil
}

// Hit draws one card. A bust settles the hand immediately with no dealer
// turn.
func (g *Game) Hit(ctx context.Context, playerID int64) (*Session, *Result, error) {
	g.mu.Lock()
	s, ok := g.sessions[playerID]
	if !ok {
		g.mu.Unlock()
		return nil, nil, ErrNoHand
	}
	s.Player = append(s.Player, Draw(g.rng))
	total, _ := HandTotal(s.Player)
	busted := total > BlackjackTotal
	if busted {
		delete(g.sessions, playerID)
	}
	g.mu.Unlock()

	if busted {
		res, err := g.settle(ctx, s, OutcomeLoss)
		return s, res, err
	}
	return s, nil, nil
}

// Stand ends the player's turn and runs the dealer.
func (g *Game) Stand(ctx context.Context, playerID int64) (*Result, error) {
	g.mu.Lock()
	s, ok := g.sessions[playerID]
	if !ok {
		g.mu.Unlock()
		return nil, ErrNoHand
	}
	delete(g.sessions, playerID)
	g.mu.Unlock()

	return g.playDealer(ctx, s)
}

// Double doubles the bet, draws exactly one card, and forces resolution.
// Only allowed on the first two cards, and only if the doubled bet is
// still covered.
func (g *Game) Double(ctx context.Context, playerID int64) (*Result, error) {
	g.mu.Lock()
	s, ok := g.sessions[playerID]
	if !ok {
		g.mu.Unlock()
		return nil, ErrNoHand
	}
	if len(s.Player) != 2 || s.Doubled {
		g.mu.Unlock()
		return nil, ErrCannotDouble
	}
	g.mu.Unlock()

	player, err := g.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.Balance < s.Bet*2 {
		return nil, service.ErrInsufficientFunds
	}

	g.mu.Lock()
	s.Bet *= 2
	s.Doubled = true
	s.Player = append(s.Player, Draw(g.rng))
	delete(g.sessions, playerID)
	g.mu.Unlock()

	if total, _ := HandTotal(s.Player); total > BlackjackTotal {
		return g.settle(ctx, s, OutcomeLoss)
	}
	return g.playDealer(ctx, s)
}

// Abandon drops a stale hand without settling; used by timeout sweeps. The
// bet was never debited up front, so nothing moves.
func (g *Game) Abandon(playerID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.sessions[playerID]; !ok {
		return false
	}
	delete(g.sessions, playerID)
	return true
}

// AbandonStale drops hands idle past maxAge and reports how many. Nothing
// is settled: the bet was never debited.
func (g *Game) AbandonStale(maxAge time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	n := 0
	for id, s := range g.sessions {
		if s.StartedAt.Before(cutoff) {
			delete(g.sessions, id)
			n++
		}
	}
	return n
}

// SessionFor returns the in-flight hand, if any.
func (g *Game) SessionFor(playerID int64) (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[playerID]
	return s, ok
}

// playDealer runs the dealer to completion and compares totals. The dealer
// hits while at 16 or below; a soft 17 stands.
func (g *Game) playDealer(ctx context.Context, s *Session) (*Result, error) {
	for {
		total, _ := HandTotal(s.Dealer)
		if total > DealerStandsOver {
			break
		}
		g.mu.Lock()
		s.Dealer = append(s.Dealer, Draw(g.rng))
		g.mu.Unlock()
	}

	playerTotal, _ := HandTotal(s.Player)
	dealerTotal, _ := HandTotal(s.Dealer)
	switch {
	case dealerTotal > BlackjackTotal || playerTotal > dealerTotal:
		return g.settle(ctx, s, OutcomeWin)
	case playerTotal < dealerTotal:
		return g.settle(ctx, s, OutcomeLoss)
	default:
		return g.settle(ctx, s, OutcomePush)
	}
}

// settle applies the money movement and records the hand.
func (g *Game) settle(ctx context.Context, s *Session, outcome Outcome) (*Result, error) {
	playerTotal, _ := HandTotal(s.Player)
	dealerTotal, _ := HandTotal(s.Dealer)
	res := &Result{
		Outcome:     outcome,
		Player:      s.Player,
		Dealer:      s.Dealer,
		PlayerTotal: playerTotal,
		DealerTotal: dealerTotal,
	}

	switch outcome {
	case OutcomeNatural:
		res.Payout = int64(float64(s.Bet) * NaturalPayout)
		res.Message = fmt.Sprintf("Blackjack! %s pays %d coins.", FormatHand(s.Player), res.Payout)
	case OutcomeWin:
		res.Payout = s.Bet
		res.Message = fmt.Sprintf("You win %d coins with %d against the dealer's %d.", s.Bet, playerTotal, dealerTotal)
	case OutcomeLoss:
		res.Payout = -s.Bet
		if playerTotal > BlackjackTotal {
			res.Message = fmt.Sprintf("Bust at %d. You lose %d coins.", playerTotal, s.Bet)
		} else {
			res.Message = fmt.Sprintf("Dealer takes it %d to %d. You lose %d coins.", dealerTotal, playerTotal, s.Bet)
		}
	case OutcomePush:
		res.Message = fmt.Sprintf("Push at %d. Your bet is returned.", playerTotal)
	}

	if res.Payout != 0 {
		desc := fmt.Sprintf("blackjack: %s vs %s", FormatHand(s.Player), FormatHand(s.Dealer))
		if _, err := g.ledger.Credit(ctx, s.PlayerID, res.Payout, model.TxTypeBlackjack, &desc); err != nil {
			return nil, err
		}
	}

	switch outcome {
	case OutcomeWin, OutcomeNatural:
		_ = g.statsRepo.RecordOutcome(ctx, s.PlayerID, "blackjack", true, false, res.Payout, 0)
	case OutcomeLoss:
		_ = g.statsRepo.RecordOutcome(ctx, s.PlayerID, "blackjack", false, true, 0, s.Bet)
	case OutcomePush:
		_ = g.statsRepo.Increment(ctx, s.PlayerID, "blackjack", model.StatDelta{"played": 1})
	}
	return res, nil
}
