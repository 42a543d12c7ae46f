// Package heist implements the group heist: an open join window, a stake
// collected per participant, and a single group resolution. The resolution
// strategy (normal payout roll or a backstab) is chosen once per heist,
// never per participant.
package heist

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"vaultbot/internal/model"
	"vaultbot/internal/repository"
)

// Limits.
const (
	DefaultJoinWindow  = 60 * time.Second
	MaxParticipants    = 10
	CrewBonusPerMember = 0.02
	CrewBonusCap       = 0.25
	WinChanceCap       = 0.95
)

// Errors surfaced to players.
var (
	ErrHeistInProgress = errors.New("a heist is already forming here")
	ErrNoHeist         = errors.New("no heist is forming here")
	ErrHeistFull       = errors.New("the crew is full")
	ErrAlreadyJoined   = errors.New("you are already in the crew")
	ErrJoinClosed      = errors.New("the join window has closed")
	ErrTooPoor         = errors.New("you cannot cover the stake for this difficulty")
	ErrUnknownLevel    = errors.New("unknown difficulty")
	ErrEmptyCrew       = errors.New("nobody showed up for the heist")
)

// Difficulty describes one heist tier.
type Difficulty struct {
	Name           string
	BaseWinChance  float64
	MinStake       int64
	StakePercent   float64 // stake is max(MinStake, balance*StakePercent)
	PayoutMin      int64
	PayoutMax      int64
	BackstabChance float64
}

var difficulties = map[string]Difficulty{
	"easy":   {Name: "easy", BaseWinChance: 0.60, MinStake: 2000, StakePercent: 0.05, PayoutMin: 2000, PayoutMax: 5000, BackstabChance: 0.10},
	"medium": {Name: "medium", BaseWinChance: 0.40, MinStake: 5000, StakePercent: 0.10, PayoutMin: 5000, PayoutMax: 10000, BackstabChance: 0.05},
	"hard":   {Name: "hard", BaseWinChance: 0.20, MinStake: 10000, StakePercent: 0.15, PayoutMin: 10000, PayoutMax: 20000, BackstabChance: 0.025},
}

// Difficulties lists the known tiers for command option rendering.
func Difficulties() []Difficulty {
	return []Difficulty{difficulties["easy"], difficulties["medium"], difficulties["hard"]}
}

// LookupDifficulty resolves a tier by name.
func LookupDifficulty(name string) (Difficulty, error) {
	d, ok := difficulties[name]
	if !ok {
		return Difficulty{}, ErrUnknownLevel
	}
	return d, nil
}

// StakeFor is the buy-in a player with the given balance must hold.
func (d Difficulty) StakeFor(balance int64) int64 {
	pct := int64(float64(balance) * d.StakePercent)
	if pct > d.MinStake {
		return pct
	}
	return d.MinStake
}

// WinChance is the group's success probability for n participants.
func (d Difficulty) WinChance(n int) float64 {
	bonus := CrewBonusPerMember * float64(n)
	if bonus > CrewBonusCap {
		bonus = CrewBonusCap
	}
	chance := d.BaseWinChance + bonus
	if chance > WinChanceCap {
		chance = WinChanceCap
	}
	return chance
}

// Participant is one crew member with the stake fixed at join time.
type Participant struct {
	PlayerID int64
	Name     string
	Stake    int64
}

// Session is one forming or resolved heist.
type Session struct {
	ChannelID  string
	Difficulty Difficulty
	LeaderID   int64
	OpenedAt   time.Time
	Deadline   time.Time

	mu           sync.Mutex
	participants []Participant
	closed       bool
}

// Participants returns a snapshot of the crew.
func (s *Session) Participants() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// Outcome of a resolved heist.
type Outcome struct {
	Difficulty Difficulty
	WinChance  float64
	Won        bool
	Backstab   bool

	// Normal resolution.
	Payouts map[int64]int64 // player -> amount won (positive) or stake lost (negative)

	// Backstab resolution.
	BackstabberID   int64
	BackstabberName string

	Message string
}

// Game manages at most one forming heist per channel.
type Game struct {
	playerRepo *repository.PlayerRepository
	txRepo     *repository.TransactionRepository
	statsRepo  *repository.StatsRepository
	rng        *rand.Rand
	rngMu      sync.Mutex

	joinWindow time.Duration
	maxCrew    int

	mu       sync.Mutex
	sessions map[string]*Session // channel id -> forming heist
}

// New creates a heist game.
func New(
	playerRepo *repository.PlayerRepository,
	txRepo *repository.TransactionRepository,
	statsRepo *repository.StatsRepository,
	joinWindowSeconds, maxParticipants int,
) *Game {
	window := DefaultJoinWindow
	if joinWindowSeconds > 0 {
		window = time.Duration(joinWindowSeconds) * time.Second
	}
	if maxParticipants <= 0 {
		maxParticipants = MaxParticipants
	}
	return &Game{
		playerRepo: playerRepo,
		txRepo:     txRepo,
		statsRepo:  statsRepo,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		joinWindow: window,
		maxCrew:    maxParticipants,
		sessions:   make(map[string]*Session),
	}
}

// JoinWindow returns the configured window, for rendering countdowns.
func (g *Game) JoinWindow() time.Duration { return g.joinWindow }

// Open starts a heist in a channel with the leader as the first crew
// member. One forming heist per channel at a time.
func (g *Game) Open(ctx context.Context, channelID string, leaderID int64, leaderName, difficulty string) (*Session, error) {
	d, err := LookupDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	if _, exists := g.sessions[channelID]; exists {
		g.mu.Unlock()
		return nil, ErrHeistInProgress
	}
	now := time.Now()
	s := &Session{
		ChannelID:  channelID,
		Difficulty: d,
		LeaderID:   leaderID,
		OpenedAt:   now,
		Deadline:   now.Add(g.joinWindow),
	}
	g.sessions[channelID] = s
	g.mu.Unlock()

	if err := g.Join(ctx, channelID, leaderID, leaderName); err != nil {
		g.mu.Lock()
		delete(g.sessions, channelID)
		g.mu.Unlock()
		return nil, err
	}
	return s, nil
}

// Join adds a player to the forming heist. The stake is checked and fixed
// now; it is re-validated at resolution before any money moves.
func (g *Game) Join(ctx context.Context, channelID string, playerID int64, name string) error {
	g.mu.Lock()
	s, ok := g.sessions[channelID]
	g.mu.Unlock()
	if !ok {
		return ErrNoHeist
	}

	player, err := g.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	stake := s.Difficulty.StakeFor(player.Balance)
	if player.Balance < stake {
		return ErrTooPoor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || time.Now().After(s.Deadline) {
		return ErrJoinClosed
	}
	if len(s.participants) >= g.maxCrew {
		return ErrHeistFull
	}
	for _, p := range s.participants {
		if p.PlayerID == playerID {
			return ErrAlreadyJoined
		}
	}
	s.participants = append(s.participants, Participant{PlayerID: playerID, Name: name, Stake: stake})
	return nil
}

// Resolve closes the join window and settles the heist. Participants who
// can no longer cover their stake are dropped before the strategy is
// chosen. Exactly one of two strategies runs: the normal group payout
// roll, or a backstab where one crew member robs the rest.
func (g *Game) Resolve(ctx context.Context, channelID string) (*Outcome, error) {
	g.mu.Lock()
	s, ok := g.sessions[channelID]
	if ok {
		delete(g.sessions, channelID)
	}
	g.mu.Unlock()
	if !ok {
		return nil, ErrNoHeist
	}

	s.mu.Lock()
	s.closed = true
	joined := make([]Participant, len(s.participants))
	copy(joined, s.participants)
	s.mu.Unlock()

	// Re-validate stakes; drop anyone who spent below their buy-in while
	// the window was open.
	crew := make([]Participant, 0, len(joined))
	for _, p := range joined {
		player, err := g.playerRepo.GetByID(ctx, p.PlayerID)
		if err != nil {
			continue
		}
		if player.Balance >= p.Stake {
			crew = append(crew, p)
		}
	}
	if len(crew) == 0 {
		return nil, ErrEmptyCrew
	}

	for _, p := range crew {
		if err := g.statsRepo.Increment(ctx, p.PlayerID, "heist", model.StatDelta{"joined": 1}); err != nil {
			log.Warn().Err(err).Int64("player", p.PlayerID).Msg("Failed to record heist join")
		}
	}

	d := s.Difficulty
	g.rngMu.Lock()
	backstab := g.rng.Float64() < d.BackstabChance && len(crew) > 1
	g.rngMu.Unlock()

	if backstab {
		return g.resolveBackstab(ctx, d, crew)
	}
	return g.resolveNormal(ctx, d, crew)
}

func (g *Game) resolveNormal(ctx context.Context, d Difficulty, crew []Participant) (*Outcome, error) {
	chance := d.WinChance(len(crew))
	g.rngMu.Lock()
	won := g.rng.Float64() < chance
	g.rngMu.Unlock()

	out := &Outcome{Difficulty: d, WinChance: chance, Won: won, Payouts: make(map[int64]int64, len(crew))}
	for _, p := range crew {
		var delta int64
		if won {
			g.rngMu.Lock()
			delta = d.PayoutMin + g.rng.Int63n(d.PayoutMax-d.PayoutMin+1)
			g.rngMu.Unlock()
		} else {
			delta = -p.Stake
		}
		if _, err := g.playerRepo.AdjustBalance(ctx, p.PlayerID, delta); err != nil {
			continue
		}
		out.Payouts[p.PlayerID] = delta

		desc := fmt.Sprintf("%s heist with a crew of %d", d.Name, len(crew))
		_, _ = g.txRepo.Create(ctx, p.PlayerID, delta, model.TxTypeHeist, &desc)
		counters := model.StatDelta{"lost": 1, "total_losses": p.Stake}
		if won {
			counters = model.StatDelta{"won": 1, "total_winnings": delta}
		}
		if err := g.statsRepo.Increment(ctx, p.PlayerID, "heist", counters); err != nil {
			log.Warn().Err(err).Int64("player", p.PlayerID).Msg("Failed to record heist outcome")
		}
	}

	if won {
		out.Message = fmt.Sprintf("The crew of %d pulls off the %s heist! (%.0f%% odds)", len(crew), d.Name, chance*100)
	} else {
		out.Message = fmt.Sprintf("The %s heist goes wrong and the crew of %d loses their stakes. (%.0f%% odds)", d.Name, len(crew), chance*100)
	}
	return out, nil
}

// resolveBackstab: one crew member turns on the rest and takes a cut from
// each of them instead of the group rolling for the loot.
func (g *Game) resolveBackstab(ctx context.Context, d Difficulty, crew []Participant) (*Outcome, error) {
	g.rngMu.Lock()
	traitor := crew[g.rng.Intn(len(crew))]
	g.rngMu.Unlock()

	out := &Outcome{
		Difficulty:      d,
		Backstab:        true,
		Payouts:         make(map[int64]int64, len(crew)),
		BackstabberID:   traitor.PlayerID,
		BackstabberName: traitor.Name,
	}

	var haul int64
	for _, victim := range crew {
		if victim.PlayerID == traitor.PlayerID {
			continue
		}
		player, err := g.playerRepo.GetByID(ctx, victim.PlayerID)
		if err != nil {
			continue
		}
		g.rngMu.Lock()
		cut := d.PayoutMin + g.rng.Int63n(d.PayoutMax-d.PayoutMin+1)
		g.rngMu.Unlock()
		if cut > player.Balance {
			cut = player.Balance
		}
		if cut <= 0 {
			continue
		}
		if _, err := g.playerRepo.AdjustBalance(ctx, victim.PlayerID, -cut); err != nil {
			continue
		}
		haul += cut
		out.Payouts[victim.PlayerID] = -cut

		desc := fmt.Sprintf("betrayed by %s during a %s heist", traitor.Name, d.Name)
		_, _ = g.txRepo.Create(ctx, victim.PlayerID, -cut, model.TxTypeBackstab, &desc)
		if err := g.statsRepo.Increment(ctx, victim.PlayerID, "heist", model.StatDelta{"times_betrayed": 1, "total_losses": cut}); err != nil {
			log.Warn().Err(err).Int64("player", victim.PlayerID).Msg("Failed to record betrayal")
		}
	}

	if haul > 0 {
		if _, err := g.playerRepo.AdjustBalance(ctx, traitor.PlayerID, haul); err != nil {
			return nil, err
		}
		out.Payouts[traitor.PlayerID] = haul
		desc := fmt.Sprintf("backstabbed the crew during a %s heist", d.Name)
		_, _ = g.txRepo.Create(ctx, traitor.PlayerID, haul, model.TxTypeBackstab, &desc)
	}
	if err := g.statsRepo.Increment(ctx, traitor.PlayerID, "heist", model.StatDelta{"backstabs": 1, "total_winnings": haul}); err != nil {
		log.Warn().Err(err).Int64("player", traitor.PlayerID).Msg("Failed to record backstab")
	}

	out.Message = fmt.Sprintf("%s turns on the crew and makes off with %d coins!", traitor.Name, haul)
	return out, nil
}
