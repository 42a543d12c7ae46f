// Package wordle implements the five-letter word guessing game. No wager:
// a solved puzzle pays a reward that shrinks with each guess used.
package wordle

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
	WordLength = 5
	MaxGuesses = 6

	// BaseReward is paid for solving on the last guess; each unused guess
	// adds RewardPerSpare on top.
	BaseReward     = 500
	RewardPerSpare = 200
)

// Errors surfaced to players.
var (
	ErrGameInProgress = errors.New("you already have a puzzle in play")
	ErrNoGame         = errors.New("you have no puzzle in play")
	ErrBadWordLength  = errors.New("guesses must be exactly five letters")
	ErrNotALetter     = errors.New("guesses must contain only letters")
)

var words = []string{
	"apple", "baker", "candy", "dream", "eagle", "flame", "grape", "house",
	"ivory", "joker", "knife", "lemon", "mango", "night", "ocean", "piano",
	"queen", "river", "stone", "tiger", "under", "vivid", "water", "xenon",
	"yacht", "zebra", "brave", "climb", "doubt", "early", "frost", "ghost",
	"heart", "index", "jumbo", "koala", "light", "mount", "noble", "orbit",
	"plant", "quilt", "round", "shine", "trace", "unity", "vapor", "wheat",
	"blitz", "crane", "depth", "elbow", "fancy", "giant", "hotel", "input",
	"jolly", "kneel", "lunar", "medal", "nerve", "onset", "pearl", "quart",
	"radio", "solar", "theme", "urban", "valor", "widow", "youth", "zonal",
}

// Mark is one letter's feedback.
type Mark int

const (
	MarkAbsent  Mark = iota // letter not in the word
	MarkPresent             // letter in the word, wrong position
	MarkCorrect             // letter in the right position
)

// Score compares a guess against the answer, both lowercase. Correct
// positions are marked first; remaining letters then claim "present" marks
// against the unmatched letter pool, so a letter is never flagged present
// more times than it appears.
func Score(answer, guess string) [WordLength]Mark {
	var marks [WordLength]Mark
	var pool [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == answer[i] {
			marks[i] = MarkCorrect
		} else {
			pool[answer[i]-'a']++
		}
	}
	for i := 0; i < WordLength; i++ {
		if marks[i] == MarkCorrect {
			continue
		}
		idx := guess[i] - 'a'
		if pool[idx] > 0 {
			marks[i] = MarkPresent
			pool[idx]--
		}
	}
	return marks
}

// FormatMarks renders feedback squares for chat output.
func FormatMarks(marks [WordLength]Mark) string {
	var b strings.Builder
	for _, m := range marks {
		switch m {
		case MarkCorrect:
			b.WriteString("🟩")
		case MarkPresent:
			b.WriteString("🟨")
		default:
			b.WriteString("⬛")
		}
	}
	return b.String()
}

// RewardFor is the payout for solving with the given number of guesses.
func RewardFor(guessesUsed int) int64 {
	spare := MaxGuesses - guessesUsed
	if spare < 0 {
		spare = 0
	}
	return BaseReward + int64(spare)*RewardPerSpare
}

// GuessOutcome is one scored guess.
type GuessOutcome struct {
	Guess   string
	Marks   [WordLength]Mark
	Solved  bool
	Over    bool // out of guesses without solving
	Answer  string
	Reward  int64
	Guesses int
}

// Session is one in-flight puzzle.
type Session struct {
	PlayerID  int64
	Answer    string
	Guesses   []string
	StartedAt time.Time
}

// Game holds at most one puzzle per player.
type Game struct {
	ledger    *service.LedgerService
	statsRepo *repository.StatsRepository
	rng       *rand.Rand

	mu       sync.Mutex
	sessions map[int64]*Session
}

// New creates the wordle game.
func New(ledger *service.LedgerService, statsRepo *repository.StatsRepository) *Game {
	return &Game{
		ledger:    ledger,
		statsRepo: statsRepo,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions:  make(map[int64]*Session),
	}
}

// Start begins a puzzle for a player.
func (g *Game) Start(playerID int64) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.sessions[playerID]; exists {
		return nil, ErrGameInProgress
	}
	s := &Session{
		PlayerID:  playerID,
		Answer:    words[g.rng.Intn(len(words))],
		StartedAt: time.Now(),
	}
	g.sessions[playerID] = s
	return s, nil
}

// Guess scores one guess. Solving pays the reward and closes the puzzle;
// running out of guesses closes it with no money moved.
func (g *Game) Guess(ctx context.Context, playerID int64, word string) (*GuessOutcome, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) != WordLength {
		return nil, ErrBadWordLength
	}
	for _, r := range word {
		if r < 'a' || r > 'z' {
			return nil, ErrNotALetter
		}
	}

	g.mu.Lock()
	s, ok := g.sessions[playerID]
	if !ok {
		g.mu.Unlock()
		return nil, ErrNoGame
	}
	s.Guesses = append(s.Guesses, word)
	marks := Score(s.Answer, word)
	solved := word == s.Answer
	over := !solved && len(s.Guesses) >= MaxGuesses
	if solved || over {
		delete(g.sessions, playerID)
	}
	guesses := len(s.Guesses)
	answer := s.Answer
	g.mu.Unlock()

	out := &GuessOutcome{Guess: word, Marks: marks, Solved: solved, Over: over, Guesses: guesses}
	switch {
	case solved:
		out.Answer = answer
		out.Reward = RewardFor(guesses)
		desc := fmt.Sprintf("wordle solved in %d", guesses)
		if _, err := g.ledger.Credit(ctx, playerID, out.Reward, model.TxTypeWordle, &desc); err != nil {
			return nil, err
		}
		_ = g.statsRepo.RecordOutcome(ctx, playerID, "wordle", true, false, out.Reward, 0)
	case over:
		out.Answer = answer
		_ = g.statsRepo.RecordOutcome(ctx, playerID, "wordle", false, true, 0, 0)
	}
	return out, nil
}

// Abandon drops an in-flight puzzle, counting it as a loss.
func (g *Game) Abandon(ctx context.Context, playerID int64) bool {
	g.mu.Lock()
	_, ok := g.sessions[playerID]
	if ok {
		delete(g.sessions, playerID)
	}
	g.mu.Unlock()
	if ok {
		_ = g.statsRepo.RecordOutcome(ctx, playerID, "wordle", false, true, 0, 0)
	}
	return ok
}

// AbandonStale drops puzzles idle past maxAge without recording a loss and
// reports how many.
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

// SessionFor returns the in-flight puzzle, if any.
func (g *Game) SessionFor(playerID int64) (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[playerID]
	return s, ok
}
