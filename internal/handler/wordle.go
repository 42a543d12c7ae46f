package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/game/wordle"
	"vaultbot/internal/service"
)

// WordleHandler serves the wordle command and its subcommands.
type WordleHandler struct {
	ledger  *service.LedgerService
	puzzles *wordle.Game
}

// NewWordleHandler creates a wordle handler.
func NewWordleHandler(ledger *service.LedgerService, puzzles *wordle.Game) *WordleHandler {
	return &WordleHandler{ledger: ledger, puzzles: puzzles}
}

// HandleWordle dispatches the start, guess and quit subcommands.
func (h *WordleHandler) HandleWordle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	playerID := InteractionUserID(i)
	if _, _, err := h.ledger.EnsurePlayer(ctx, playerID, InteractionUsername(i)); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		RespondError(s, i, "Pick a subcommand: start, guess or quit.")
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "start":
		if _, err := h.puzzles.Start(playerID); err != nil {
			if errors.Is(err, wordle.ErrGameInProgress) {
				RespondError(s, i, err.Error())
				return
			}
			log.Error().Err(err).Int64("player", playerID).Msg("Wordle start failed")
			RespondError(s, i, "Could not start a puzzle, try again.")
			return
		}
		Respond(s, i, fmt.Sprintf("🟩 A five letter word awaits. You have %d guesses; use /wordle guess.", wordle.MaxGuesses))
	case "guess":
		var word string
		for _, o := range sub.Options {
			if o.Name == "word" {
				word = o.StringValue()
			}
		}
		outcome, err := h.puzzles.Guess(ctx, playerID, word)
		if err != nil {
			switch {
			case errors.Is(err, wordle.ErrNoGame),
				errors.Is(err, wordle.ErrBadWordLength),
				errors.Is(err, wordle.ErrNotALetter):
				RespondError(s, i, err.Error())
			default:
				log.Error().Err(err).Int64("player", playerID).Msg("Wordle guess failed")
				RespondError(s, i, "Could not score that guess, try again.")
			}
			return
		}
		Respond(s, i, renderGuess(outcome))
	case "quit":
		if !h.puzzles.Abandon(ctx, playerID) {
			RespondError(s, i, "You have no puzzle in play.")
			return
		}
		Respond(s, i, "Puzzle abandoned. It counts as a loss.")
	}
}

func renderGuess(o *wordle.GuessOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "`%s`\n%s", strings.ToUpper(o.Guess), wordle.FormatMarks(o.Marks))
	switch {
	case o.Solved:
		fmt.Fprintf(&b, "\n🎉 Solved in %d! You win %d coins.", o.Guesses, o.Reward)
	case o.Over:
		fmt.Fprintf(&b, "\n💀 Out of guesses. The word was **%s**.", strings.ToUpper(o.Answer))
	default:
		fmt.Fprintf(&b, "\n%d of %d guesses used.", o.Guesses, wordle.MaxGuesses)
	}
	return b.String()
}
