package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"vaultbot/internal/service"
)

// RankingHandler serves the leaderboard commands.
type RankingHandler struct {
	ranking *service.RankingService
}

// NewRankingHandler creates a ranking handler.
func NewRankingHandler(ranking *service.RankingService) *RankingHandler {
	return &RankingHandler{ranking: ranking}
}

var rankMedals = []string{"🥇", "🥈", "🥉"}

func medal(pos int) string {
	if pos < len(rankMedals) {
		return rankMedals[pos]
	}
	return fmt.Sprintf("%d.", pos+1)
}

// HandleTop shows the richest players by combined wallet and bank.
func (h *RankingHandler) HandleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	players, err := h.ranking.GetTopPlayers(context.Background(), 10)
	if err != nil || len(players) == 0 {
		Respond(s, i, "Nobody on the leaderboard yet.")
		return
	}

	var b strings.Builder
	b.WriteString("**Richest players**\n")
	for pos, p := range players {
		fmt.Fprintf(&b, "%s %s: %d coins\n", medal(pos), p.Username, p.Balance+p.Bank)
	}
	Respond(s, i, b.String())
}

// HandleDailyTop shows today's biggest game winners and losers.
func (h *RankingHandler) HandleDailyTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	winners, err := h.ranking.GetDailyWinners(ctx, 5)
	if err != nil {
		RespondError(s, i, "Could not load today's rankings.")
		return
	}
	losers, err := h.ranking.GetDailyLosers(ctx, 5)
	if err != nil {
		RespondError(s, i, "Could not load today's rankings.")
		return
	}

	if len(winners) == 0 && len(losers) == 0 {
		Respond(s, i, "Nobody has gambled today.")
		return
	}

	var b strings.Builder
	if len(winners) > 0 {
		b.WriteString("**Today's winners**\n")
		for pos, r := range winners {
			fmt.Fprintf(&b, "%s %s: +%d\n", medal(pos), r.Username, r.NetProfit)
		}
	}
	if len(losers) > 0 {
		b.WriteString("\n**Today's losers**\n")
		for pos, r := range losers {
			fmt.Fprintf(&b, "%s %s: %d\n", medal(pos), r.Username, r.NetProfit)
		}
	}
	Respond(s, i, b.String())
}
