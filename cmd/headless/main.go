package main

import (
	"flag"
	"fmt"
	"time"

	"botmarket/engine"
	"botmarket/match"
)

func main() {
	ticks := flag.Int("ticks", 300, "number of ticks to run")
	tickMs := flag.Int("tick-ms", 50, "tick interval in milliseconds")
	annWindow := flag.Int("ann-window", 30, "announcement visibility window in ticks")
	initialPrice := flag.Float64("initial-price", 100, "starting price")
	k := flag.Float64("k", 0.25, "price sensitivity")
	liquidity := flag.Float64("liquidity", 2000, "virtual liquidity depth")
	lambda := flag.Float64("lambda", 0.03, "per-tick price limit")
	sigma := flag.Float64("sigma-noise", 0.004, "lognormal noise std (0 disables)")
	fee := flag.Float64("fee", 0.02, "fixed fee per order")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for follower sampling")
	top := flag.Int("top", 10, "leaderboard size")
	sentimentURL := flag.String("sentiment-url", "", "sentiment service base URL (empty disables the announcer bot)")
	flag.Parse()

	cfg := match.Config{
		TickInterval:   time.Duration(*tickMs) * time.Millisecond,
		AnnounceWindow: *annWindow,
		Engine: engine.Config{
			K:          *k,
			L:          *liquidity,
			Lambda:     *lambda,
			SigmaNoise: *sigma,
			FeeTrade:   *fee,
			PriceFloor: 0.01,
		},
		InitialPrice:    *initialPrice,
		LeaderboardSize: *top,
		Seed:            *seed,
		DefaultBots:     roster(*sentimentURL),
	}

	m := match.NewMatch(cfg)
	m.Start()

	done := 0
	for summary := range m.Summaries() {
		if summary.Tick%10 == 0 {
			fmt.Printf("[tick %d] P=%.2f net=%.1f buy=%.1f sell=%.1f anns=%d\n",
				summary.Tick, summary.Price, summary.NetFlow, summary.BuyVolume, summary.SellVolume, len(summary.Announcements))
		}
		done++
		if done >= *ticks {
			break
		}
	}
	m.Pause()

	fmt.Println("leaderboard:")
	for rank, entry := range m.Leaderboard(*top) {
		fmt.Printf("%2d. %-10s equity=%.2f pos=%.1f realized=%.2f fees=%.2f volume=%.1f\n",
			rank+1, entry.BotID, entry.Equity, entry.Position, entry.Realized, entry.Fees, entry.Volume)
	}
}

func roster(sentimentURL string) []match.BotSeed {
	seeds := match.DefaultSeeds(sentimentURL)
	if sentimentURL == "" {
		// drop the announcer bot rather than hammer a dead endpoint
		kept := seeds[:0]
		for _, s := range seeds {
			if s.StrategyKind != "ai_announcer" {
				kept = append(kept, s)
			}
		}
		seeds = kept
	}
	return seeds
}
