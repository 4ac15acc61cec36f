package match

import "botmarket/bots"

// DefaultSeeds is the roster dropped into a fresh match: two trend
// followers, a mean reverter, a random baseline, and the sentiment
// announcer pointed at the given service URL.
func DefaultSeeds(sentimentURL string) []BotSeed {
	return []BotSeed{
		{BotID: "trend-1", StrategyKind: "sma", MaxPosition: 20, Limits: bots.Limits{MaxPerTick: 3, Cooldown: 1}},
		{BotID: "trend-2", StrategyKind: "sma", Params: bots.StrategyParams{Fast: 10, Slow: 40}, MaxPosition: 20, Limits: bots.Limits{MaxPerTick: 2, Cooldown: 1}},
		{BotID: "revert-1", StrategyKind: "revert", MaxPosition: 20, Limits: bots.Limits{MaxPerTick: 2, Cooldown: 1}},
		{BotID: "rand-1", StrategyKind: "random", MaxPosition: 10, Limits: bots.Limits{MaxPerTick: 1, Cooldown: 1}},
		{BotID: "ai-1", StrategyKind: "ai_announcer", Params: bots.StrategyParams{Base: sentimentURL, ThinkEvery: 6, SpeakEvery: 12}, MaxPosition: 5, Limits: bots.Limits{MaxPerTick: 1, Cooldown: 1}},
	}
}
