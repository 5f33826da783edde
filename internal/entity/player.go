package entity

// Stats is the per-player score sheet updated after every finished match.
type Stats struct {
	Games  int `json:"games"`
	Wins   int `json:"win"`
	Losses int `json:"lose"`
	Draws  int `json:"draw"`
}

type Player struct {
	ID    string `json:"id"`
	Stats Stats  `json:"stats"`
}

// StatsSnapshot is the slice of the stats the matchmaking fairness
// predicate compares.
type StatsSnapshot struct {
	Games int
	Wins  int
}

func (that *Player) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Games: that.Stats.Games,
		Wins:  that.Stats.Wins,
	}
}
