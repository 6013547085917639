// Package report defines the condensed per-member analysis produced by
// game-API lookups and renders the vetting document delivered to the
// user.
package report

// Analysis is the condensed result of one member lookup. Jobs persist a
// list of these as their results payload.
type Analysis struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Age      int    `json:"age"`
	Status   string `json:"status"`

	Attacks        Tally  `json:"attacks"`
	Defends        Tally  `json:"defends"`
	Hits           Hits   `json:"hits"`
	Damage         Damage `json:"damage"`
	Elo            int    `json:"elo"`
	BestKillStreak int    `json:"best_killstreak"`

	Training Training `json:"training"`
	Activity Activity `json:"activity"`
	Drugs    Drugs    `json:"drugs"`
}

// Tally counts won/lost/stalemate outcomes for attacks or defends.
type Tally struct {
	Won       int `json:"won"`
	Lost      int `json:"lost"`
	Stalemate int `json:"stalemate"`
}

// Total sums all outcomes.
func (t Tally) Total() int {
	return t.Won + t.Lost + t.Stalemate
}

// WinRate is the won share in percent, 0 for an empty tally.
func (t Tally) WinRate() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.Won) / float64(total) * 100
}

// Hits counts landed and missed attacks.
type Hits struct {
	Success     int `json:"success"`
	Miss        int `json:"miss"`
	OneHitKills int `json:"one_hit_kills"`
}

// Accuracy is the success share in percent, 0 when nothing was thrown.
func (h Hits) Accuracy() float64 {
	total := h.Success + h.Miss
	if total == 0 {
		return 0
	}
	return float64(h.Success) / float64(total) * 100
}

// Damage totals.
type Damage struct {
	Total int64 `json:"total"`
	Best  int64 `json:"best"`
}

// Training holds gym train counts per stat.
type Training struct {
	Strength  int `json:"strength"`
	Defence   int `json:"defence"`
	Speed     int `json:"speed"`
	Dexterity int `json:"dexterity"`
}

// Activity holds play time and login streaks. TimeMinutes is total game
// time in minutes, the unit the API reports.
type Activity struct {
	TimeMinutes   int64 `json:"time_minutes"`
	CurrentStreak int   `json:"current_streak"`
	BestStreak    int   `json:"best_streak"`
}

// Drugs holds the consumption counters relevant to training assessment.
type Drugs struct {
	Xanax     int   `json:"xanax"`
	Ecstasy   int   `json:"ecstasy"`
	Total     int   `json:"total"`
	Overdoses int   `json:"overdoses"`
	Rehabs    int   `json:"rehabs"`
	RehabFees int64 `json:"rehab_fees"`
}

// Scorer produces the free-text assessment for one member. The default
// build ships without one; the assessment section is omitted when no
// scorer is injected.
type Scorer interface {
	Score(a *Analysis) string
}
