package torn

import "github.com/thc-edge/vetbot/internal/report"

// Wire types for the personalstats,basic selections. Only the fields
// the analysis consumes are decoded.

type profileResponse struct {
	Profile       profile       `json:"profile"`
	PersonalStats personalStats `json:"personalstats"`
}

type profile struct {
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Age    int    `json:"age"`
	Status status `json:"status"`
}

type status struct {
	State       string `json:"state"`
	Description string `json:"description"`
}

type personalStats struct {
	Attacking attacking `json:"attacking"`
	Training  training  `json:"training"`
	Other     other     `json:"other"`
	Drugs     drugs     `json:"drugs"`
}

type attacking struct {
	Attacks    tally      `json:"attacks"`
	Defends    tally      `json:"defends"`
	Hits       hits       `json:"hits"`
	Damage     damage     `json:"damage"`
	Elo        int        `json:"elo"`
	Killstreak killstreak `json:"killstreak"`
}

type tally struct {
	Won       int `json:"won"`
	Lost      int `json:"lost"`
	Stalemate int `json:"stalemate"`
}

type hits struct {
	Success     int `json:"success"`
	Miss        int `json:"miss"`
	OneHitKills int `json:"one_hit_kills"`
}

type damage struct {
	Total int64 `json:"total"`
	Best  int64 `json:"best"`
}

type killstreak struct {
	Best int `json:"best"`
}

type training struct {
	Strength  int `json:"strength"`
	Defence   int `json:"defence"`
	Speed     int `json:"speed"`
	Dexterity int `json:"dexterity"`
}

type other struct {
	Activity activity `json:"activity"`
}

type activity struct {
	Time   int64  `json:"time"`
	Streak streak `json:"streak"`
}

type streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

type drugs struct {
	Xanax           int             `json:"xanax"`
	Ecstasy         int             `json:"ecstasy"`
	Total           int             `json:"total"`
	Overdoses       int             `json:"overdoses"`
	Rehabilitations rehabilitations `json:"rehabilitations"`
}

type rehabilitations struct {
	Amount int   `json:"amount"`
	Fees   int64 `json:"fees"`
}

type factionMembersResponse struct {
	Members []factionMember `json:"members"`
}

type factionMember struct {
	ID int64 `json:"id"`
}

// newAnalysis condenses a profile response into the report's shape.
func newAnalysis(memberID string, resp *profileResponse) *report.Analysis {
	state := resp.Profile.Status.State
	if state == "" {
		state = "N/A"
	}
	statusText := state
	if resp.Profile.Status.Description != "" {
		statusText += " - " + resp.Profile.Status.Description
	}

	ps := resp.PersonalStats
	return &report.Analysis{
		PlayerID: memberID,
		Name:     resp.Profile.Name,
		Level:    resp.Profile.Level,
		Age:      resp.Profile.Age,
		Status:   statusText,

		Attacks: report.Tally{
			Won:       ps.Attacking.Attacks.Won,
			Lost:      ps.Attacking.Attacks.Lost,
			Stalemate: ps.Attacking.Attacks.Stalemate,
		},
		Defends: report.Tally{
			Won:       ps.Attacking.Defends.Won,
			Lost:      ps.Attacking.Defends.Lost,
			Stalemate: ps.Attacking.Defends.Stalemate,
		},
		Hits: report.Hits{
			Success:     ps.Attacking.Hits.Success,
			Miss:        ps.Attacking.Hits.Miss,
			OneHitKills: ps.Attacking.Hits.OneHitKills,
		},
		Damage: report.Damage{
			Total: ps.Attacking.Damage.Total,
			Best:  ps.Attacking.Damage.Best,
		},
		Elo:            ps.Attacking.Elo,
		BestKillStreak: ps.Attacking.Killstreak.Best,

		Training: report.Training{
			Strength:  ps.Training.Strength,
			Defence:   ps.Training.Defence,
			Speed:     ps.Training.Speed,
			Dexterity: ps.Training.Dexterity,
		},
		Activity: report.Activity{
			TimeMinutes:   ps.Other.Activity.Time,
			CurrentStreak: ps.Other.Activity.Streak.Current,
			BestStreak:    ps.Other.Activity.Streak.Best,
		},
		Drugs: report.Drugs{
			Xanax:     ps.Drugs.Xanax,
			Ecstasy:   ps.Drugs.Ecstasy,
			Total:     ps.Drugs.Total,
			Overdoses: ps.Drugs.Overdoses,
			Rehabs:    ps.Drugs.Rehabilitations.Amount,
			RehabFees: ps.Drugs.Rehabilitations.Fees,
		},
	}
}
