package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() Analysis {
	return Analysis{
		PlayerID:       "111",
		Name:           "DuckMan",
		Level:          42,
		Age:            1337,
		Status:         "Okay",
		Attacks:        Tally{Won: 1200, Lost: 250, Stalemate: 50},
		Defends:        Tally{Won: 90, Lost: 105, Stalemate: 5},
		Hits:           Hits{Success: 1400, Miss: 600, OneHitKills: 112},
		Damage:         Damage{Total: 5400000, Best: 9800},
		Elo:            1643,
		BestKillStreak: 27,
		Training:       Training{Strength: 900, Defence: 850, Speed: 700, Dexterity: 650},
		Activity:       Activity{TimeMinutes: 738000, CurrentStreak: 180, BestStreak: 365},
		Drugs:          Drugs{Xanax: 480, Ecstasy: 12, Total: 612, Overdoses: 3, Rehabs: 24, RehabFees: 85000000},
	}
}

type staticScorer struct {
	text string
}

func (s *staticScorer) Score(_ *Analysis) string {
	return s.text
}

func TestAssembleDocument(t *testing.T) {
	assembler := NewMarkdownAssembler(nil)
	generatedAt := time.Date(2026, time.August, 22, 15, 4, 0, 0, time.UTC)

	doc, err := assembler.Assemble([]Analysis{sampleAnalysis()}, generatedAt)
	require.NoError(t, err)

	assert.Equal(t, "member_vetting_report_1787411040.md", doc.Filename)
	assert.Equal(t, "text/markdown", doc.ContentType)

	content := string(doc.Content)
	assert.Contains(t, content, "# MEMBER VETTING REPORT")
	assert.Contains(t, content, "Analysis of 1 Candidate(s)")
	assert.Contains(t, content, "Generated: August 22, 2026 at 03:04 PM")
	assert.Contains(t, content, "## DuckMan [ID: 111]")
	assert.Contains(t, content, "Level 42 | Status: Okay")

	// 738000 minutes is 512 days and 12 hours.
	assert.Contains(t, content, "| Time Played | 512 days, 12 hours |")
	assert.Contains(t, content, "| Current Streak | 180 days |")
	assert.Contains(t, content, "| Best Streak | 365 days |")

	assert.Contains(t, content, "| Attacks | 1500 total | 80.0% win rate |")
	assert.Contains(t, content, "| Defends | 200 total | 45.0% win rate |")
	assert.Contains(t, content, "| Hit Accuracy | 70.0% | Excellent |")
	assert.Contains(t, content, "| ELO Rating | 1643 | Strong |")
	assert.Contains(t, content, "| Best Kill Streak | 27 | Very Good |")
	assert.Contains(t, content, "| One-Hit Kills | 112 | Power indicator |")

	assert.Contains(t, content, "| Total Drugs Used | 612 |")
	assert.Contains(t, content, "| Xanax (Defense) | 480 |")
	assert.Contains(t, content, "| Ecstasy (Combat) | 12 |")
	assert.Contains(t, content, "| Rehabilitations | 24 ($85,000,000) |")
	assert.Contains(t, content, "| Overdoses | 3 |")

	assert.NotContains(t, content, "DETAILED ASSESSMENT")
}

func TestAssembleMultipleMembers(t *testing.T) {
	first := sampleAnalysis()
	second := sampleAnalysis()
	second.PlayerID = "222"
	second.Name = "Hawkeye"

	doc, err := NewMarkdownAssembler(nil).Assemble([]Analysis{first, second}, time.Now())
	require.NoError(t, err)

	content := string(doc.Content)
	assert.Contains(t, content, "Analysis of 2 Candidate(s)")
	assert.Contains(t, content, "## DuckMan [ID: 111]")
	assert.Contains(t, content, "## Hawkeye [ID: 222]")
}

func TestAssembleWithScorer(t *testing.T) {
	assembler := NewMarkdownAssembler(&staticScorer{text: "This member is a veteran combatant."})

	doc, err := assembler.Assemble([]Analysis{sampleAnalysis()}, time.Now())
	require.NoError(t, err)

	content := string(doc.Content)
	assert.Contains(t, content, "### DETAILED ASSESSMENT")
	assert.Contains(t, content, "This member is a veteran combatant.")
}

func TestAssembleEmpty(t *testing.T) {
	_, err := NewMarkdownAssembler(nil).Assemble(nil, time.Now())
	assert.Error(t, err)
}

func TestWinRateAndAccuracy(t *testing.T) {
	assert.Zero(t, Tally{}.WinRate())
	assert.InDelta(t, 80.0, Tally{Won: 1200, Lost: 250, Stalemate: 50}.WinRate(), 0.001)
	assert.Equal(t, 1500, Tally{Won: 1200, Lost: 250, Stalemate: 50}.Total())

	assert.Zero(t, Hits{}.Accuracy())
	assert.InDelta(t, 70.0, Hits{Success: 1400, Miss: 600}.Accuracy(), 0.001)
}

func TestAssessmentBands(t *testing.T) {
	assert.Equal(t, "Excellent", accuracyAssessment(50))
	assert.Equal(t, "Good", accuracyAssessment(42.5))
	assert.Equal(t, "Average", accuracyAssessment(31))
	assert.Equal(t, "Developing", accuracyAssessment(12))

	assert.Equal(t, "Elite", eloAssessment(2400))
	assert.Equal(t, "Strong", eloAssessment(1500))
	assert.Equal(t, "Average", eloAssessment(1250))
	assert.Equal(t, "Developing", eloAssessment(900))

	assert.Equal(t, "Exceptional", streakAssessment(61))
	assert.Equal(t, "Very Good", streakAssessment(20))
	assert.Equal(t, "Good", streakAssessment(11))
	assert.Equal(t, "Standard", streakAssessment(2))
}

func TestComma(t *testing.T) {
	assert.Equal(t, "0", comma(0))
	assert.Equal(t, "999", comma(999))
	assert.Equal(t, "1,000", comma(1000))
	assert.Equal(t, "85,000,000", comma(85000000))
	assert.Equal(t, "1,234,567,890", comma(1234567890))
}
