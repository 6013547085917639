package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document is a rendered report ready for delivery.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Assembler renders analyses into a deliverable document.
type Assembler interface {
	Assemble(analyses []Analysis, generatedAt time.Time) (*Document, error)
}

// MarkdownAssembler renders the vetting report as markdown: a cover,
// then one section per member.
type MarkdownAssembler struct {
	scorer Scorer
}

var _ Assembler = &MarkdownAssembler{}

// NewMarkdownAssembler creates an assembler. scorer may be nil, which
// omits the per-member assessment section.
func NewMarkdownAssembler(scorer Scorer) *MarkdownAssembler {
	return &MarkdownAssembler{scorer: scorer}
}

// Assemble renders the document and names it after the generation time.
func (m *MarkdownAssembler) Assemble(analyses []Analysis, generatedAt time.Time) (*Document, error) {
	if len(analyses) == 0 {
		return nil, errors.New("no analyses to assemble")
	}

	var b strings.Builder
	b.WriteString("# MEMBER VETTING REPORT\n\n")
	fmt.Fprintf(&b, "Analysis of %d Candidate(s)\n\n", len(analyses))
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format("January 02, 2006 at 03:04 PM"))
	b.WriteString("THC Edge Faction Analysis System\n")

	for i := range analyses {
		b.WriteString("\n---\n\n")
		m.writeMember(&b, &analyses[i])
	}

	return &Document{
		Filename:    fmt.Sprintf("member_vetting_report_%d.md", generatedAt.Unix()),
		ContentType: "text/markdown",
		Content:     []byte(b.String()),
	}, nil
}

func (m *MarkdownAssembler) writeMember(b *strings.Builder, a *Analysis) {
	fmt.Fprintf(b, "## %s [ID: %s]\n\n", a.Name, a.PlayerID)
	fmt.Fprintf(b, "Level %d | Status: %s\n\n", a.Level, a.Status)

	b.WriteString("### BASIC INFO\n\n")
	b.WriteString("| | |\n|---|---|\n")
	days := a.Activity.TimeMinutes / 1440
	hours := (a.Activity.TimeMinutes % 1440) / 60
	fmt.Fprintf(b, "| Time Played | %d days, %d hours |\n", days, hours)
	fmt.Fprintf(b, "| Current Streak | %d days |\n", a.Activity.CurrentStreak)
	fmt.Fprintf(b, "| Best Streak | %d days |\n\n", a.Activity.BestStreak)

	b.WriteString("### COMBAT PERFORMANCE\n\n")
	b.WriteString("| Metric | Value | Assessment |\n|---|---|---|\n")
	fmt.Fprintf(b, "| Attacks | %d total | %.1f%% win rate |\n", a.Attacks.Total(), a.Attacks.WinRate())
	fmt.Fprintf(b, "| Defends | %d total | %.1f%% win rate |\n", a.Defends.Total(), a.Defends.WinRate())
	accuracy := a.Hits.Accuracy()
	fmt.Fprintf(b, "| Hit Accuracy | %.1f%% | %s |\n", accuracy, accuracyAssessment(accuracy))
	fmt.Fprintf(b, "| ELO Rating | %d | %s |\n", a.Elo, eloAssessment(a.Elo))
	fmt.Fprintf(b, "| Best Kill Streak | %d | %s |\n", a.BestKillStreak, streakAssessment(a.BestKillStreak))
	fmt.Fprintf(b, "| One-Hit Kills | %d | Power indicator |\n\n", a.Hits.OneHitKills)

	b.WriteString("### TRAINING COMMITMENT\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(b, "| Total Drugs Used | %s |\n", comma(int64(a.Drugs.Total)))
	fmt.Fprintf(b, "| Xanax (Defense) | %s |\n", comma(int64(a.Drugs.Xanax)))
	fmt.Fprintf(b, "| Ecstasy (Combat) | %s |\n", comma(int64(a.Drugs.Ecstasy)))
	fmt.Fprintf(b, "| Rehabilitations | %s ($%s) |\n", comma(int64(a.Drugs.Rehabs)), comma(a.Drugs.RehabFees))
	fmt.Fprintf(b, "| Overdoses | %d |\n", a.Drugs.Overdoses)

	if m.scorer != nil {
		b.WriteString("\n### DETAILED ASSESSMENT\n\n")
		b.WriteString(m.scorer.Score(a))
		b.WriteString("\n")
	}
}

func accuracyAssessment(accuracy float64) string {
	switch {
	case accuracy >= 50:
		return "Excellent"
	case accuracy >= 40:
		return "Good"
	case accuracy >= 30:
		return "Average"
	default:
		return "Developing"
	}
}

func eloAssessment(elo int) string {
	switch {
	case elo >= 2000:
		return "Elite"
	case elo >= 1500:
		return "Strong"
	case elo >= 1200:
		return "Average"
	default:
		return "Developing"
	}
}

func streakAssessment(streak int) string {
	switch {
	case streak >= 50:
		return "Exceptional"
	case streak >= 20:
		return "Very Good"
	case streak >= 10:
		return "Good"
	default:
		return "Standard"
	}
}

// comma renders n with thousands separators.
func comma(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
