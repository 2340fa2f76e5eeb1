package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ActivityKind tells the extractor how an activity is laid out in the sheet.
type ActivityKind string

const (
	// ActivityPaired activities have "<label> Agendado" and "<label> Realizado" rows.
	ActivityPaired ActivityKind = "paired"
	// ActivitySingle activities have a single "<label>" row holding the realized count.
	ActivitySingle ActivityKind = "single"
)

type (
	// ConsultantConfig binds a consultant identity to the sheet column where
	// their block starts. Name cells live at Column, values at Column+1 and the
	// sold flag at Column+2.
	ConsultantConfig struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Role     string `yaml:"role"`
		PhotoURL string `yaml:"photo_url"`
		Column   int    `yaml:"column"`
	}

	// ActivityLabel is one entry of the activity catalog. DisplayAs renames
	// the row label on the dashboard.
	ActivityLabel struct {
		Label     string       `yaml:"label"`
		Kind      ActivityKind `yaml:"kind"`
		DisplayAs string       `yaml:"display_as"`
	}

	// TeamLabels are the aggregate row labels searched in the marker column.
	TeamLabels struct {
		ContractsValue    string `yaml:"contracts_value"`
		MeetingsScheduled string `yaml:"meetings_scheduled"`
		MeetingsRealized  string `yaml:"meetings_realized"`
		ProposalsSent     string `yaml:"proposals_sent"`
	}

	// Layout describes where things live in the weekly spreadsheet. The sheet
	// is only locally well-formed, so every scan is bounded by a window.
	Layout struct {
		MarkerColumn     int    `yaml:"marker_column"`
		MarkerPhrase     string `yaml:"marker_phrase"`
		WeekSeparator    string `yaml:"week_separator"`
		DefaultWeekLabel string `yaml:"default_week_label"`

		FinancialHeader   string   `yaml:"financial_header"`
		FinancialLookback int      `yaml:"financial_lookback"`
		TrackSold         bool     `yaml:"track_sold"`
		SoldTokens        []string `yaml:"sold_tokens"`

		ActivityWindow  int             `yaml:"activity_window"`
		ScheduledSuffix string          `yaml:"scheduled_suffix"`
		RealizedSuffix  string          `yaml:"realized_suffix"`
		Activities      []ActivityLabel `yaml:"activities"`

		TeamWindow int        `yaml:"team_window"`
		TeamLabels TeamLabels `yaml:"team_labels"`

		Consultants []ConsultantConfig `yaml:"consultants"`
	}
)

// DefaultLayout returns the layout of the team's weekly report sheet.
func DefaultLayout() Layout {
	return Layout{
		MarkerColumn:     1,
		MarkerPhrase:     "Atividades Semanais",
		WeekSeparator:    "-",
		DefaultWeekLabel: "Semana Indefinida",

		FinancialHeader:   "Condomínio/Síndico",
		FinancialLookback: 30,
		TrackSold:         true,
		SoldTokens:        []string{"TRUE", "VERDADEIRO"},

		ActivityWindow:  20,
		ScheduledSuffix: "Agendado",
		RealizedSuffix:  "Realizado",
		Activities: []ActivityLabel{
			{Label: "Contratos Fechados", Kind: ActivitySingle},
			{Label: "Discador", Kind: ActivityPaired},
			{Label: "BOT", Kind: ActivityPaired},
			{Label: "MKT", Kind: ActivityPaired},
			{Label: "Prospec. Ativa", Kind: ActivityPaired, DisplayAs: "Prospeção"},
			{Label: "Síndicos Profissionais", Kind: ActivityPaired},
			{Label: "Busca Externa", Kind: ActivityPaired},
			{Label: "Parceria Fechada", Kind: ActivitySingle},
		},

		TeamWindow: 40,
		TeamLabels: TeamLabels{
			ContractsValue:    "TOTAL DE VALOR CONTRATOS",
			MeetingsScheduled: "TOTAL DE REUNIÕES AGENDADAS",
			MeetingsRealized:  "TOTAL DE REUNIÕES REALIZADAS",
			ProposalsSent:     "TOTAL DE PROPOSTAS ENVIADAS",
		},

		Consultants: []ConsultantConfig{
			{ID: "amanda", Name: "Amanda", Role: "Consultora", PhotoURL: "/static/amanda.svg", Column: 1},
			{ID: "lucas", Name: "Lucas", Role: "Consultor", PhotoURL: "/static/lucas.svg", Column: 5},
		},
	}
}

// Validate returns an error listing every problem found in the layout.
func (l Layout) Validate() error {
	var problems []string

	if l.MarkerColumn < 0 {
		problems = append(problems, fmt.Sprintf("invalid marker column %d: must be >= 0", l.MarkerColumn))
	}
	if strings.TrimSpace(l.MarkerPhrase) == "" {
		problems = append(problems, "marker phrase cannot be empty")
	}
	if l.WeekSeparator == "" {
		problems = append(problems, "week separator cannot be empty")
	}
	if l.FinancialHeader == "" {
		problems = append(problems, "financial header cannot be empty")
	}
	for _, w := range []struct {
		name string
		v    int
	}{
		{"financial lookback", l.FinancialLookback},
		{"activity window", l.ActivityWindow},
		{"team window", l.TeamWindow},
	} {
		if w.v < 1 {
			problems = append(problems, fmt.Sprintf("invalid %s %d: must be at least 1", w.name, w.v))
		}
	}

	if len(l.Consultants) == 0 {
		problems = append(problems, "at least one consultant must be configured")
	}
	seen := map[string]bool{}
	for i, c := range l.Consultants {
		id := strings.TrimSpace(c.ID)
		switch {
		case id == "":
			problems = append(problems, fmt.Sprintf("consultant #%d: id cannot be empty", i))
		case seen[id]:
			problems = append(problems, fmt.Sprintf("consultant #%d: duplicate id %q", i, id))
		}
		seen[id] = true
		if c.Column < 0 {
			problems = append(problems, fmt.Sprintf("consultant %q: invalid column %d", id, c.Column))
		}
	}

	for i, a := range l.Activities {
		if strings.TrimSpace(a.Label) == "" {
			problems = append(problems, fmt.Sprintf("activity #%d: label cannot be empty", i))
		}
		if a.Kind != ActivityPaired && a.Kind != ActivitySingle {
			problems = append(problems, fmt.Sprintf("activity %q: invalid kind %q", a.Label, a.Kind))
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid layout:\n- " + strings.Join(problems, "\n- "))
	}
	return nil
}

// displayLabel is the label shown for an activity once matched.
func (a ActivityLabel) displayLabel() string {
	if a.DisplayAs != "" {
		return a.DisplayAs
	}
	return a.Label
}
