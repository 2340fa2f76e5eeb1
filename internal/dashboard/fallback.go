package dashboard

import (
	"fmt"

	"painel/internal/core"
	"painel/internal/parser"
)

const fallbackWeek = "12/01 a 18/01"

type fallbackClient struct {
	name  string
	value float64
}

// fallbackCounts are scheduled/realized pairs keyed by catalog label.
type fallbackCounts map[string][2]int

// Fallback returns the built-in snapshot displayed until the first fetch
// succeeds. Each call returns a fresh copy. Items are built the way the
// parser builds them: IDs carry the consultant and week, totals are the item
// sums and activities follow the default catalog.
func Fallback() core.DashboardData {
	layout := parser.DefaultLayout()
	return core.DashboardData{
		WeekRange: fallbackWeek,
		Stats: core.TeamStats{
			TotalContractsValue: 21012.00,
			MeetingsScheduled:   13,
			MeetingsRealized:    10,
			ProposalsSent:       7,
		},
		Team: []core.Consultant{
			fallbackConsultant(layout, layout.Consultants[0], 4, []fallbackClient{
				{"João Evaristo", 4500.00},
				{"Luna", 2200.00},
				{"Versatille", 3262.00},
				{"Das Flores", 1300.00},
				{"Modelo III", 500.00},
				{"Flor da Suissa", 1000.00},
				{"Fidellis Reginato", 1520.00},
				{"Marlo", 600.00},
			}, fallbackCounts{
				"BOT":                    {2, 2},
				"Prospec. Ativa":         {3, 3},
				"Síndicos Profissionais": {2, 2},
			}),
			fallbackConsultant(layout, layout.Consultants[1], 3, []fallbackClient{
				{"Antonio Gusi", 1500.00},
				{"Mediterrâneo", 700.00},
				{"Green Village", 530.00},
				{"Los Angeles", 1500.00},
				{"Jardim dos Pinhais", 500.00},
				{"San Lorenzo", 2000.00},
			}, fallbackCounts{
				"Discador":               {2, 0},
				"BOT":                    {1, 1},
				"MKT":                    {1, 1},
				"Prospec. Ativa":         {3, 1},
				"Síndicos Profissionais": {1, 1},
			}),
		},
	}
}

func fallbackConsultant(l parser.Layout, c parser.ConsultantConfig, proposals int, clients []fallbackClient, counts fallbackCounts) core.Consultant {
	out := core.Consultant{
		ID:            c.ID,
		Name:          c.Name,
		Role:          c.Role,
		PhotoURL:      c.PhotoURL,
		ProposalsSent: proposals,
		Financials:    make([]core.FinancialItem, 0, len(clients)),
		Activities:    make([]core.ActivityItem, 0, len(l.Activities)),
	}
	for i, cl := range clients {
		out.Financials = append(out.Financials, core.FinancialItem{
			ID:    fmt.Sprintf("fin-%s-%d-%s", c.ID, i, fallbackWeek),
			Name:  cl.name,
			Value: cl.value,
		})
		out.TotalFinancial += cl.value
	}
	for i, a := range l.Activities {
		label := a.Label
		if a.DisplayAs != "" {
			label = a.DisplayAs
		}
		n := counts[a.Label]
		out.Activities = append(out.Activities, core.ActivityItem{
			ID:        fmt.Sprintf("act-%s-%d-%s", c.ID, i, fallbackWeek),
			Label:     label,
			Scheduled: n[0],
			Realized:  n[1],
		})
	}
	return out
}
