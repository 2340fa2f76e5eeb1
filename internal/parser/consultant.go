package parser

import (
	"fmt"
	"net/url"
	"strings"

	"painel/internal/core"
)

const avatarURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// ExtractConsultant rebuilds one consultant's week from the block whose marker
// sits at marker. Missing or malformed cells read as zero, so the result is
// always a complete Consultant.
func ExtractConsultant(g Grid, marker int, weekRange string, c ConsultantConfig, l *Layout) core.Consultant {
	out := core.Consultant{
		ID:            c.ID,
		Name:          c.Name,
		Role:          c.Role,
		PhotoURL:      photoURL(c),
		Financials:    []core.FinancialItem{},
		ProposalsSent: core.ProposalsNotSourced,
	}

	if header, ok := findFinancialHeader(g, marker, c.Column, l); ok {
		for r := header + 1; r < marker; r++ {
			name := strings.TrimSpace(g.Cell(r, c.Column))
			if name == "" {
				continue
			}
			item := core.FinancialItem{
				ID:    fmt.Sprintf("fin-%s-%d-%s", c.ID, r, weekRange),
				Name:  name,
				Value: core.ParseCurrency(g.Cell(r, c.Column+1)),
			}
			if l.TrackSold {
				sold := isSoldMarker(g.Cell(r, c.Column+2), l.SoldTokens)
				item.Sold = &sold
			}
			out.Financials = append(out.Financials, item)

			if item.IsSold() {
				out.TotalSold += item.Value
			} else {
				out.TotalFinancial += item.Value
			}
		}
	}

	out.Activities = extractActivities(g, marker, weekRange, c, l)
	return out
}

// findFinancialHeader walks up from the marker looking for the financial
// table header, giving up after the layout's lookback. Surrounding spaces in
// the cell are ignored; the text itself must match exactly.
func findFinancialHeader(g Grid, marker, col int, l *Layout) (int, bool) {
	header := strings.TrimSpace(l.FinancialHeader)
	for r := marker - 1; r >= 0 && marker-r <= l.FinancialLookback; r-- {
		if strings.TrimSpace(g.Cell(r, col)) == header {
			return r, true
		}
	}
	return -1, false
}

func extractActivities(g Grid, marker int, weekRange string, c ConsultantConfig, l *Layout) []core.ActivityItem {
	items := make([]core.ActivityItem, 0, len(l.Activities))
	for idx, a := range l.Activities {
		var scheduled, realized int
		switch a.Kind {
		case ActivitySingle:
			realized = countAt(g, marker, c.Column, a.Label, l)
		default:
			scheduled = countAt(g, marker, c.Column, a.Label+" "+l.ScheduledSuffix, l)
			realized = countAt(g, marker, c.Column, a.Label+" "+l.RealizedSuffix, l)
		}
		items = append(items, core.ActivityItem{
			ID:        fmt.Sprintf("act-%s-%d-%s", c.ID, idx, weekRange),
			Label:     a.displayLabel(),
			Scheduled: scheduled,
			Realized:  realized,
		})
	}
	return items
}

// countAt reads the counter next to the first row in the activity window
// whose label cell contains label.
func countAt(g Grid, marker, col int, label string, l *Layout) int {
	row, ok := g.findRowContaining(marker, l.ActivityWindow, col, label)
	if !ok {
		return 0
	}
	return core.ParseCount(g.Cell(row, col+1))
}

func isSoldMarker(cell string, tokens []string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	for _, t := range tokens {
		if strings.EqualFold(cell, t) {
			return true
		}
	}
	return false
}

func photoURL(c ConsultantConfig) string {
	if c.PhotoURL != "" {
		return c.PhotoURL
	}
	return avatarURL + url.QueryEscape(c.Name)
}
