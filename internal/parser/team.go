package parser

import "painel/internal/core"

// ExtractTeamStats reads the team aggregates from the labeled summary rows
// below the marker. Each statistic is independent: a missing label only
// zeroes that one figure.
func ExtractTeamStats(g Grid, marker int, l *Layout) core.TeamStats {
	return core.TeamStats{
		TotalContractsValue: teamValue(g, marker, l.TeamLabels.ContractsValue, l),
		MeetingsScheduled:   int(teamValue(g, marker, l.TeamLabels.MeetingsScheduled, l)),
		MeetingsRealized:    int(teamValue(g, marker, l.TeamLabels.MeetingsRealized, l)),
		ProposalsSent:       int(teamValue(g, marker, l.TeamLabels.ProposalsSent, l)),
	}
}

// teamValue parses the cell next to the label as money when it carries the
// currency symbol, as a counter otherwise.
func teamValue(g Grid, marker int, label string, l *Layout) float64 {
	if label == "" {
		return 0
	}
	row, ok := g.findRowContaining(marker, l.TeamWindow, l.MarkerColumn, label)
	if !ok {
		return 0
	}
	cell := g.Cell(row, l.MarkerColumn+1)
	if core.HasCurrencySymbol(cell) {
		return core.ParseCurrency(cell)
	}
	return float64(core.ParseCount(cell))
}
