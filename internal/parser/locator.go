package parser

import (
	"strings"

	"golang.org/x/text/cases"
)

// LocateBlocks returns, top to bottom, the rows whose marker-column cell
// contains the marker phrase, ignoring case.
func LocateBlocks(g Grid, l *Layout) []int {
	fold := cases.Fold()
	phrase := fold.String(l.MarkerPhrase)

	var markers []int
	for r := range g {
		cell := g.Cell(r, l.MarkerColumn)
		if cell == "" {
			continue
		}
		if strings.Contains(fold.String(cell), phrase) {
			markers = append(markers, r)
		}
	}
	return markers
}

// WeekLabel extracts the week range from a marker header such as
// "Atividades Semanais - 12/01 a 18/01". The label is the segment after the
// first separator; headers without one get the layout's default label.
func WeekLabel(header string, l *Layout) string {
	parts := strings.Split(header, l.WeekSeparator)
	if len(parts) > 1 {
		if label := strings.TrimSpace(parts[1]); label != "" {
			return label
		}
	}
	return l.DefaultWeekLabel
}
