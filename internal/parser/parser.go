// Package parser reconstructs weekly dashboard snapshots from the raw row grid
// of the team's report spreadsheet.
//
// A sheet holds one block per week. Each block is anchored on a marker row
// ("Atividades Semanais - <range>"): the consultants' financial tables sit
// above it, their activity counters and the team totals below it.
package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"painel/internal/core"
	"painel/internal/log"
)

var (
	// ErrNoWeeks means the grid holds no marker row at all.
	ErrNoWeeks = errors.New("Nenhuma semana encontrada. Verifique o layout.")
	// ErrProcessing means assembling the weeks failed unexpectedly.
	ErrProcessing = errors.New("Erro ao processar as semanas.")
)

// Parser turns grids into weekly sequences for a fixed layout.
type Parser struct {
	layout Layout
}

// New validates the layout and returns a parser bound to it.
func New(layout Layout) (*Parser, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Parser{layout: layout}, nil
}

// Layout returns the layout the parser was built with.
func (p *Parser) Layout() Layout {
	return p.layout
}

// Parse returns one snapshot per marker row, in grid order.
func (p *Parser) Parse(g Grid) (weeks []core.DashboardData, err error) {
	defer func() {
		if r := recover(); r != nil {
			weeks = nil
			err = fmt.Errorf("%w: %v", ErrProcessing, r)
		}
	}()

	markers := LocateBlocks(g, &p.layout)
	if len(markers) == 0 {
		return nil, ErrNoWeeks
	}

	weeks = make([]core.DashboardData, 0, len(markers))
	for _, marker := range markers {
		weeks = append(weeks, p.parseBlock(g, marker))
	}

	slog.Debug("Parsed weekly blocks",
		log.FieldComponent, log.ComponentParser,
		log.FieldRows, g.Rows(),
		log.FieldMarkerRows, markers,
		log.FieldWeeks, len(weeks))
	return weeks, nil
}

func (p *Parser) parseBlock(g Grid, marker int) core.DashboardData {
	l := &p.layout
	week := WeekLabel(g.Cell(marker, l.MarkerColumn), l)

	team := make([]core.Consultant, 0, len(l.Consultants))
	for _, c := range l.Consultants {
		team = append(team, ExtractConsultant(g, marker, week, c, l))
	}

	return core.DashboardData{
		WeekRange: week,
		Team:      team,
		Stats:     ExtractTeamStats(g, marker, l),
	}
}
