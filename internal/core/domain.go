package core

// ProposalsNotSourced is the per-consultant proposals figure. The sheet has no
// per-consultant proposals rows yet, only the team aggregate.
const ProposalsNotSourced = 0

type (
	// FinancialItem is one billable unit (a condominium or client) listed in a
	// consultant's weekly financial table.
	FinancialItem struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Value float64 `json:"value"`
		Sold  *bool   `json:"sold,omitempty"` // nil when the layout has no "Vendeu?" column
	}

	ActivityItem struct {
		ID        string `json:"id"`
		Label     string `json:"label"`
		Scheduled int    `json:"scheduled"`
		Realized  int    `json:"realized"`
	}

	Consultant struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Role           string          `json:"role"`
		PhotoURL       string          `json:"photoUrl,omitempty"`
		Financials     []FinancialItem `json:"financials"`
		TotalFinancial float64         `json:"totalFinancial"` // unsold (potential)
		TotalSold      float64         `json:"totalSold"`
		ProposalsSent  int             `json:"proposalsSent"`
		Activities     []ActivityItem  `json:"activities"`
	}

	// TeamStats holds the figures read from the labeled summary rows. They are
	// not reconciled against the per-consultant sums.
	TeamStats struct {
		TotalContractsValue float64 `json:"totalContractsValue"`
		MeetingsScheduled   int     `json:"meetingsScheduled"`
		MeetingsRealized    int     `json:"meetingsRealized"`
		ProposalsSent       int     `json:"proposalsSent"`
	}

	// DashboardData is one fully assembled week.
	DashboardData struct {
		WeekRange string       `json:"weekRange"`
		Team      []Consultant `json:"team"`
		Stats     TeamStats    `json:"stats"`
	}

	// WeekOption is an entry of the week selector.
	WeekOption struct {
		Label string `json:"label"`
		Index int    `json:"index"`
	}
)

// IsSold reports whether the item converted into a signed contract.
func (f FinancialItem) IsSold() bool {
	return f.Sold != nil && *f.Sold
}

// Progress returns realized/scheduled as a percentage capped at 100.
// A zero schedule with any realization counts as complete.
func (a ActivityItem) Progress() int {
	if a.Scheduled <= 0 {
		if a.Realized > 0 {
			return 100
		}
		return 0
	}
	p := a.Realized * 100 / a.Scheduled
	if p > 100 {
		return 100
	}
	return p
}

// Find returns the consultant with the given id.
func (d DashboardData) Find(id string) (Consultant, bool) {
	for _, c := range d.Team {
		if c.ID == id {
			return c, true
		}
	}
	return Consultant{}, false
}
