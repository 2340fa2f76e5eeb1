package http

import (
	"net/url"
	"strconv"
	"strings"

	"painel/internal/auth"
	"painel/internal/core"
	"painel/internal/dashboard"
)

// financialsPerPage matches the card height of the dashboard layout.
const financialsPerPage = 5

type (
	pageView struct {
		Title     string
		User      string
		WeekRange string
		Index     int
		Weeks     []weekOptionView
		Older     string // link one week back in the sheet order
		Newer     string
		Loading   bool
		Fallback  bool
		Error     string
		Team      []consultantView
		Stats     statsView
	}

	weekOptionView struct {
		Label    string
		Index    int
		Selected bool
	}

	consultantView struct {
		ID         string
		Name       string
		Role       string
		PhotoURL   string
		Total      string
		TotalSold  string
		Financials []financialView
		Page       int
		Pages      int
		PrevPage   string
		NextPage   string
		Activities []activityView
		Realized   int
		Scheduled  int
		Progress   int
		Complete   bool
	}

	financialView struct {
		Name    string
		Value   string
		Tracked bool
		Sold    bool
	}

	activityView struct {
		Label     string
		Scheduled int
		Realized  int
		Progress  int
		Complete  bool
	}

	statsView struct {
		TotalContracts    string
		MeetingsScheduled int
		MeetingsRealized  int
		ProposalsSent     int
	}
)

// navigate derives the viewer's state from the shared one without touching
// it: week selects an index, nav then steps from there.
func navigate(st dashboard.State, q url.Values) dashboard.State {
	if w, err := strconv.Atoi(q.Get("week")); err == nil {
		st = st.Select(w)
	}
	switch q.Get("nav") {
	case "next":
		st = st.Next()
	case "prev":
		st = st.Previous()
	}
	return st
}

func buildPageView(st dashboard.State, q url.Values, user auth.User) pageView {
	data := st.Current()
	v := pageView{
		Title:     "Resultados Comerciais",
		User:      user.Email,
		WeekRange: data.WeekRange,
		Index:     st.Index(),
		Loading:   st.Loading(),
		Fallback:  st.UsingFallback(),
		Stats: statsView{
			TotalContracts:    core.FormatBRL(data.Stats.TotalContractsValue),
			MeetingsScheduled: data.Stats.MeetingsScheduled,
			MeetingsRealized:  data.Stats.MeetingsRealized,
			ProposalsSent:     data.Stats.ProposalsSent,
		},
	}
	if err := st.Err(); err != nil {
		v.Error = dashboard.ErrorMessage(err)
	}

	for _, w := range st.Weeks() {
		v.Weeks = append(v.Weeks, weekOptionView{Label: w.Label, Index: w.Index, Selected: w.Index == st.Index()})
	}
	if st.HasNext() {
		v.Older = weekURL(st.Index() + 1)
	}
	if st.HasPrevious() {
		v.Newer = weekURL(st.Index() - 1)
	}

	for _, c := range data.Team {
		v.Team = append(v.Team, buildConsultantView(c, st.Index(), q))
	}
	return v
}

func buildConsultantView(c core.Consultant, week int, q url.Values) consultantView {
	cv := consultantView{
		ID:        c.ID,
		Name:      c.Name,
		Role:      c.Role,
		PhotoURL:  c.PhotoURL,
		Total:     core.FormatBRL(c.TotalFinancial),
		TotalSold: core.FormatBRL(c.TotalSold),
	}

	cv.Pages = (len(c.Financials) + financialsPerPage - 1) / financialsPerPage
	cv.Page = clamp(atoiOr(q.Get(pageParam(c.ID)), 0), 0, max(cv.Pages-1, 0))
	if cv.Page > 0 {
		cv.PrevPage = pageURL(q, week, c.ID, cv.Page-1)
	}
	if cv.Page < cv.Pages-1 {
		cv.NextPage = pageURL(q, week, c.ID, cv.Page+1)
	}

	lo := cv.Page * financialsPerPage
	hi := min(lo+financialsPerPage, len(c.Financials))
	for _, f := range c.Financials[lo:hi] {
		cv.Financials = append(cv.Financials, financialView{
			Name:    f.Name,
			Value:   core.FormatBRL(f.Value),
			Tracked: f.Sold != nil,
			Sold:    f.IsSold(),
		})
	}

	for _, a := range c.Activities {
		p := a.Progress()
		cv.Activities = append(cv.Activities, activityView{
			Label:     a.Label,
			Scheduled: a.Scheduled,
			Realized:  a.Realized,
			Progress:  p,
			Complete:  p >= 100,
		})
		cv.Realized += a.Realized
		cv.Scheduled += a.Scheduled
	}
	cv.Progress = core.ActivityItem{Scheduled: cv.Scheduled, Realized: cv.Realized}.Progress()
	cv.Complete = cv.Progress >= 100
	return cv
}

func weekURL(i int) string {
	return "/dashboard?week=" + strconv.Itoa(i)
}

func pageParam(consultantID string) string {
	return "page_" + consultantID
}

// pageURL keeps the other cards' pages while moving one of them.
func pageURL(q url.Values, week int, consultantID string, page int) string {
	next := url.Values{}
	for k, vs := range q {
		if strings.HasPrefix(k, "page_") {
			next[k] = vs
		}
	}
	next.Set("week", strconv.Itoa(week))
	next.Set(pageParam(consultantID), strconv.Itoa(page))
	return "/dashboard?" + next.Encode()
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

// apiDashboard is the JSON shape of GET /api/dashboard.
type apiDashboard struct {
	Data    core.DashboardData `json:"data"`
	Index   int                `json:"index"`
	Weeks   []core.WeekOption  `json:"weeks"`
	Loading bool               `json:"loading"`
	Error   *string            `json:"error"`
}

func buildAPIDashboard(st dashboard.State) apiDashboard {
	out := apiDashboard{
		Data:    st.Current(),
		Index:   st.Index(),
		Weeks:   st.Weeks(),
		Loading: st.Loading(),
	}
	if err := st.Err(); err != nil {
		msg := dashboard.ErrorMessage(err)
		out.Error = &msg
	}
	return out
}
