package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/source"
)

// SummaryJSON is the KPI block shared by several endpoints.
type SummaryJSON struct {
	Months             int     `json:"months"`
	Revenue            float64 `json:"revenue"`
	AvgTicket          float64 `json:"avg_ticket"`
	Customers          float64 `json:"customers"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	Investment         float64 `json:"investment"`
	ROAS               float64 `json:"roas"`
	CAC                float64 `json:"cac"`
	Profit             float64 `json:"profit"`
	Margin             float64 `json:"margin"`
}

// QueryJSON echoes the filters a response was computed with.
type QueryJSON struct {
	Months   []string `json:"months,omitempty"`
	From     int      `json:"from,omitempty"`
	To       int      `json:"to,omitempty"`
	Channels []string `json:"channels"`
}

// SummaryResponse is served at /v1/summary.
type SummaryResponse struct {
	Query    QueryJSON    `json:"query"`
	Rows     int          `json:"rows"`
	Summary  SummaryJSON  `json:"summary"`
	Previous *SummaryJSON `json:"previous,omitempty"`
	Goals    *GoalsJSON   `json:"goals,omitempty"`
}

// GoalsJSON reports progress against configured targets.
type GoalsJSON struct {
	MonthlyRevenueTarget *float64 `json:"monthly_revenue_target,omitempty"`
	MaxCAC               *float64 `json:"max_cac,omitempty"`
	AvgMonthlyRevenue    float64  `json:"avg_monthly_revenue"`
	RevenueProgress      float64  `json:"revenue_progress"`
	MonthsOnTarget       int      `json:"months_on_target"`
	CACWithinLimit       bool     `json:"cac_within_limit"`
}

// MonthJSON is one entry of /v1/months.
type MonthJSON struct {
	Month      string  `json:"month"`
	MonthID    int     `json:"month_id"`
	Revenue    float64 `json:"revenue"`
	Customers  float64 `json:"customers"`
	Investment float64 `json:"investment"`
	ROAS       float64 `json:"roas"`
	CAC        float64 `json:"cac"`
	Profit     float64 `json:"profit"`
}

// ChannelJSON is one entry of /v1/channels.
type ChannelJSON struct {
	Channel           string  `json:"channel"`
	Label             string  `json:"label"`
	Investment        float64 `json:"investment"`
	SharePercent      float64 `json:"share_percent"`
	AttributedRevenue float64 `json:"attributed_revenue"`
	ROAS              float64 `json:"roas"`
	Trend             int     `json:"trend"`
}

// SimulationJSON is served at /v1/simulate.
type SimulationJSON struct {
	Query            QueryJSON     `json:"query"`
	AvgROAS          float64       `json:"avg_roas"`
	Investment       float64       `json:"investment"`
	ProjectedRevenue float64       `json:"projected_revenue"`
	ProjectedProfit  float64       `json:"projected_profit"`
	Forecast         *ForecastJSON `json:"forecast,omitempty"`
}

// ForecastJSON is the linear-trend projection for next month.
type ForecastJSON struct {
	MonthID  int     `json:"month_id"`
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Slope    float64 `json:"slope"`
	RSquared float64 `json:"r_squared"`
}

type errorJSON struct {
	Error string `json:"error"`
}

var errNotLoaded = errors.New("workbook not loaded yet")

// Router builds the HTTP routes.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/summary", s.handleSummary)
		r.Get("/months", s.handleMonths)
		r.Get("/channels", s.handleChannels)
		r.Get("/simulate", s.handleSimulate)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorJSON{Error: err.Error()})
}

// queryFromRequest overlays URL parameters on the default filters.
// months, from, to and channels mirror the CLI flags.
func (s *Service) queryFromRequest(r *http.Request) (pipeline.Query, error) {
	q := s.cfg.Query
	values := r.URL.Query()

	if v, ok := values["months"]; ok {
		q.Months = pipeline.SplitList(v...)
	}
	if v, ok := values["channels"]; ok {
		q.Channels = pipeline.SplitList(v...)
	}
	if values.Has("from") {
		from, err := pipeline.ParseBound(values.Get("from"))
		if err != nil {
			return q, err
		}
		q.From = from
	}
	if values.Has("to") {
		to, err := pipeline.ParseBound(values.Get("to"))
		if err != nil {
			return q, err
		}
		q.To = to
	}
	return q, nil
}

// view resolves the request's filters against the current workbook and
// writes the error response itself when that fails.
func (s *Service) view(w http.ResponseWriter, r *http.Request) (pipeline.View, bool) {
	data := s.current()
	if data == nil {
		writeError(w, http.StatusServiceUnavailable, errNotLoaded)
		return pipeline.View{}, false
	}
	q, err := s.queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return pipeline.View{}, false
	}
	v, err := pipeline.Apply(data, q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return pipeline.View{}, false
	}
	return v, true
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}

	summary := pipeline.Aggregate(v.Rows, v.Channels)
	resp := SummaryResponse{
		Query:   queryJSON(v),
		Rows:    len(v.Rows),
		Summary: summaryJSON(summary),
	}

	if v.Query.From != 0 && v.Query.To != 0 && len(v.Query.Months) == 0 {
		cmp := pipeline.Compare(s.current().Rows, v.Channels, v.Query.From, v.Query.To)
		if cmp.HasPrevious {
			prev := summaryJSON(cmp.Previous)
			resp.Previous = &prev
		}
	}

	if s.cfg.Goals.MonthlyRevenue != nil || s.cfg.Goals.MaxCAC != nil {
		g := pipeline.Goals(pipeline.AggregateMonths(v.Rows, v.Channels), summary, s.cfg.Goals)
		resp.Goals = &GoalsJSON{
			MonthlyRevenueTarget: g.MonthlyRevenueTarget,
			MaxCAC:               g.MaxCAC,
			AvgMonthlyRevenue:    g.AvgMonthlyRevenue,
			RevenueProgress:      g.RevenueProgress,
			MonthsOnTarget:       g.MonthsOnTarget,
			CACWithinLimit:       g.CACWithinLimit,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleMonths(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	months := pipeline.AggregateMonths(v.Rows, v.Channels)
	out := make([]MonthJSON, 0, len(months))
	for _, m := range months {
		out = append(out, MonthJSON{
			Month:      m.Month,
			MonthID:    m.MonthID,
			Revenue:    m.Revenue,
			Customers:  m.Customers,
			Investment: m.Investment,
			ROAS:       m.ROAS,
			CAC:        m.CAC,
			Profit:     m.Profit,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleChannels(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	channels := pipeline.AggregateChannels(v.Rows, v.Channels)
	out := make([]ChannelJSON, 0, len(channels))
	for _, c := range channels {
		out = append(out, ChannelJSON{
			Channel:           c.Channel,
			Label:             source.ChannelLabel(c.Channel),
			Investment:        c.Investment,
			SharePercent:      c.SharePercent,
			AttributedRevenue: c.AttributedRevenue,
			ROAS:              c.ROAS,
			Trend:             c.TrendDirection,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleSimulate(w http.ResponseWriter, r *http.Request) {
	invest := s.cfg.Investment
	if raw := strings.TrimSpace(r.URL.Query().Get("invest")); raw != "" {
		f, err := pipeline.ParseInvestment(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		invest = f
	}

	v, ok := s.view(w, r)
	if !ok {
		return
	}

	sim := pipeline.Project(v.Rows, v.Channels, invest)
	resp := SimulationJSON{
		Query:            queryJSON(v),
		AvgROAS:          sim.AvgROAS,
		Investment:       sim.Investment,
		ProjectedRevenue: sim.ProjectedRevenue,
		ProjectedProfit:  sim.ProjectedProfit,
	}
	if fc := pipeline.Forecast(pipeline.AggregateMonths(v.Rows, v.Channels)); fc.Valid {
		resp.Forecast = &ForecastJSON{
			MonthID:  fc.NextMonthID,
			Month:    source.MonthLabel(fc.NextMonthID),
			Revenue:  fc.Revenue,
			Slope:    fc.Slope,
			RSquared: fc.RSquared,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func snapshotFromSummary(stats model.SummaryStats, at time.Time) Snapshot {
	return Snapshot{
		At:         at,
		Months:     stats.Months,
		Revenue:    stats.Revenue,
		Customers:  stats.Customers,
		Investment: stats.Investment,
		ROAS:       stats.ROAS,
		CAC:        stats.CAC,
		Profit:     stats.Profit,
	}
}

func summaryJSON(st model.SummaryStats) SummaryJSON {
	return SummaryJSON{
		Months:             st.Months,
		Revenue:            st.Revenue,
		AvgTicket:          st.AvgTicket,
		Customers:          st.Customers,
		RevenuePerCustomer: st.RevenuePerCustomer,
		Investment:         st.Investment,
		ROAS:               st.ROAS,
		CAC:                st.CAC,
		Profit:             st.Profit,
		Margin:             st.Margin,
	}
}

func queryJSON(v pipeline.View) QueryJSON {
	return QueryJSON{
		Months:   v.Query.Months,
		From:     v.Query.From,
		To:       v.Query.To,
		Channels: v.Channels,
	}
}

func channelNames(data *pipeline.LoadResult) []string {
	out := make([]string, len(data.Channels))
	copy(out, data.Channels)
	return out
}
