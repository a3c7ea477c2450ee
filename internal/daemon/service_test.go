package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/source"
)

const fixtureCSV = "MÊS;VENDAS;QUANTIDADE DE CLIENTES;INVESTIMENTO META;INVESTIMENTO GOOGLE\n" +
	"Mar;R$ 3.000,00;30;R$ 1.000,00;R$ 500,00\n" +
	"Jan;R$ 1.000,00;10;R$ 200,00;R$ 300,00\n" +
	"Fev;R$ 2.000,00;20;R$ 400,00;R$ 100,00\n"

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "base.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o600))

	s := New(Config{
		File:       path,
		Load:       pipeline.Options{Source: source.DefaultOptions()},
		Investment: 1000,
		Interval:   10 * time.Second,
	})
	return s, path
}

func get(t *testing.T, h http.Handler, target string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Rows: 3, Revenue: 6000, Customers: 60, Investment: 2500}
	curr := Snapshot{Rows: 4, Revenue: 7500.5, Customers: 75, Investment: 2500}

	delta := diffSnapshots(prev, curr)
	assert.Equal(t, 1, delta.Rows)
	assert.InDelta(t, 1500.5, delta.Revenue, 1e-9)
	assert.InDelta(t, 15.0, delta.Customers, 1e-9)
	assert.Zero(t, delta.Investment)
	assert.False(t, delta.isZero())
	assert.True(t, diffSnapshots(curr, curr).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		File:         "base.xlsx",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestReload_PublishesOnlyOnChange(t *testing.T) {
	s, path := newTestService(t)

	s.reload()
	s.reload()
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV+"Abr;R$ 500,00;5;R$ 50,00;R$ 0,00\n"), 0o600))
	s.reload()

	var events []Event
	require.Equal(t, http.StatusOK, get(t, s.Router(), "/v1/events", &events))
	require.Len(t, events, 2)
	assert.Equal(t, EventSnapshot, events[0].Type)
	assert.Equal(t, EventDataChanged, events[1].Type)
	assert.Equal(t, 1, events[1].Delta.Rows)
	assert.InDelta(t, 500.0, events[1].Delta.Revenue, 1e-9)
}

func TestReload_MissingFileKeepsLastData(t *testing.T) {
	s, path := newTestService(t)
	s.reload()
	require.NoError(t, os.Remove(path))
	s.reload()

	var st Status
	require.Equal(t, http.StatusOK, get(t, s.Router(), "/v1/status", &st))
	assert.Contains(t, st.LastError, "not found")
	assert.Equal(t, 3, st.Summary.Rows)
	assert.Equal(t, int64(2), st.LoadCount)
}

func TestHandlers_NotLoaded(t *testing.T) {
	s, _ := newTestService(t)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s.Router(), "/v1/summary", nil))
}

func TestHandleSummary(t *testing.T) {
	s, _ := newTestService(t)
	s.reload()
	h := s.Router()

	var all SummaryResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/summary", &all))
	assert.Equal(t, 3, all.Rows)
	assert.InDelta(t, 6000.0, all.Summary.Revenue, 1e-9)
	assert.InDelta(t, 2500.0, all.Summary.Investment, 1e-9)
	assert.InDelta(t, 2.4, all.Summary.ROAS, 1e-9)
	assert.Nil(t, all.Previous)

	var meta SummaryResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/summary?channels=meta", &meta))
	assert.Equal(t, []string{"INVESTIMENTO META"}, meta.Query.Channels)
	assert.InDelta(t, 3.75, meta.Summary.ROAS, 1e-9)

	var march SummaryResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/summary?from=mar&to=3", &march))
	assert.InDelta(t, 3000.0, march.Summary.Revenue, 1e-9)
	require.NotNil(t, march.Previous)
	assert.InDelta(t, 2000.0, march.Previous.Revenue, 1e-9)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/summary?from=smarch", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/summary?channels=tiktok", nil))
}

func TestHandleMonthsAndChannels(t *testing.T) {
	s, _ := newTestService(t)
	s.reload()
	h := s.Router()

	var months []MonthJSON
	require.Equal(t, http.StatusOK, get(t, h, "/v1/months?months=jan,mar", &months))
	require.Len(t, months, 2)
	assert.Equal(t, 1, months[0].MonthID)
	assert.Equal(t, 3, months[1].MonthID)

	var channels []ChannelJSON
	require.Equal(t, http.StatusOK, get(t, h, "/v1/channels", &channels))
	require.Len(t, channels, 2)
	assert.Equal(t, "Meta", channels[0].Label)
	assert.InDelta(t, 1600.0, channels[0].Investment, 1e-9)
	assert.InDelta(t, 64.0, channels[0].SharePercent, 1e-9)
}

func TestHandleSimulate(t *testing.T) {
	s, _ := newTestService(t)
	s.reload()
	h := s.Router()

	var def SimulationJSON
	require.Equal(t, http.StatusOK, get(t, h, "/v1/simulate", &def))
	assert.InDelta(t, 2400.0, def.ProjectedRevenue, 1e-9)
	require.NotNil(t, def.Forecast)
	assert.Equal(t, 4, def.Forecast.MonthID)
	assert.InDelta(t, 4000.0, def.Forecast.Revenue, 1e-6)

	var sim SimulationJSON
	require.Equal(t, http.StatusOK, get(t, h, "/v1/simulate?invest=5000", &sim))
	assert.InDelta(t, 12000.0, sim.ProjectedRevenue, 1e-9)
	assert.InDelta(t, 7000.0, sim.ProjectedProfit, 1e-9)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/simulate?invest=-1", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/simulate?invest=lots", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/simulate?invest=NaN", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/simulate?invest=Inf", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/simulate?invest=-Inf", nil))
}

func TestHandleStream_SendsSnapshotThenEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, _ := newTestService(t)
	s.reload()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/v1/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Router().ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool {
		return s.snapshotStatus().SubscriberCount == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.publishEvent(Event{ID: 42, Type: EventDataChanged})
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.subs) == 1 && len(s.events) == 2
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var types []string
	sc := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	for sc.Scan() {
		if line, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
			types = append(types, line)
		}
	}
	assert.Equal(t, []string{EventSnapshot, EventDataChanged}, types)
	assert.Contains(t, rec.Body.String(), "id: 42")
	assert.Zero(t, s.snapshotStatus().SubscriberCount)
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, _ := newTestService(t)
	s.cfg.Addr = "127.0.0.1:0"
	s.cfg.Watch = true

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return s.snapshotStatus().LoadCount > 0
	}, 3*time.Second, 10*time.Millisecond)
	assert.True(t, s.snapshotStatus().Watching)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
