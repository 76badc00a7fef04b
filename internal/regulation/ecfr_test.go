package regulation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/flinsight/internal/resilience"
)

const ecfrFixture = `<html><body>
<div class="section">
  <h4>§ 135.89 Pilot requirements: Use of oxygen.</h4>
  <div><p>(a) Unpressurized aircraft.</p></div>
  <div><p>Each pilot shall use oxygen continuously.</p></div>
  <p class="citation">[Doc. No. 16097, 43 FR 46783, Mar. 10, 2025]</p>
</div>
<div class="section">
  <h4>§ 135.93 Minimum altitudes for use of autopilot.</h4>
  <div>No person may use an autopilot below the minimum altitude.</div>
</div>
<div class="section">
  <h4>Reserved</h4>
</div>
</body></html>`

func TestParseECFR(t *testing.T) {
	records, err := ParseECFR(strings.NewReader(ecfrFixture))
	require.NoError(t, err)
	require.Len(t, records, 2, "heading without id is skipped")

	assert.Equal(t, "135.89", records[0].ID)
	assert.Equal(t, "Pilot requirements: Use of oxygen.", records[0].Title)
	assert.Equal(t, "(a) Unpressurized aircraft.\nEach pilot shall use oxygen continuously.", records[0].Content)
	assert.Equal(t, CategoryRegulation, records[0].Category)
	assert.Equal(t, "2025-03-10", records[0].Date)

	assert.Equal(t, "135.93", records[1].ID)
	assert.Equal(t, UnknownDate, records[1].Date)
}

func TestECFRSourceFetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(ecfrFixture))
	}))
	defer srv.Close()

	src := NewECFRSource(srv.URL, resilience.Policy{Timeout: time.Second, Retries: 1})
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 2, calls.Load(), "503 is retried once")
}

func TestECFRSourceFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := NewECFRSource(srv.URL, resilience.Policy{Timeout: time.Second, Retries: 1})
	_, err := src.Fetch(context.Background())
	var se *resilience.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}
