package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outage-checker/internal/config"
	"outage-checker/internal/models"
	"outage-checker/internal/outage"
)

func init() {
	color.NoColor = true
}

const (
	fakeFact    = `{"data":{"1700086400":{"G1":{"1":"yes","24":"no"}},"1700000000":{"G1":{"1":"no","2":"yes"}}},"update":"15.11.2023 10:00","today":1700000000}`
	fakePreset  = `{"days":{"2":"Вівторок","3":"Середа"},"time_zone":{"1":["00-01","00:00","01:00"]},"time_type":{"no":"Світла немає"}}`
	fakeStreets = `{"м. Одеса":["вул. Б","вул. А"],"с. Нерубайське":["вул. Центральна"]}`
	fakeHouses  = `{"result":true,"data":{"10":{"sub_type_reason":["G1"]},"2":{"sub_type_reason":[]},"1":{"sub_type_reason":["G1"]}}}`
)

// newFakeProvider serves the schedule page with fact data and answers every
// getHomeNum with the same three houses.
func newFakeProvider(t *testing.T, fact string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ua/shutdowns", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><input type="hidden" name="_csrf-dtek-oem" value="tok"><script>
DisconSchedule.streets = %s;
DisconSchedule.preset = %s;
DisconSchedule.fact = %s;
</script></body></html>`, fakeStreets, fakePreset, fact)
	})
	mux.HandleFunc("/ua/ajax", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, fakeHouses)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestEnv(t *testing.T, stdin string) *env {
	t.Helper()
	return newTestEnvWithFact(t, stdin, fakeFact)
}

func newTestEnvWithFact(t *testing.T, stdin, fact string) *env {
	t.Helper()
	srv := newFakeProvider(t, fact)
	cfg := &config.Config{
		ScheduleURL:    srv.URL + "/ua/shutdowns",
		AjaxURL:        srv.URL + "/ua/ajax",
		RequestTimeout: 5 * time.Second,
		Timezone:       "UTC",
		ConfigPath:     filepath.Join(t.TempDir(), "config.json"),
	}
	return newEnv(cfg, strings.NewReader(stdin))
}

func run(e *env, args ...string) (string, error) {
	cmd := newRootCmd(e)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(newTestEnv(t, ""), "--version")
	require.NoError(t, err)
	assert.Equal(t, "outage-checker version dev\n", out)
}

func TestCheckAddress(t *testing.T) {
	out, err := run(newTestEnv(t, ""), "check", "м. Одеса, вул. А, 1")
	require.NoError(t, err)

	assert.Contains(t, out, "Checking schedule for: м. Одеса, вул. А, 1")
	assert.Contains(t, out, "Вівторок (14.11.2023) - G1")
	assert.Contains(t, out, "Outages: 00:00-01:00 Power OFF")
	assert.Contains(t, out, "Середа (15.11.2023) - G1")
	assert.Contains(t, out, "Outages: 23:00-24:00 Power OFF")
}

func TestCheckNativeTexts(t *testing.T) {
	out, err := run(newTestEnv(t, ""), "check", "--native", "м. Одеса, вул. А, 1")
	require.NoError(t, err)
	assert.Contains(t, out, "Outages: 00:00-01:00 Світла немає")
}

func TestCheckJSON(t *testing.T) {
	out, err := run(newTestEnv(t, ""), "check", "--json", "м. Одеса, вул. А, 1")
	require.NoError(t, err)

	var got struct {
		Address models.Address     `json:"address"`
		Days    []outage.DayReport `json:"days"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1", got.Address.House)
	require.Len(t, got.Days, 2)
	assert.Equal(t, "14.11.2023", got.Days[0].DateString)
	assert.Equal(t, []models.OutagePeriod{{Start: "00:00", End: "01:00", Status: models.StatusNo}}, got.Days[0].Outages)
}

func TestCheckUnknownAddress(t *testing.T) {
	_, err := run(newTestEnv(t, ""), "check", "м. Одеса, вул. А, 99")
	var nf *outage.AddressNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "99", nf.Address.House)
}

func TestCheckInvalidAddress(t *testing.T) {
	_, err := run(newTestEnv(t, ""), "check", "only, two")
	assert.ErrorIs(t, err, models.ErrInvalidAddress)
}

func TestCheckProbeWithoutScheduleData(t *testing.T) {
	e := newTestEnvWithFact(t, "", `{"data":{},"update":"","today":0}`)
	out, err := run(e, "check", "--probe", " ", "м. Одеса, вул. А, 1")
	require.NoError(t, err)
	assert.Contains(t, out, "No schedule data available.")
	assert.Contains(t, out, "Probe failed: ping: empty target")
}

func TestCheckJSONProbe(t *testing.T) {
	out, err := run(newTestEnv(t, ""), "check", "--json", "--probe", " ", "м. Одеса, вул. А, 1")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ping: empty target", got["probe_error"])
}

func TestCheckJSONWithoutAddressDoesNotPrompt(t *testing.T) {
	e := newTestEnv(t, "\nм. Одеса, вул. А, 1\n")
	out, err := run(e, "check", "--json")
	assert.ErrorContains(t, err, "no default address")
	assert.Empty(t, out)
	_, ok := e.store.DefaultAddress()
	assert.False(t, ok)
}

func TestCheckFirstRunDeclined(t *testing.T) {
	e := newTestEnv(t, "n\n")
	out, err := run(e, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "No default address configured.")
	assert.Contains(t, out, "No problem!")
	_, ok := e.store.DefaultAddress()
	assert.False(t, ok)
}

func TestCheckFirstRunSavesAddress(t *testing.T) {
	e := newTestEnv(t, "\nм. Одеса, вул. А, 10\n")
	out, err := run(e, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Default address saved! (power group: G1)")
	assert.Contains(t, out, "Checking schedule for: м. Одеса, вул. А, 10")

	addr, ok := e.store.DefaultAddress()
	require.True(t, ok)
	assert.Equal(t, "10", addr.House)

	out, err = run(e, "check")
	require.NoError(t, err)
	assert.NotContains(t, out, "No default address configured.")
}

func TestAddressCommands(t *testing.T) {
	e := newTestEnv(t, "")

	out, err := run(e, "show-address")
	require.NoError(t, err)
	assert.Contains(t, out, "No default address configured.")

	_, err = run(e, "set-address", "м. Одеса, вул. Б, 2")
	var nf *outage.AddressNotFoundError
	require.ErrorAs(t, err, &nf, "house 2 has no group")

	out, err = run(e, "set-address", "м. Одеса, вул. Б, 1")
	require.NoError(t, err)
	assert.Contains(t, out, "Default address set to: м. Одеса, вул. Б, 1")
	assert.Contains(t, out, "Power group: G1")

	out, err = run(e, "show-address")
	require.NoError(t, err)
	assert.Contains(t, out, "Default address: м. Одеса, вул. Б, 1")
	assert.Contains(t, out, "Stored in: "+e.store.Path())

	out, err = run(e, "clear-address")
	require.NoError(t, err)
	assert.Contains(t, out, "Default address cleared.")
	_, ok := e.store.DefaultAddress()
	assert.False(t, ok)
}

func TestListCommands(t *testing.T) {
	e := newTestEnv(t, "")

	out, err := run(e, "list-cities")
	require.NoError(t, err)
	assert.Equal(t, "Available cities/settlements:\n  м. Одеса\n  с. Нерубайське\n", out)

	out, err = run(e, "list-streets", "м. Одеса")
	require.NoError(t, err)
	assert.Equal(t, "Streets in м. Одеса:\n  вул. А\n  вул. Б\n", out)

	_, err = run(e, "list-streets", "Атлантида")
	assert.ErrorContains(t, err, "city not found: Атлантида")

	out, err = run(e, "list-houses", "м. Одеса", "вул. А")
	require.NoError(t, err)
	assert.Equal(t, "Houses on вул. А, м. Одеса:\n  1\n  2\n  10\n", out)
}

func TestNotifyRequiresToken(t *testing.T) {
	_, err := run(newTestEnv(t, ""), "notify", "--chat", "42", "м. Одеса, вул. А, 1")
	assert.ErrorContains(t, err, "BOT_TOKEN")

	_, err = run(newTestEnv(t, ""), "notify", "м. Одеса, вул. А, 1")
	assert.ErrorContains(t, err, "chat")
}

func TestServeApp(t *testing.T) {
	e := newTestEnv(t, "")
	reg := prometheus.NewRegistry()
	app, err := e.newApp(reg, nil, nil)
	require.NoError(t, err)

	q := url.Values{"city": {"м. Одеса"}, "street": {"вул. А"}, "house": {"1"}}
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/outage/group?"+q.Encode(), nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"group":"G1"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `outage_provider_requests_total{op="home_num",result="ok"} 1`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
