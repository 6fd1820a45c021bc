package outage

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const testFact = `{"data":{"1700086400":{"G1":{"1":"yes","24":"no"}},"1700000000":{"G1":{"1":"no","2":"yes"},"G2":{"1":"maybe"}}},"update":"15.11.2023 10:00","today":1700000000}`

const testPreset = `{"days":{"1":"Понеділок","2":"Вівторок","3":"Середа","4":"Четвер","5":"П'ятниця","6":"Субота","7":"Неділя"},` +
	`"sch_names":{"G1":"Черга 1"},"time_zone":{"1":["00-01","00:00","01:00"],"2":["01-02","01:00","02:00"]},` +
	`"time_type":{"yes":"Світло є","no":"Світла немає"},"url":"https:\/\/example.com\/a"}`

const testStreets = `{"м. Одеса":["вул. Б","вул. А"],"с. Нерубайське":["вул. Центральна"]}`

func testPage() string {
	return fmt.Sprintf(`<!doctype html><html><head><meta name="csrf-token" content="meta-token"></head><body>
<form><input type="hidden" name="_csrf-dtek-oem" value="tok-123"></form>
<script>
DisconSchedule.streets = %s;
DisconSchedule.preset = %s
DisconSchedule.fact = %s
</script></body></html>`, testStreets, testPreset, testFact)
}

// provider fakes the schedule page and the AJAX endpoint.
type provider struct {
	page     string
	ajax     func(w http.ResponseWriter, r *http.Request)
	pageHits atomic.Int32
	ajaxHits atomic.Int32
	pageCode int
	server   *httptest.Server
}

func newProvider(t *testing.T, ajax func(w http.ResponseWriter, r *http.Request)) *provider {
	t.Helper()
	p := &provider{page: testPage(), ajax: ajax, pageCode: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/ua/shutdowns", func(w http.ResponseWriter, r *http.Request) {
		p.pageHits.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		w.WriteHeader(p.pageCode)
		_, _ = w.Write([]byte(p.page))
	})
	mux.HandleFunc("/ua/ajax", func(w http.ResponseWriter, r *http.Request) {
		p.ajaxHits.Add(1)
		if p.ajax == nil {
			http.Error(w, "no handler", http.StatusNotImplemented)
			return
		}
		p.ajax(w, r)
	})
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *provider) options() Options {
	return Options{
		ScheduleURL: p.server.URL + "/ua/shutdowns",
		AjaxURL:     p.server.URL + "/ua/ajax",
		Timeout:     5 * time.Second,
		Location:    time.UTC,
	}
}

func jsonReply(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

// newTestClient opens a client that is closed when the test ends.
func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	c := NewClient(opts)
	t.Cleanup(c.Close)
	return c
}
