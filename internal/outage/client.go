package outage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"outage-checker/internal/logger"
	"outage-checker/internal/models"
)

const (
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader   = "application/json, text/html, */*"
	acceptLanguage = "uk-UA,uk;q=0.9,en;q=0.8"
)

// Options configures a Client.
type Options struct {
	ScheduleURL string
	AjaxURL     string
	Timeout     time.Duration  // applied to every request
	Location    *time.Location // zone of the provider's day timestamps
	Logger      logger.Logger
	Metrics     *Metrics
	Transport   http.RoundTripper // nil means http.DefaultTransport
}

// Client talks to the provider's schedule page and AJAX endpoint. It keeps
// one HTTP session (cookies) plus the fetched page and CSRF token until Close.
// A Client is not safe for concurrent use.
type Client struct {
	opts       Options
	httpClient *http.Client
	log        logger.Logger

	pageHTML  string
	pageReady bool
	csrfToken string
}

// NewClient creates a client with a fresh session.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       jar,
			Transport: opts.Transport,
		},
		log: opts.Logger,
	}
}

// WithClient runs fn with a new Client and closes it on every exit path.
func WithClient(opts Options, fn func(*Client) error) error {
	c := NewClient(opts)
	defer c.Close()
	return fn(c)
}

// Close releases idle connections and drops the cached page and token.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	c.pageHTML = ""
	c.pageReady = false
	c.csrfToken = ""
}

// CSRFToken returns the token found on the last fetched page, if any.
func (c *Client) CSRFToken() string {
	return c.csrfToken
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
	return req, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Op: op, URL: req.URL.String(), StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: op, URL: req.URL.String(), Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// FetchPage returns the schedule page HTML. The first call per session does
// the GET and captures the CSRF token; later calls reuse the cached page.
func (c *Client) FetchPage(ctx context.Context) (string, error) {
	if c.pageReady {
		return c.pageHTML, nil
	}

	start := time.Now()
	req, err := c.newRequest(ctx, http.MethodGet, c.opts.ScheduleURL, nil)
	if err != nil {
		return "", &FetchError{Op: "fetch schedule page", URL: c.opts.ScheduleURL, Err: err}
	}
	body, err := c.do("fetch schedule page", req)
	c.opts.Metrics.observe("page", start, err)
	if err != nil {
		return "", err
	}

	c.pageHTML = string(body)
	c.pageReady = true
	c.csrfToken = extractCSRFToken(c.pageHTML)
	if c.csrfToken == "" {
		c.log.Warnf("no CSRF token on %s", c.opts.ScheduleURL)
	}
	c.log.Debugf("fetched schedule page (%d bytes)", len(body))
	return c.pageHTML, nil
}

// Page is the data embedded in one schedule page.
type Page struct {
	Streets  models.Streets
	Preset   models.SchedulePreset
	Schedule models.ScheduleData
}

// FetchSchedulePage extracts the street directory, display preset and fact
// data from the schedule page. Missing keys decode to empty values.
func (c *Client) FetchSchedulePage(ctx context.Context) (*Page, error) {
	html, err := c.FetchPage(ctx)
	if err != nil {
		return nil, err
	}

	var page Page
	targets := []struct {
		name string
		v    any
	}{
		{StreetsObject, &page.Streets},
		{PresetObject, &page.Preset},
		{FactObject, &page.Schedule},
	}
	for _, t := range targets {
		raw, err := ExtractNamedObject(html, t.name)
		if err != nil {
			return nil, err
		}
		if err := ParseObject(raw, t.v); err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
	}

	if page.Streets == nil {
		page.Streets = models.Streets{}
	}
	page.Preset.Normalize()
	page.Schedule.Normalize()
	return &page, nil
}

// homeNumResponse is the getHomeNum reply. result is loosely typed by the
// provider, and data is a JSON array instead of an object when empty.
type homeNumResponse struct {
	Result json.RawMessage `json:"result"`
	Data   json.RawMessage `json:"data"`
}

type houseEntry struct {
	SubTypeReason json.RawMessage `json:"sub_type_reason"`
}

func (r homeNumResponse) ok() bool {
	return truthy(r.Result)
}

func (r homeNumResponse) houses() (map[string]houseEntry, error) {
	houses := map[string]houseEntry{}
	if !truthy(r.Data) {
		return houses, nil
	}
	trimmed := strings.TrimSpace(string(r.Data))
	if strings.HasPrefix(trimmed, "[") {
		return houses, nil
	}
	if err := json.Unmarshal(r.Data, &houses); err != nil {
		return nil, &ParseError{What: "houses response", Err: err}
	}
	return houses, nil
}

// reasons decodes sub_type_reason, which is a list of group codes.
func (h houseEntry) reasons() []string {
	var list []any
	if err := json.Unmarshal(h.SubTypeReason, &list); err != nil {
		var single string
		if json.Unmarshal(h.SubTypeReason, &single) == nil && single != "" {
			return []string{single}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// truthy mirrors loose truthiness: null, false, 0, "", [] and {} are false.
func truthy(raw json.RawMessage) bool {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

// postHomeNum submits the lookup form the page sends, in jQuery
// serializeArray format: data[i][name] / data[i][value].
func (c *Client) postHomeNum(ctx context.Context, op, city, street, house string) (*homeNumResponse, error) {
	if _, err := c.FetchPage(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("method", "getHomeNum")
	if c.csrfToken != "" {
		form.Set(CSRFField, c.csrfToken)
	}
	fields := [][2]string{{"city", city}, {"street", street}, {"house_num", house}}
	for i, f := range fields {
		idx := strconv.Itoa(i)
		form.Set("data["+idx+"][name]", f[0])
		form.Set("data["+idx+"][value]", f[1])
	}

	start := time.Now()
	req, err := c.newRequest(ctx, http.MethodPost, c.opts.AjaxURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &FetchError{Op: op, URL: c.opts.AjaxURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.opts.ScheduleURL)

	body, err := c.do(op, req)
	c.opts.Metrics.observe("home_num", start, err)
	if err != nil {
		return nil, err
	}

	var resp homeNumResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{What: "getHomeNum response", Err: err}
	}
	return &resp, nil
}

// FetchAddressGroup resolves an address to its power group (e.g. "GPV6.1").
// ok is false when the provider has no group for the address.
func (c *Client) FetchAddressGroup(ctx context.Context, city, street, house string) (group string, ok bool, err error) {
	resp, err := c.postHomeNum(ctx, "fetch address group", city, street, house)
	if err != nil {
		return "", false, err
	}
	if !resp.ok() {
		c.log.Debugf("getHomeNum result is falsy for %s, %s, %s", city, street, house)
		return "", false, nil
	}
	houses, err := resp.houses()
	if err != nil {
		return "", false, err
	}
	entry, found := houses[house]
	if !found {
		return "", false, nil
	}
	reasons := entry.reasons()
	if len(reasons) == 0 {
		return "", false, nil
	}
	return reasons[0], true, nil
}

// FetchHouses lists the house numbers of a street in natural order.
func (c *Client) FetchHouses(ctx context.Context, city, street string) ([]string, error) {
	resp, err := c.postHomeNum(ctx, "fetch houses", city, street, "")
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return []string{}, nil
	}
	houses, err := resp.houses()
	if err != nil {
		return nil, err
	}
	numbers := make([]string, 0, len(houses))
	for n := range houses {
		numbers = append(numbers, n)
	}
	SortNatural(numbers)
	return numbers, nil
}

// FetchCities lists the cities of the street directory, sorted.
func (c *Client) FetchCities(ctx context.Context) ([]string, error) {
	page, err := c.FetchSchedulePage(ctx)
	if err != nil {
		return nil, err
	}
	cities := make([]string, 0, len(page.Streets))
	for city := range page.Streets {
		cities = append(cities, city)
	}
	SortNatural(cities)
	return cities, nil
}

// FetchStreets lists the streets of city, sorted. ok is false when the city
// is not in the directory.
func (c *Client) FetchStreets(ctx context.Context, city string) (streets []string, ok bool, err error) {
	page, err := c.FetchSchedulePage(ctx)
	if err != nil {
		return nil, false, err
	}
	list, ok := page.Streets[city]
	if !ok {
		return nil, false, nil
	}
	streets = append([]string(nil), list...)
	SortNatural(streets)
	return streets, true, nil
}
