package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/deviceguard"
	"github.com/NehaTanti-afk/Neha-Notes/services/accounts"
	"github.com/NehaTanti-afk/Neha-Notes/services/content"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/services/support"
	"github.com/NehaTanti-afk/Neha-Notes/session"
	"github.com/NehaTanti-afk/Neha-Notes/testutils"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	eventuallyWait  = 2 * time.Second
	eventuallyTick  = 5 * time.Millisecond
)

type env struct {
	t        *testing.T
	srv      *httptest.Server
	db       *gorm.DB
	accounts *accounts.Service
	store    *accounts.Store
	clock    clockwork.FakeClock
	registry *prometheus.Registry
}

func newEnv(t *testing.T, configure ...func(*config.Config)) *env {
	t.Helper()

	cfg := testutils.GetTestConfig()
	for _, fn := range configure {
		fn(cfg)
	}
	logger := logging.NewNop()

	models := append(accounts.Models(), content.Models()...)
	models = append(models, support.Models()...)
	db := testutils.SetupTestDB(t, models...)

	manager, err := session.ProvideSessionManager(cfg, nil, nil, logger)
	require.NoError(t, err)

	store := accounts.NewStore(db)
	accountsSvc := accounts.NewService(cfg, db, logger)
	clock := clockwork.NewFakeClock()
	reg := prometheus.NewRegistry()

	h := New(Params{
		Config:   cfg,
		Manager:  manager,
		Accounts: accountsSvc,
		Labels:   store,
		Records:  store,
		Content:  content.NewRepository(db, logger),
		Support:  support.NewService(cfg, db, logger),
		Registry: reg,
		Metrics:  deviceguard.NewMetrics(reg),
		Clock:    clock,
		Logger:   logger,
	})

	e := echo.New()
	h.Register(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &env{
		t:        t,
		srv:      srv,
		db:       db,
		accounts: accountsSvc,
		store:    store,
		clock:    clock,
		registry: reg,
	}
}

// guardChecks sums the guard check counter for one trigger.
func (e *env) guardChecks(trigger string) float64 {
	families, err := e.registry.Gather()
	require.NoError(e.t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != "nehanotes_device_guard_checks_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "trigger" && label.GetValue() == trigger {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

type browser struct {
	env    *env
	client *http.Client
	ua     string
}

func (e *env) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)

	return &browser{
		env: e,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		ua: chromeOnWindows,
	}
}

type response struct {
	*http.Response
	body []byte
}

func (r *response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r *response) location() string {
	return r.Header.Get(echo.HeaderLocation)
}

func (b *browser) do(method, path string, body any) *response {
	t := b.env.t
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, b.env.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", b.ua)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	resp, err := b.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return &response{Response: resp, body: data}
}

func (b *browser) signup(name, email string) string {
	t := b.env.t
	t.Helper()

	resp := b.do(http.MethodPost, "/signup", map[string]any{
		"name":     name,
		"email":    email,
		"password": testutils.TestPasswords.Valid,
		"college":  "Test College",
		"semester": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.body))

	user := resp.json(t)["user"].(map[string]any)
	return user["id"].(string)
}

func (b *browser) login(email string) {
	t := b.env.t
	t.Helper()

	resp := b.do(http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": testutils.TestPasswords.Valid,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.body))
}

func (b *browser) dialGuard() (*websocket.Conn, *http.Response, error) {
	u, err := url.Parse(b.env.srv.URL)
	require.NoError(b.env.t, err)

	header := http.Header{}
	for _, c := range b.client.Jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}

	wsURL := "ws" + strings.TrimPrefix(b.env.srv.URL, "http") + GuardSocketPath
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if conn != nil {
		b.env.t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}
