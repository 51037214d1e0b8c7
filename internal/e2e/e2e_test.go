package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/campaignhub/internal/application"
	appdomain "github.com/smallbiznis/campaignhub/internal/application/domain"
	"github.com/smallbiznis/campaignhub/internal/auth"
	authdomain "github.com/smallbiznis/campaignhub/internal/auth/domain"
	"github.com/smallbiznis/campaignhub/internal/campaign"
	"github.com/smallbiznis/campaignhub/internal/clock"
	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/smallbiznis/campaignhub/internal/migration"
	"github.com/smallbiznis/campaignhub/internal/observability"
	"github.com/smallbiznis/campaignhub/internal/post"
	postdomain "github.com/smallbiznis/campaignhub/internal/post/domain"
	"github.com/smallbiznis/campaignhub/internal/ratelimit"
	"github.com/smallbiznis/campaignhub/internal/revalidate"
	"github.com/smallbiznis/campaignhub/internal/server"
	"github.com/smallbiznis/campaignhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@campaignhub.test"
	adminPassword = "admin-password"
)

type notifyCall struct {
	Hostname   string
	ResourceID string
	Slug       string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (r *recordingNotifier) Notify(ctx context.Context, hostname, resourceID, slug string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notifyCall{Hostname: hostname, ResourceID: resourceID, Slug: slug})
}

func (r *recordingNotifier) take() []notifyCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.calls
	r.calls = nil
	return out
}

type testEnv struct {
	app      *fx.App
	db       *gorm.DB
	authsvc  authdomain.Service
	notifier *recordingNotifier
	baseURL  string
	httpSrv  *httptest.Server
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	setDefaultEnv()

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestE2E_APIRequiresSession(t *testing.T) {
	resp, _ := doJSON(t, newHTTPClient(), http.MethodGet, env.baseURL+"/api/application", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestE2E_ApplicationAndCampaignLifecycle(t *testing.T) {
	owner := login(t, adminEmail, adminPassword)
	env.notifier.take()

	resp, body := doJSON(t, owner, http.MethodPost, env.baseURL+"/api/application", map[string]any{
		"name":        "Shop",
		"description": "spring shop",
		"subdomain":   "My Site!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		SiteID string `json:"siteId"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body = doJSON(t, owner, http.MethodGet, env.baseURL+"/api/application?appId="+created.SiteID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var app appdomain.Application
	require.NoError(t, json.Unmarshal(body, &app))
	assert.Equal(t, "MySite", app.Subdomain)
	assert.Equal(t, appdomain.DefaultLogo, app.Logo)

	resp, body = doJSON(t, owner, http.MethodPost, env.baseURL+"/api/campaign?appId="+created.SiteID, map[string]any{
		"name":         "Spring",
		"campaignType": "MAX_TOTAL",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var campaign struct {
		CampaignID string `json:"campaignId"`
	}
	require.NoError(t, json.Unmarshal(body, &campaign))

	resp, body = doJSON(t, owner, http.MethodPut, env.baseURL+"/api/campaign", map[string]any{
		"id":        campaign.CampaignID,
		"name":      "Spring",
		"isActive":  true,
		"maxNumber": 100,
		"subdomain": "MySite",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	calls := env.notifier.take()
	require.Len(t, calls, 1)
	assert.Equal(t, "MySite", calls[0].ResourceID)
	assert.Equal(t, "Spring", calls[0].Slug)

	intruder := secondUser(t)
	resp, _ = doJSON(t, intruder, http.MethodDelete, env.baseURL+"/api/campaign?campaignId="+campaign.CampaignID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, 1, countRows(t, "campaigns", "id = ?", mustParseID(t, campaign.CampaignID)))
	assert.Empty(t, env.notifier.take())

	resp, body = doJSON(t, intruder, http.MethodGet, env.baseURL+"/api/application?appId="+created.SiteID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))

	resp, _ = doJSON(t, owner, http.MethodDelete, env.baseURL+"/api/campaign?campaignId="+campaign.CampaignID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	calls = env.notifier.take()
	require.Len(t, calls, 1)
	assert.Equal(t, "https://MySite.vercel.pub", calls[0].Hostname)

	appID := mustParseID(t, created.SiteID)
	require.NoError(t, env.db.Create(&postdomain.Post{
		ID:            snowflake.ID(time.Now().UnixNano()),
		ApplicationID: appID,
		Title:         "hello",
		Slug:          "hello",
		Published:     true,
	}).Error)

	resp, body = doJSON(t, owner, http.MethodGet, env.baseURL+"/api/campaign?appId="+created.SiteID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var overview struct {
		Campaigns []postdomain.Post      `json:"campaigns"`
		App       *appdomain.Application `json:"app"`
	}
	require.NoError(t, json.Unmarshal(body, &overview))
	assert.Len(t, overview.Campaigns, 1)
	require.NotNil(t, overview.App)

	resp, _ = doJSON(t, owner, http.MethodDelete, env.baseURL+"/api/application?appId="+created.SiteID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, countRows(t, "applications", "id = ?", appID))
	assert.Zero(t, countRows(t, "posts", "application_id = ?", appID))
}

func TestE2E_RepeatedQueryParamRejected(t *testing.T) {
	owner := login(t, adminEmail, adminPassword)

	resp, _ := doJSON(t, owner, http.MethodGet, env.baseURL+"/api/application?appId=a&appId=b", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestE2E_MethodNotAllowed(t *testing.T) {
	resp, _ := doJSON(t, newHTTPClient(), http.MethodPatch, env.baseURL+"/api/campaign", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Allow"))
}

func startEnv() (*testEnv, error) {
	var (
		engine  *gin.Engine
		dbConn  *gorm.DB
		authsvc authdomain.Service
	)
	notifier := &recordingNotifier{}

	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(db.NewTest),
		clock.Module,
		migration.Module,
		auth.Module,
		post.Module,
		application.Module,
		campaign.Module,
		ratelimit.Module,
		fx.Provide(func() revalidate.Notifier { return notifier }),
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		fx.Provide(server.NewEngine),
		fx.Invoke(server.NewServer),
		fx.Populate(&engine, &dbConn, &authsvc),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, err
	}

	httpSrv := httptest.NewServer(engine)
	return &testEnv{
		app:      app,
		db:       dbConn,
		authsvc:  authsvc,
		notifier: notifier,
		baseURL:  httpSrv.URL,
		httpSrv:  httpSrv,
	}, nil
}

func (e *testEnv) shutdown() {
	if e == nil {
		return
	}
	if e.httpSrv != nil {
		e.httpSrv.Close()
	}
	if e.app != nil {
		_ = e.app.Stop(context.Background())
	}
}

func setDefaultEnv() {
	setEnvIfEmpty("ENVIRONMENT", "test")
	setEnvIfEmpty("AUTH_COOKIE_SECURE", "false")
	setEnvIfEmpty("LOG_LEVEL", "error")
	setEnvIfEmpty("OTEL_ENABLED", "false")
	setEnvIfEmpty("RATE_LIMIT_ENABLED", "false")
	setEnvIfEmpty("BOOTSTRAP_ADMIN_EMAIL", adminEmail)
	setEnvIfEmpty("BOOTSTRAP_ADMIN_PASSWORD", adminPassword)
}

func setEnvIfEmpty(key, value string) {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return
	}
	_ = os.Setenv(key, value)
}

func login(t *testing.T, email, password string) *http.Client {
	t.Helper()
	client := newHTTPClient()

	resp, body := doJSON(t, client, http.MethodPost, env.baseURL+"/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	return client
}

func secondUser(t *testing.T) *http.Client {
	t.Helper()
	email := fmt.Sprintf("intruder-%d@campaignhub.test", time.Now().UnixNano())
	_, err := env.authsvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    email,
		Password: "intruder-password",
	})
	require.NoError(t, err)
	return login(t, email, "intruder-password")
}

func countRows(t *testing.T, table string, where string, args ...any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Table(table).Where(where, args...).Count(&count).Error)
	return count
}

func mustParseID(t *testing.T, value string) snowflake.ID {
	t.Helper()
	id, err := snowflake.ParseString(value)
	require.NoError(t, err)
	return id
}

func doJSON(t *testing.T, client *http.Client, method, reqURL string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, reqURL, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func newHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}
