package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neontask/internal/core/config"
	"neontask/internal/core/database"
	"neontask/internal/domain"
	"neontask/internal/repo"
	"neontask/internal/service"
	"neontask/internal/testutil"
	"neontask/internal/transport/http/handler"
	"neontask/internal/transport/http/router"
)

// newServer 真实的 API engine + 内存 SQLite
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	authSvc := service.NewAuthService(repo.NewUserRepo(db), testutil.NewJWTer(), nil, time.Minute)
	reg := router.NewRegistry(
		handler.NewHealth(func(ctx context.Context) error { return database.Ping(ctx, db) }),
		handler.NewAuth(authSvc),
		handler.NewTasks(service.NewTaskService(repo.NewTaskRepo(db))),
	)
	srv := httptest.NewServer(router.NewAPIEngine(zap.NewNop(), config.HTTP{}, authSvc, reg))
	t.Cleanup(srv.Close)
	return srv
}

type cli struct {
	t   *testing.T
	app *App
	out *bytes.Buffer
	api *API
	s   *Session
}

func newCLI(t *testing.T, baseURL, stdin string) *cli {
	t.Helper()
	s, err := OpenSession(filepath.Join(t.TempDir(), "session.yaml"))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	api := NewAPI(baseURL+"/api", nil)
	app := NewApp(api, s, strings.NewReader(stdin), out)
	app.readPassword = func(int) ([]byte, error) { return []byte("hunter2"), nil }
	return &cli{t: t, app: app, out: out, api: api, s: s}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	c.out.Reset()
	err := c.app.Run(context.Background(), args)
	return c.out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestCLIFullSession(t *testing.T) {
	srv := newServer(t)
	c := newCLI(t, srv.URL, "neo@matrix.io\nneo\n")

	out := c.mustRun("register")
	assert.Contains(t, out, "REGISTRATION SUCCESSFUL")
	assert.Contains(t, out, "WELCOME, neo")
	assert.NotEmpty(t, c.s.Token())

	out = c.mustRun("list")
	assert.Contains(t, out, "OPERATOR: neo")
	assert.Contains(t, out, "[ALL OPS 0]")
	assert.Contains(t, out, MsgNoOperations)

	out = c.mustRun("add", "-title", "jack in", "-due", "2030-01-02", "-desc", "node 7")
	assert.Contains(t, out, "[MEDIUM] jack in")
	c.mustRun("add", "-priority", "critical", "wake", "up")

	tasks, err := c.api.ListTasks(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "wake up", tasks[0].Title)
	assert.Equal(t, domain.PriorityCritical, tasks[0].Priority)
	jack := tasks[1]

	out = c.mustRun("advance", jack.ID)
	assert.Contains(t, out, "STANDBY -> IN_PROGRESS")
	c.mustRun("advance", jack.ID)
	out = c.mustRun("advance", jack.ID)
	assert.Contains(t, out, "EXECUTED -> STANDBY")

	out = c.mustRun("set", jack.ID, "-status", "executed", "-desc", "")
	assert.Contains(t, out, "EXECUTED")

	out = c.mustRun("list", "-status", "EXECUTED")
	assert.Contains(t, out, "[ALL OPS 2]")
	assert.Contains(t, out, "[EXECUTED 1]")
	assert.Contains(t, out, "jack in")
	assert.NotContains(t, out, "wake up")
	assert.NotContains(t, out, "node 7")

	out = c.mustRun("rm", jack.ID)
	assert.Contains(t, out, "OPERATION TERMINATED: "+jack.ID)

	_, err = c.run("rm", jack.ID)
	require.Error(t, err)
	assert.Equal(t, domain.MsgTaskNotFound, err.Error())

	c.mustRun("logout")
	assert.Empty(t, c.s.Token())
	_, err = c.run("list")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCLILoginShowsServerError(t *testing.T) {
	srv := newServer(t)
	c := newCLI(t, srv.URL, "")
	c.mustRun("register", "-email", "neo@matrix.io", "-handle", "neo", "-password", "hunter2")
	c.mustRun("logout")

	_, err := c.run("login", "-email", "neo@matrix.io", "-password", "wrong")
	require.Error(t, err)
	assert.Equal(t, domain.MsgInvalidCredentials, err.Error())

	out := c.mustRun("login", "-email", "neo@matrix.io")
	assert.Contains(t, out, "AUTHENTICATION SUCCESSFUL")
	assert.NotEmpty(t, c.s.Token())

	_, err = c.run("register", "-email", "neo@matrix.io", "-handle", "neo2", "-password", "x")
	require.Error(t, err)
	assert.Equal(t, domain.MsgConflict, err.Error())
}

func TestCLIInvalidTokenClearsSession(t *testing.T) {
	srv := newServer(t)
	c := newCLI(t, srv.URL, "")
	require.NoError(t, c.s.Save("forged", "mallory"))
	c.api.SetToken("forged")

	_, err := c.run("list")
	require.Error(t, err)
	assert.Equal(t, domain.MsgInvalidToken, err.Error())
	assert.True(t, IsUnauthorized(err))
	assert.Empty(t, c.s.Token())
}

func TestCLIHealth(t *testing.T) {
	srv := newServer(t)
	out := newCLI(t, srv.URL, "").mustRun("health")
	assert.Contains(t, out, "NeonTask v1.0.4")
	assert.Contains(t, out, "ONLINE")
	assert.Contains(t, out, "DATABASE CONNECTED")
}

func TestCLIUsage(t *testing.T) {
	c := newCLI(t, "http://127.0.0.1:1", "")
	for _, args := range [][]string{nil, {"bogus"}, {"advance"}, {"rm", "-x"}, {"add"}} {
		_, err := c.run(args...)
		assert.ErrorIs(t, err, ErrUsage, "%v", args)
	}
	out := c.mustRun("help")
	assert.Contains(t, out, "advance")
}

func TestAPIFallbackError(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer down.Close()

	_, err := NewAPI(down.URL, nil).Health(context.Background())
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadGateway, ae.Status)
	assert.Equal(t, fallbackError, ae.Message)

	// 连不上
	_, err = NewAPI("http://127.0.0.1:1", nil).Health(context.Background())
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, fallbackError, ae.Message)
}
