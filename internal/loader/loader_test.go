package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/models"
	"github.com/pricetracker/web/internal/schema"
	"github.com/pricetracker/web/internal/session"
)

type route func(sess session.Session, payload any) (*backend.Response, error)

// fakeAPI answers loader requests from a table of routes
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]route
	calls  []string
}

func (f *fakeAPI) call(sess session.Session, path string, payload any) (*backend.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	r, ok := f.routes[path]
	f.mu.Unlock()
	if !ok {
		return &backend.Response{StatusCode: http.StatusNotFound}, nil
	}
	return r(sess, payload)
}

func (f *fakeAPI) Get(_ context.Context, sess session.Session, path string) (*backend.Response, error) {
	return f.call(sess, path, nil)
}

func (f *fakeAPI) PostJSON(_ context.Context, sess session.Session, path string, payload any) (*backend.Response, error) {
	return f.call(sess, path, payload)
}

func (f *fakeAPI) called(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == path {
			n++
		}
	}
	return n
}

func respond(status int, body string) route {
	return func(session.Session, any) (*backend.Response, error) {
		return &backend.Response{StatusCode: status, Body: []byte(body)}, nil
	}
}

func unreachable(session.Session, any) (*backend.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func newTestLoader(api Fetcher) (*Loader, *test.Hook) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hook := test.NewLocal(logger)
	return New(api, logger), hook
}

const userJSON = `{"_id": "665f", "role": "user", "email": "alice@example.com", "username": "alice", "createdAt": "2024-05-01T12:00:00Z"}`

var authed = session.Session{Token: "tok"}

func requirePageError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var pe *PageError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, status, pe.Status)
	assert.Equal(t, message, pe.Message)
}

func requireRedirect(t *testing.T, err error, location string) {
	t.Helper()
	var rd *Redirect
	require.ErrorAs(t, err, &rd)
	assert.Equal(t, http.StatusFound, rd.Status)
	assert.Equal(t, location, rd.Location)
}

func TestLayout(t *testing.T) {
	t.Run("loads user", func(t *testing.T) {
		api := &fakeAPI{routes: map[string]route{backend.AuthUserPath: respond(http.StatusOK, userJSON)}}
		l, _ := newTestLoader(api)

		data, err := l.Layout(context.Background(), authed)
		require.NoError(t, err)
		require.NotNil(t, data.AuthenticatedUser)
		assert.Equal(t, "alice", data.AuthenticatedUser.Username)
	})

	t.Run("anonymous redirects without calling the API", func(t *testing.T) {
		api := &fakeAPI{}
		l, _ := newTestLoader(api)

		_, err := l.Layout(context.Background(), session.Session{})
		requireRedirect(t, err, "/")
		assert.Zero(t, api.called(backend.AuthUserPath))
	})

	t.Run("rejected session redirects", func(t *testing.T) {
		api := &fakeAPI{routes: map[string]route{backend.AuthUserPath: respond(http.StatusUnauthorized, `{"detail": "Not authenticated"}`)}}
		l, _ := newTestLoader(api)

		_, err := l.Layout(context.Background(), authed)
		requireRedirect(t, err, "/")
	})

	t.Run("shape failure is fatal", func(t *testing.T) {
		api := &fakeAPI{routes: map[string]route{backend.AuthUserPath: respond(http.StatusOK, `{"_id": "1", "role": "root"}`)}}
		l, hook := newTestLoader(api)

		_, err := l.Layout(context.Background(), authed)
		requirePageError(t, err, http.StatusInternalServerError, MsgInvalidUser)
		assert.True(t, schema.IsValidationError(err))
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	})

	t.Run("transport failure", func(t *testing.T) {
		api := &fakeAPI{routes: map[string]route{backend.AuthUserPath: unreachable}}
		l, _ := newTestLoader(api)

		_, err := l.Layout(context.Background(), authed)
		requirePageError(t, err, http.StatusBadGateway, MsgAPIUnavailable)
	})
}

func TestParentRunsLayoutOnce(t *testing.T) {
	api := &fakeAPI{routes: map[string]route{backend.AuthUserPath: respond(http.StatusOK, userJSON)}}
	l, _ := newTestLoader(api)
	parent := l.Parent(authed)

	_, err := l.Dashboard(context.Background(), parent)
	require.NoError(t, err)
	_, err = l.ProductsAdd(context.Background(), parent)
	require.NoError(t, err)

	assert.Equal(t, 1, api.called(backend.AuthUserPath))
}

func TestDashboard(t *testing.T) {
	l, _ := newTestLoader(&fakeAPI{})

	t.Run("no authenticated user", func(t *testing.T) {
		parent := func(context.Context) (*LayoutData, error) { return &LayoutData{}, nil }
		data, err := l.Dashboard(context.Background(), parent)
		assert.Nil(t, data)
		requirePageError(t, err, http.StatusUnauthorized, MsgUnauthorizedDashboard)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("nil layout", func(t *testing.T) {
		parent := func(context.Context) (*LayoutData, error) { return nil, nil }
		_, err := l.Dashboard(context.Background(), parent)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("parent failure propagates", func(t *testing.T) {
		parent := func(context.Context) (*LayoutData, error) { return nil, RedirectTo(http.StatusFound, "/") }
		_, err := l.Dashboard(context.Background(), parent)
		requireRedirect(t, err, "/")
	})

	t.Run("authenticated", func(t *testing.T) {
		user := &models.User{ID: "1", Username: "alice"}
		parent := func(context.Context) (*LayoutData, error) { return &LayoutData{AuthenticatedUser: user}, nil }
		data, err := l.Dashboard(context.Background(), parent)
		require.NoError(t, err)
		assert.Same(t, user, data.AuthenticatedUser)
	})
}

func TestProductsAdd(t *testing.T) {
	l, _ := newTestLoader(&fakeAPI{})
	user := &models.User{ID: "1"}

	data, err := l.ProductsAdd(context.Background(), func(context.Context) (*LayoutData, error) {
		return &LayoutData{AuthenticatedUser: user}, nil
	})
	require.NoError(t, err)
	assert.Same(t, user, data.AuthUser)

	_, err = l.ProductsAdd(context.Background(), func(context.Context) (*LayoutData, error) {
		return &LayoutData{}, nil
	})
	assert.True(t, IsUnauthorized(err))
}

func TestConfigs(t *testing.T) {
	agents := respond(http.StatusOK, `{"_id": "default", "userAgents": ["Mozilla/5.0"]}`)
	proxies := respond(http.StatusOK, `{"_id": "default", "proxyServers": ["http://10.0.0.1:3128"]}`)

	t.Run("both succeed", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{
			backend.UserAgentsPath:   agents,
			backend.ProxyServersPath: proxies,
		}})

		data, err := l.Configs(context.Background(), authed)
		require.NoError(t, err)
		assert.Equal(t, []string{"Mozilla/5.0"}, data.UserAgents)
		assert.Equal(t, []string{"http://10.0.0.1:3128"}, data.ProxyServers)
	})

	t.Run("user agents fail independently", func(t *testing.T) {
		api := &fakeAPI{routes: map[string]route{
			backend.UserAgentsPath:   respond(http.StatusInternalServerError, `{"detail": "boom"}`),
			backend.ProxyServersPath: proxies,
		}}
		l, hook := newTestLoader(api)

		data, err := l.Configs(context.Background(), authed)
		require.NoError(t, err)
		assert.NotNil(t, data.UserAgents)
		assert.Empty(t, data.UserAgents)
		assert.Equal(t, []string{"http://10.0.0.1:3128"}, data.ProxyServers)
		assert.Equal(t, 1, api.called(backend.ProxyServersPath))

		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, "Error fetching user agents", hook.LastEntry().Message)
	})

	t.Run("proxy servers fail on transport and shape", func(t *testing.T) {
		for name, r := range map[string]route{
			"transport": unreachable,
			"shape":     respond(http.StatusOK, `{"proxyServers": "not-a-list"}`),
		} {
			t.Run(name, func(t *testing.T) {
				l, _ := newTestLoader(&fakeAPI{routes: map[string]route{
					backend.UserAgentsPath:   agents,
					backend.ProxyServersPath: r,
				}})

				data, err := l.Configs(context.Background(), authed)
				require.NoError(t, err)
				assert.Equal(t, []string{"Mozilla/5.0"}, data.UserAgents)
				assert.Equal(t, []string{}, data.ProxyServers)
			})
		}
	})

	t.Run("missing list field is empty", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{
			backend.UserAgentsPath:   respond(http.StatusOK, `{"_id": "default"}`),
			backend.ProxyServersPath: respond(http.StatusOK, `{"_id": "default"}`),
		}})

		data, err := l.Configs(context.Background(), authed)
		require.NoError(t, err)
		assert.Equal(t, []string{}, data.UserAgents)
		assert.Equal(t, []string{}, data.ProxyServers)
	})

	t.Run("fetches run concurrently", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)
		barrier := func(body string) route {
			return func(session.Session, any) (*backend.Response, error) {
				wg.Done()
				wg.Wait()
				return &backend.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
			}
		}
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{
			backend.UserAgentsPath:   barrier(`{"_id": "default", "userAgents": ["a"]}`),
			backend.ProxyServersPath: barrier(`{"_id": "default", "proxyServers": ["b"]}`),
		}})

		done := make(chan *ConfigsData, 1)
		go func() {
			data, _ := l.Configs(context.Background(), authed)
			done <- data
		}()

		select {
		case data := <-done:
			assert.Equal(t, []string{"a"}, data.UserAgents)
			assert.Equal(t, []string{"b"}, data.ProxyServers)
		case <-time.After(2 * time.Second):
			t.Fatal("sub-fetches did not run concurrently")
		}
	})
}

func TestProducts(t *testing.T) {
	user := &models.User{ID: "1"}
	parent := func(context.Context) (*LayoutData, error) { return &LayoutData{AuthenticatedUser: user}, nil }
	product := `{
		"id": "3f0c1d2e-4b5a-4c6d-8e7f-9a0b1c2d3e4f",
		"user_id": "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d",
		"platform": "ebay",
		"product_link": "https://www.ebay.com/itm/1",
		"product_name": "Camera",
		"product_image": "https://i.ebayimg.com/1.jpg",
		"created_at": "2024-06-01T09:00:00Z",
		"updated_at": "2024-06-01T09:00:00Z",
		"product_tracking": [{"price": 120, "timestamp": "2024-06-01T09:00:00Z"}]
	}`

	t.Run("lists products", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{backend.ProductsPath: respond(http.StatusOK, "["+product+"]")}})
		data, err := l.Products(context.Background(), authed, parent)
		require.NoError(t, err)
		require.Len(t, data.Products, 1)
		assert.Equal(t, models.PlatformEbay, data.Products[0].Platform)
	})

	t.Run("unauthorized redirects", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{backend.ProductsPath: respond(http.StatusUnauthorized, ``)}})
		_, err := l.Products(context.Background(), authed, parent)
		requireRedirect(t, err, "/")
	})

	t.Run("upstream error", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{backend.ProductsPath: respond(http.StatusServiceUnavailable, ``)}})
		_, err := l.Products(context.Background(), authed, parent)
		requirePageError(t, err, http.StatusBadGateway, MsgProductsUnavailable)
	})

	t.Run("shape failure", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{backend.ProductsPath: respond(http.StatusOK, `[{"id": "nope"}]`)}})
		_, err := l.Products(context.Background(), authed, parent)
		requirePageError(t, err, http.StatusInternalServerError, MsgInvalidProducts)
	})

	t.Run("guarded", func(t *testing.T) {
		api := &fakeAPI{}
		l, _ := newTestLoader(api)
		_, err := l.Products(context.Background(), authed, func(context.Context) (*LayoutData, error) { return &LayoutData{}, nil })
		assert.True(t, IsUnauthorized(err))
		assert.Zero(t, api.called(backend.ProductsPath))
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		api := &fakeAPI{routes: map[string]route{
			backend.ValidateResetTokenPath: func(_ session.Session, payload any) (*backend.Response, error) {
				req, ok := payload.(resetTokenRequest)
				require.True(t, ok)
				assert.Equal(t, "abc", req.Token)
				return &backend.Response{StatusCode: http.StatusOK, Body: []byte(`{"email": "alice@example.com", "username": "alice", "token": "abc", "id": "665f"}`)}, nil
			},
		}}
		l, _ := newTestLoader(api)

		data, err := l.PasswordReset(context.Background(), session.Session{}, "abc")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", data.ResetTokenData.Email)
		assert.Equal(t, "abc", data.ResetTokenData.Token)
	})

	t.Run("rejected token", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{
			backend.ValidateResetTokenPath: respond(http.StatusBadRequest, `{"detail": "expired"}`),
		}})
		_, err := l.PasswordReset(context.Background(), session.Session{}, "abc")
		requirePageError(t, err, http.StatusBadRequest, MsgInvalidToken)
	})

	t.Run("response missing email", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{
			backend.ValidateResetTokenPath: respond(http.StatusOK, `{"username": "alice", "token": "abc", "id": "665f"}`),
		}})
		data, err := l.PasswordReset(context.Background(), session.Session{}, "abc")
		assert.Nil(t, data)
		requirePageError(t, err, http.StatusBadRequest, MsgInvalidResponse)

		var ve *schema.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("email"))
	})

	t.Run("transport failure", func(t *testing.T) {
		l, _ := newTestLoader(&fakeAPI{routes: map[string]route{backend.ValidateResetTokenPath: unreachable}})
		_, err := l.PasswordReset(context.Background(), session.Session{}, "abc")
		requirePageError(t, err, http.StatusBadRequest, MsgInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		api := &fakeAPI{}
		l, _ := newTestLoader(api)
		_, err := l.PasswordReset(context.Background(), session.Session{}, " ")
		requirePageError(t, err, http.StatusBadRequest, MsgInvalidToken)
		assert.Zero(t, api.called(backend.ValidateResetTokenPath))
	})
}
