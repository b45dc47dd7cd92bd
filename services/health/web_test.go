package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopperbot/lib/mytime"
)

func newRouter(t *testing.T, ctrl *gomock.Controller) *mux.Router {
	nower := mytime.NewMockNower(ctrl)
	gomock.InOrder(
		nower.EXPECT().Now().Return(mytime.ExampleTime),
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(90*time.Minute)).AnyTimes(),
	)

	router := mux.NewRouter()
	NewService(nower).RegisterEndpoints(context.TODO(), router)
	return router
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/", "/health", "/anything/else"} {
		t.Run(path, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// given
			router := newRouter(t, ctrl)
			request, err := http.NewRequest(http.MethodGet, path, nil)
			require.NoError(t, err)
			response := httptest.NewRecorder()

			// when
			router.ServeHTTP(response, request)

			// then
			assert.Equal(t, http.StatusOK, response.Code)
			assert.Equal(t, "text/plain; charset=utf-8", response.Header().Get("Content-Type"))
			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)
			assert.Equal(t, "OK", string(body))
		})
	}
}

func TestHealthRejectsPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	router := newRouter(t, ctrl)
	request, err := http.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, err)
	response := httptest.NewRecorder()

	// when
	router.ServeHTTP(response, request)

	// then
	assert.Equal(t, http.StatusMethodNotAllowed, response.Code)
}

func TestStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	router := newRouter(t, ctrl)
	request, err := http.NewRequest(http.MethodGet, "/status", nil)
	require.NoError(t, err)
	response := httptest.NewRecorder()

	// when
	router.ServeHTTP(response, request)

	// then
	assert.Equal(t, http.StatusOK, response.Code)
	status := Status{}
	err = json.Unmarshal(response.Body.Bytes(), &status)
	require.NoError(t, err)
	assert.Equal(t, "OK", status.Status)
	assert.Equal(t, "1h30m0s", status.Uptime)
	assert.True(t, mytime.ExampleTime.Equal(status.StartedAt))
}

func TestServeStopsOnCancel(t *testing.T) {
	// given
	c, cancel := context.WithCancel(context.TODO())
	done := make(chan error, 1)
	go func() {
		done <- Serve(c, "0", mux.NewRouter())
	}()

	// when
	cancel()

	// then
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
