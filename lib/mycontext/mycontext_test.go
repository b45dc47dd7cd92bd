package mycontext

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext(t *testing.T) {
	t.Run("From event", func(t *testing.T) {
		c := ContextFromEvent(context.TODO(), 42, "abc")
		assert.Equal(t, "event/42/abc", TraceFromContext(c))
	})

	t.Run("From http request", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "myproject")
		request, err := http.NewRequest(http.MethodGet, "/", nil)
		assert.NoError(t, err)
		request.Header.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b120001000/1;o=1")

		c := ContextFromHTTPRequest(request)
		assert.Equal(t, "projects/myproject/traces/105445aa7843bc8bf206b120001000", TraceFromContext(c))
	})

	t.Run("Without trace", func(t *testing.T) {
		assert.Equal(t, "", TraceFromContext(context.TODO()))
	})
}
