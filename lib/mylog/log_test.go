package mylog

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/shopperbot/lib/mycontext"
)

func captureLog(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	flags := log.Flags()
	log.SetOutput(buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
		Configure("text")
	})
	return buf
}

func TestLogger(t *testing.T) {
	t.Run("Standard", func(t *testing.T) {
		buf := captureLog(t)
		Configure("text")

		New("cart").Log(context.TODO(), "42", SeverityInfo, "added %s", "milo")

		assert.Contains(t, buf.String(), "cart - 42 - INFO - added milo")
	})

	t.Run("Structured", func(t *testing.T) {
		buf := captureLog(t)
		Configure("json")

		c := mycontext.ContextFromEvent(context.TODO(), 7, "abc")
		New("checkout").Log(c, "42", SeverityWarn, "cart empty")

		e := entry{}
		err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &e)
		assert.NoError(t, err)
		assert.Equal(t, "checkout", e.Component)
		assert.Equal(t, "WARN", e.Severity)
		assert.Equal(t, "event/7/abc", e.Trace)
		assert.Equal(t, "checkout:cart empty", e.Message)
		assert.Equal(t, "42", e.Labels["user"])
	})
}
