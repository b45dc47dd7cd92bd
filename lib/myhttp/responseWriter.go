package myhttp

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
	"github.com/MarcGrol/shopperbot/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{})
	WriteText(c context.Context, w http.ResponseWriter, httpStatus int, text string)
}

type errorResponse struct {
	ErrorCode int
	Message   string
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error) {
	httpStatus := myerrors.GetHTTPStatus(err)
	rw.logger.Log(c, "", mylog.SeverityWarn, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)
	rw.write(w, httpStatus, errorResponse{
		ErrorCode: errorCode,
		Message:   err.Error(),
	})
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	rw.logger.Log(c, "", mylog.SeverityDebug, "Success response: http-status:%d", httpStatus)
	rw.write(w, httpStatus, resp)
}

// WriteText answers with a plain text body, as expected by platform probes.
func (rw responseWriter) WriteText(c context.Context, w http.ResponseWriter, httpStatus int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, err := w.Write([]byte(text))
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityWarn, "Error writing text response: %s", err)
	}
}

func (rw responseWriter) write(w http.ResponseWriter, httpStatus int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	err := encoder.Encode(resp)
	if err != nil {
		log.Printf("Error writing response: %s", err)
		return
	}
}
