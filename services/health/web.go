package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopperbot/lib/mycontext"
	"github.com/MarcGrol/shopperbot/lib/myhttp"
	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/lib/mytime"
)

type Status struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`
}

type webService struct {
	nower     mytime.Nower
	startedAt time.Time
	logger    mylog.Logger
}

// NewService answers the liveness probes of the hosting platform while the bot polls.
func NewService(nower mytime.Nower) *webService {
	return &webService{
		nower:     nower,
		startedAt: nower.Now(),
		logger:    mylog.New("health"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/status", s.statusPage()).Methods(http.MethodGet)
	router.PathPrefix("/").HandlerFunc(s.okPage()).Methods(http.MethodGet, http.MethodHead)
}

func (s *webService) okPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		myhttp.NewWriter(s.logger).WriteText(c, w, http.StatusOK, "OK")
	}
}

func (s *webService) statusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		myhttp.NewWriter(s.logger).Write(c, w, http.StatusOK, Status{
			Status:    "OK",
			StartedAt: s.startedAt,
			Uptime:    s.nower.Now().Sub(s.startedAt).Round(time.Second).String(),
		})
	}
}

// Serve runs the web server until c is cancelled.
func Serve(c context.Context, port string, router *mux.Router) error {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-c.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
