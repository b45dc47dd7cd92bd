package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcGrol/shopperbot/lib/myhttpclient"
	"github.com/MarcGrol/shopperbot/lib/mylog"
)

type Response struct {
	Status   int
	Body     []byte
	Endpoint string
}

// NetworkError is returned when neither the local nor the public endpoint completed the call.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable: %s", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

type endpoint struct {
	name    string
	baseURL string
	sender  myhttpclient.HTTPSender
}

// Gateway calls the colocated backend first and falls back once to the public one.
type Gateway struct {
	local  *endpoint
	public endpoint
	logger mylog.Logger
}

func NewGateway(localURL string, publicURL string, localTimeout time.Duration, publicTimeout time.Duration) *Gateway {
	var local myhttpclient.HTTPSender
	if localURL != "" {
		local = myhttpclient.New(localTimeout)
	}
	return newGateway(localURL, local, publicURL, myhttpclient.New(publicTimeout), mylog.New("gateway"))
}

func newGateway(localURL string, localSender myhttpclient.HTTPSender, publicURL string, publicSender myhttpclient.HTTPSender, logger mylog.Logger) *Gateway {
	g := &Gateway{
		public: endpoint{
			name:    "public",
			baseURL: publicURL,
			sender:  publicSender,
		},
		logger: logger,
	}
	if localURL != "" && localSender != nil {
		g.local = &endpoint{
			name:    "local",
			baseURL: localURL,
			sender:  localSender,
		}
	}
	return g
}

func (g *Gateway) Call(c context.Context, method string, path string, body []byte, headers map[string]string) (Response, error) {
	if g.local != nil {
		resp, err := g.attempt(c, *g.local, method, path, body, headers)
		if err == nil && resp.Status < 500 {
			return resp, nil
		}
		if err == nil {
			err = fmt.Errorf("local endpoint answered with status %d", resp.Status)
		}
		g.logger.Log(c, "", mylog.SeverityWarn, "Falling back to public endpoint for %s %s: %s", method, path, err)
	}

	resp, err := g.attempt(c, g.public, method, path, body, headers)
	if err != nil {
		return Response{}, &NetworkError{Cause: err}
	}
	return resp, nil
}

func (g *Gateway) attempt(c context.Context, ep endpoint, method string, path string, body []byte, headers map[string]string) (Response, error) {
	start := time.Now()
	status, respBody, err := ep.sender.Send(c, method, ep.baseURL+path, headers, body)
	took := time.Since(start)
	if err != nil {
		g.logger.Log(c, "", mylog.SeverityWarn, "%s %s via %s failed after %s: %s", method, path, ep.name, took, err)
		return Response{}, err
	}
	g.logger.Log(c, "", mylog.SeverityDebug, "%s %s via %s -> %d (%s)", method, path, ep.name, status, took)

	return Response{
		Status:   status,
		Body:     respBody,
		Endpoint: ep.name,
	}, nil
}
