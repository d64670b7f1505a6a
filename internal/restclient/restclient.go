// Package restclient implements the client side of the engine's REST
// surface. The server itself is out of scope (see resttest for a fixture
// double); this package only needs to issue the seven routes from spec §6 and
// hand the response back as an async RestCall, grounded on IRestClient.hpp.
package restclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/rlog"
)

var clientLog = rlog.For("restclient")

// DefaultServerAddr is the engine's default HTTP bind address (all
// interfaces, port 27018). It is not a listener configuration here, and the
// client takes only its port: New dials 127.0.0.1 on that port.
const DefaultServerAddr = "0.0.0.0:27018"

const defaultTimeout = 10 * time.Second

// RestClient is a thin net/http-based implementation of IRestClient: it
// issues RestRequests against a configured server address/port and returns
// a RestCall that finishes asynchronously on its own goroutine.
type RestClient struct {
	loop *eventloop.Loop

	httpClient *http.Client
	address    string
	port       uint16
}

// New constructs a RestClient targeting 127.0.0.1 on DefaultServerAddr's
// port (27018); every call it
// makes delivers its RestCall.Finished signal on loop.
func New(loop *eventloop.Loop) *RestClient {
	host, port := splitDefaultAddr()
	return &RestClient{
		loop:       loop,
		httpClient: &http.Client{Timeout: defaultTimeout},
		address:    host,
		port:       port,
	}
}

func splitDefaultAddr() (string, uint16) {
	return "127.0.0.1", 27018
}

// SetServerAddress sets the host (or host:port) of the target server.
func (c *RestClient) SetServerAddress(address string) {
	c.address = address
}

// SetServerPort sets the port of the target server.
func (c *RestClient) SetServerPort(port uint16) {
	c.port = port
}

// Execute issues request against the configured server on its own
// goroutine and returns immediately with a RestCall that finishes once the
// response (or a transport failure) arrives.
func (c *RestClient) Execute(request RestRequest) *RestCall {
	call := newRestCall(c.loop)

	url := fmt.Sprintf("http://%s:%d%s", c.address, c.port, request.Path().String())
	method := request.Type.httpMethod()
	body := request.Body()

	go func() {
		data, err := c.doRequest(method, url, body)
		if err != nil {
			clientLog.WithField("url", url).WithError(err).Warn("rest call failed")
			call.setResult(Error, "")
			return
		}
		call.setResult(Success, data)
	}()

	return call
}

func (c *RestClient) doRequest(method, url, body string) (string, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return "", err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("rest call to %s returned status %d", url, resp.StatusCode)
	}
	return string(data), nil
}
