// Package gateway adapts serverless function events to HTTP requests served
// from a standalone build directory.
//
// A Gateway owns one http.Server. It is constructed with New, started
// explicitly with Start and shut down with Stop; Handle only works in
// between.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/taskledger/internal/logging"
	"github.com/mesh-intelligence/taskledger/pkg/types"
)

// Defaults applied when the environment does not say otherwise.
const (
	DefaultPort        = 3000
	DefaultHost        = "0.0.0.0"
	DefaultContentType = "text/html; charset=utf-8"
)

// Event is an incoming function invocation.
type Event struct {
	HTTPMethod      string            `json:"httpMethod"`
	Path            string            `json:"path"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded,omitempty"`
}

// Response is the function result for an Event.
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded,omitempty"`
}

// Options configures a Gateway.
type Options struct {
	// Dir is served with http.FileServer when Handler is nil.
	Dir     string
	Handler http.Handler

	// Addr is host:port. Empty uses DefaultHost and DefaultPort.
	Addr string

	// KeepAliveTimeout bounds idle keep-alive connections. Zero keeps the
	// net/http default.
	KeepAliveTimeout time.Duration

	Logger *log.Logger
}

// OptionsFromEnv reads HOSTNAME, PORT and KEEP_ALIVE_TIMEOUT (milliseconds).
// Invalid values fall back to the defaults.
func OptionsFromEnv(dir string) Options {
	host := os.Getenv("HOSTNAME")
	if host == "" {
		host = DefaultHost
	}
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = DefaultPort
	}
	keepAlive, _ := ParseKeepAlive(os.Getenv("KEEP_ALIVE_TIMEOUT"))
	return Options{
		Dir:              dir,
		Addr:             net.JoinHostPort(host, strconv.Itoa(port)),
		KeepAliveTimeout: keepAlive,
	}
}

// maxKeepAliveMillis is the largest timeout a time.Duration can hold.
const maxKeepAliveMillis = float64(math.MaxInt64) / float64(time.Millisecond)

// ParseKeepAlive parses a keep-alive timeout given in milliseconds. Empty,
// non-numeric, negative and out-of-range values report false and leave the
// default.
func ParseKeepAlive(s string) (time.Duration, bool) {
	ms, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || ms < 0 || ms >= maxKeepAliveMillis || math.IsNaN(ms) {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}

// Gateway serves the build directory and forwards events to it.
type Gateway struct {
	opts   Options
	logger *log.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	group    *errgroup.Group
	client   *http.Client
}

// New creates a stopped Gateway.
func New(opts Options) *Gateway {
	if opts.Addr == "" {
		opts.Addr = net.JoinHostPort(DefaultHost, strconv.Itoa(DefaultPort))
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gateway{opts: opts, logger: logger}
}

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.srv != nil {
		return types.ErrGatewayStarted
	}

	handler := g.opts.Handler
	if handler == nil {
		if g.opts.Dir == "" {
			return errors.New("gateway needs a directory or a handler")
		}
		info, err := os.Stat(g.opts.Dir)
		if err != nil {
			return fmt.Errorf("gateway directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("gateway directory %s is not a directory", g.opts.Dir)
		}
		handler = http.FileServer(http.Dir(g.opts.Dir))
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", g.opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       g.opts.KeepAliveTimeout,
	}

	group := new(errgroup.Group)
	group.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.srv = srv
	g.listener = ln
	g.group = group
	g.client = &http.Client{
		Transport: &http.Transport{},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	g.logger.Info("gateway listening", "addr", ln.Addr().String(), "dir", g.opts.Dir)
	return nil
}

// Addr returns the bound listener address, or "" when stopped.
func (g *Gateway) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Stop shuts the server down and waits for the serve goroutine. Stopping a
// stopped gateway is a no-op.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv, group, client := g.srv, g.group, g.client
	g.srv, g.listener, g.group, g.client = nil, nil, nil, nil
	g.mu.Unlock()

	if srv == nil {
		return nil
	}

	shutdownErr := srv.Shutdown(ctx)
	serveErr := group.Wait()
	client.CloseIdleConnections()
	g.logger.Info("gateway stopped")
	return errors.Join(shutdownErr, serveErr)
}

// Handle forwards ev to the running server. Transport and protocol failures
// become a 500 Response; the only error returned is ErrGatewayNotStarted.
func (g *Gateway) Handle(ctx context.Context, ev Event) (Response, error) {
	g.mu.Lock()
	client, ln := g.client, g.listener
	g.mu.Unlock()

	if client == nil {
		return Response{}, types.ErrGatewayNotStarted
	}

	resp, err := g.forward(ctx, client, dialAddr(ln.Addr()), ev)
	if err != nil {
		g.logger.Error("function event failed", "method", ev.HTTPMethod, "path", ev.Path, "err", err)
		return errorResponse(err), nil
	}
	return resp, nil
}

func (g *Gateway) forward(ctx context.Context, client *http.Client, addr string, ev Event) (Response, error) {
	method := ev.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	path := ev.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return Response{}, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}

	req, err := http.NewRequestWithContext(ctx, method, "http://"+addr+path, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	for k, v := range ev.Headers {
		if strings.EqualFold(k, "host") {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	out := Response{
		StatusCode: res.StatusCode,
		Headers:    map[string]string{"Content-Type": DefaultContentType},
	}
	for k, vs := range res.Header {
		out.Headers[k] = strings.Join(vs, ", ")
	}
	if utf8.Valid(data) {
		out.Body = string(data)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(data)
		out.IsBase64Encoded = true
	}
	g.logger.Debug("function event", "method", method, "path", path, "status", out.StatusCode)
	return out, nil
}

// dialAddr turns a wildcard listen address into a loopback one.
func dialAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return addr.String()
	}
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(tcp.Port))
}

func errorResponse(err error) Response {
	body, _ := json.Marshal(map[string]string{
		"error":   "Internal Server Error",
		"message": err.Error(),
	})
	return Response{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
