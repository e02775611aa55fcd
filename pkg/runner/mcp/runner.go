package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/nodewatch/pkg/feed"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// Runner coordinates MCP server startup.
type Runner struct {
	Control Controller
	Name    string
	Version string

	// FeedURL, when set, keeps the live view current from the push channel.
	FeedURL        string
	ReconnectDelay time.Duration
	Logger         logrus.FieldLogger

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.Control == nil {
		return errors.New("mcp runner requires a control client")
	}
	name := r.Name
	if name == "" {
		name = "nodewatch"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}
	log := r.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "mcp")

	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Inspect devices on the monitored network and block, schedule or cut them off via MCP."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := NewService(r.Control)
	registerResources(srv, svc)
	registerTools(srv, svc)

	var serve func(context.Context) error
	switch t := r.Transport; t {
	case "", TransportHTTP:
		serve = func(ctx context.Context) error { return r.serveHTTP(ctx, srv) }
	case TransportStdio:
		serve = func(context.Context) error { return server.ServeStdio(srv) }
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}

	// The feed stops with the server, and a failed server stops the feed.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	if r.FeedURL != "" {
		g.Go(func() error { return r.follow(ctx, svc, log) })
	}
	g.Go(func() error {
		defer cancel()
		return serve(ctx)
	})
	return g.Wait()
}

func (r Runner) follow(ctx context.Context, svc *Service, log logrus.FieldLogger) error {
	m := feed.New(feed.Options{
		URL:            r.FeedURL,
		ReconnectDelay: r.ReconnectDelay,
		Logger:         log,
		Handler: func(msg feed.Message) {
			u, ok := msg.(feed.DeviceUpdate)
			if !ok {
				return
			}
			if err := svc.Observe(u.Update); err != nil {
				log.WithError(err).Warn("discarding update")
			}
		},
		OnState: svc.SetLink,
	})
	return m.Run(ctx)
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	if (r.HTTPServerCert != "" && r.HTTPServerKey == "") || (r.HTTPServerCert == "" && r.HTTPServerKey != "") {
		return errors.New("both http tls cert and key must be provided")
	}

	handler := server.NewStreamableHTTPServer(srv)

	path := r.HTTPEndpointPath
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8080"
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.HTTPServerCert != "" && r.HTTPServerKey != "" {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
