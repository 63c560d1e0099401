package whitelabel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultHTTPReadTimeoutSeconds  = 15
	defaultHTTPWriteTimeoutSeconds = 15
	defaultHTTPIdleTimeoutSeconds  = 60

	shutdownGraceDuration = 10 * time.Second
)

type serverDriver interface {
	ListenAndServe(addr string, h http.Handler) error
	Shutdown(ctx context.Context) error
}

type noopDriver struct{}

func (t *noopDriver) ListenAndServe(_ string, _ http.Handler) error {
	return nil
}

func (t *noopDriver) Shutdown(_ context.Context) error {
	return nil
}

type defaultDriver struct {
	errorGroup *errgroup.Group
	httpServer *http.Server
	listener   net.Listener
}

// ListenAndServe sets the address and handler on the driver's http.Server,
// then serves until the server is shut down.
func (dd *defaultDriver) ListenAndServe(addr string, h http.Handler) error {
	dd.httpServer.Addr = addr
	dd.httpServer.Handler = h

	dd.errorGroup.Go(func() error {
		var err error
		if dd.listener != nil {
			err = dd.httpServer.Serve(dd.listener)
		} else {
			err = dd.httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	return dd.errorGroup.Wait()
}

func (dd *defaultDriver) Shutdown(ctx context.Context) error {
	return dd.httpServer.Shutdown(ctx)
}

// WithHTTPHandler specifies an http handler that is used to handle inbound http requests.
func WithHTTPHandler(h http.Handler) Option {
	return func(_ context.Context, s *Service) {
		s.handler = h
	}
}

// WithServerListener specifies a user preferred listener instead of the default provided one.
func WithServerListener(listener net.Listener) Option {
	return func(_ context.Context, s *Service) {
		if dd, ok := s.driver.(*defaultDriver); ok {
			dd.listener = listener
			return
		}
		s.driver = &defaultDriver{listener: listener}
	}
}

// WithNoopDriver forces the underlying http driver to not listen on a port.
// This is mostly useful when writing tests against the service.
func WithNoopDriver() Option {
	return func(_ context.Context, s *Service) {
		s.driver = &noopDriver{}
	}
}

func (s *Service) determineHTTPPort(currentPort string) string {
	if currentPort != "" {
		return currentPort
	}

	config, ok := s.Config().(ConfigurationPorts)
	if !ok {
		return ":8080"
	}
	return config.HTTPPort()
}

// initServer wires the handler into the http driver and serves requests
// until the context is cancelled.
func (s *Service) initServer(ctx context.Context, httpPort string) error {
	httpPort = s.determineHTTPPort(httpPort)

	s.startOnce.Do(func() {
		if s.handler == nil {
			s.handler = http.DefaultServeMux
		}

		if s.driver == nil {
			s.driver = &defaultDriver{}
		}

		if dd, ok := s.driver.(*defaultDriver); ok {
			dd.errorGroup, _ = errgroup.WithContext(ctx)
			dd.httpServer = &http.Server{
				BaseContext: func(_ net.Listener) context.Context {
					return ctx
				},
				ReadTimeout:  defaultHTTPReadTimeoutSeconds * time.Second,
				WriteTimeout: defaultHTTPWriteTimeoutSeconds * time.Second,
				IdleTimeout:  defaultHTTPIdleTimeoutSeconds * time.Second,
			}
		}
	})

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGraceDuration)
		defer cancel()

		if err := s.driver.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("server shutdown was not clean")
		}
	}()

	s.Log(ctx).WithField("port", httpPort).Info("server starting")
	return s.driver.ListenAndServe(httpPort, s.handler)
}
