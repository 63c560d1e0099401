package whitelabel

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pitabwire/util"
)

type contextKey string

func (c contextKey) String() string {
	return "whitelabel/" + string(c)
}

const ctxKeyService = contextKey("serviceKey")

// Service holds together all application components.
// An instance of this type is scoped to stay for the lifetime of the
// application and is pushed and pulled from contexts to make it easy to
// pass around.
type Service struct {
	name          string
	version       string
	environment   string
	logger        *util.LogEntry
	handler       http.Handler
	driver        serverDriver
	configuration any
	cancelFunc    context.CancelFunc

	errorChannelMutex sync.Mutex
	errorChannel      chan error

	cleanup   func(ctx context.Context)
	startOnce sync.Once
	stopMutex sync.Mutex
}

type Option func(ctx context.Context, service *Service)

// NewService creates a new instance of Service with the supplied options.
// Internally it calls NewServiceWithContext and creates a background context for use.
func NewService(opts ...Option) (context.Context, *Service) {
	return NewServiceWithContext(context.Background(), opts...)
}

// NewServiceWithContext creates a new instance of Service with context and supplied options.
func NewServiceWithContext(ctx context.Context, opts ...Option) (context.Context, *Service) {
	// Listen for OS signals so that shutdown is graceful.
	ctx, signalCancelFunc := signal.NotifyContext(ctx,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	defaultLogger := util.Log(ctx)
	ctx = util.ContextWithLogger(ctx, defaultLogger)

	defaultCfg, _ := ConfigFromEnv[ConfigurationDefault]()

	service := &Service{
		cancelFunc:   signalCancelFunc,
		errorChannel: make(chan error, 1),
		logger:       defaultLogger,
	}

	if defaultCfg.ServiceName != "" {
		opts = append(opts, WithName(defaultCfg.ServiceName))
	}
	if defaultCfg.ServiceEnvironment != "" {
		opts = append(opts, WithEnvironment(defaultCfg.ServiceEnvironment))
	}
	if defaultCfg.ServiceVersion != "" {
		opts = append(opts, WithVersion(defaultCfg.ServiceVersion))
	}

	opts = append(opts, WithLogger())

	service.Init(ctx, opts...)

	ctx = SvcToContext(ctx, service)
	ctx = ConfigToContext(ctx, service.Config())
	ctx = util.ContextWithLogger(ctx, service.logger)
	return ctx, service
}

// SvcToContext pushes a service instance into the supplied context for easier propagation.
func SvcToContext(ctx context.Context, service *Service) context.Context {
	return context.WithValue(ctx, ctxKeyService, service)
}

// Svc obtains a service instance being propagated through the context.
func Svc(ctx context.Context) *Service {
	service, ok := ctx.Value(ctxKeyService).(*Service)
	if !ok {
		return nil
	}
	return service
}

// Name gets the name of the service.
func (s *Service) Name() string {
	return s.name
}

// WithName specifies the name the service will utilize.
func WithName(name string) Option {
	return func(_ context.Context, s *Service) {
		s.name = name
	}
}

// Version gets the release version of the service.
func (s *Service) Version() string {
	return s.version
}

// WithVersion specifies the version the service will utilize.
func WithVersion(version string) Option {
	return func(_ context.Context, s *Service) {
		s.version = version
	}
}

// Environment gets the runtime environment of the service.
func (s *Service) Environment() string {
	return s.environment
}

// WithEnvironment specifies the environment the service will utilize.
func WithEnvironment(environment string) Option {
	return func(_ context.Context, s *Service) {
		s.environment = environment
	}
}

// Config obtains the configuration object supplied at startup.
func (s *Service) Config() any {
	return s.configuration
}

// WithConfig specifies or overrides the configuration object of the service.
func WithConfig(config any) Option {
	return func(_ context.Context, s *Service) {
		s.configuration = config
	}
}

// WithLogger initializes the service logger from configuration.
func WithLogger(logOpts ...util.Option) Option {
	return func(ctx context.Context, s *Service) {
		opts := logOpts
		if s.Config() != nil {
			if config, ok := s.Config().(ConfigurationLogLevel); ok {
				logLevel, err := util.ParseLevel(config.LoggingLevel())
				if err == nil {
					opts = append(opts, util.WithLogLevel(logLevel))
				}
				opts = append(opts,
					util.WithLogTimeFormat(config.LoggingTimeFormat()),
					util.WithLogNoColor(!config.LoggingColored()))
			}
		}

		log := util.NewLogger(ctx, opts...)
		s.logger = log.WithField("service", s.Name())
	}
}

// Log returns the service logger bound to the supplied context.
func (s *Service) Log(ctx context.Context) *util.LogEntry {
	return s.logger.WithContext(ctx)
}

// Init evaluates the options provided as arguments and supplies them to the service object.
func (s *Service) Init(ctx context.Context, opts ...Option) {
	for _, opt := range opts {
		opt(ctx, s)
	}
}

// AddCleanupMethod adds user defined functions to be run just before completely stopping the service.
// These are responsible for properly and gracefully stopping active components.
func (s *Service) AddCleanupMethod(f func(ctx context.Context)) {
	s.stopMutex.Lock()
	defer s.stopMutex.Unlock()

	if s.cleanup == nil {
		s.cleanup = f
		return
	}

	old := s.cleanup
	s.cleanup = func(ctx context.Context) { f(ctx); old(ctx) }
}

// Run keeps the service useful by handling incoming requests.
func (s *Service) Run(ctx context.Context, address string) error {
	go func(ctx context.Context) {
		srvErr := s.initServer(ctx, address)
		s.sendStopError(ctx, srvErr)
	}(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err0 := <-s.errorChannel:
		if err0 != nil {
			s.Log(ctx).WithError(err0).Error("system exit in error")
			s.Stop(ctx)
		} else {
			s.Log(ctx).Debug("system exit")
		}
		return err0
	}
}

// Stop gracefully runs clean up methods ensuring all requests that
// were being handled are completed well without interruptions.
func (s *Service) Stop(ctx context.Context) {
	if !s.stopMutex.TryLock() {
		return
	}
	defer s.stopMutex.Unlock()

	s.Log(ctx).Info("service stopping")

	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	if s.cleanup != nil {
		s.cleanup(ctx)
	}

	s.errorChannelMutex.Lock()
	select {
	case _, ok := <-s.errorChannel:
		if !ok {
			s.errorChannelMutex.Unlock()
			return
		}
	default:
	}
	close(s.errorChannel)
	s.errorChannelMutex.Unlock()
}

func (s *Service) sendStopError(ctx context.Context, err error) {
	s.errorChannelMutex.Lock()
	defer s.errorChannelMutex.Unlock()

	select {
	case <-ctx.Done():
		return
	case <-s.errorChannel:
		// channel is already closed hence avoid
		return
	default:
		s.errorChannel <- err
	}
}
