package whitelabel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/whitelabel"
)

type ServiceTestSuite struct {
	suite.Suite
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, &ServiceTestSuite{})
}

func (s *ServiceTestSuite) TestNewServiceAppliesOptions() {
	ctx, svc := whitelabel.NewService(
		whitelabel.WithName("storefront"),
		whitelabel.WithVersion("v0.3.0"),
		whitelabel.WithEnvironment("test"),
		whitelabel.WithNoopDriver(),
	)

	s.Equal("storefront", svc.Name())
	s.Equal("v0.3.0", svc.Version())
	s.Equal("test", svc.Environment())
	s.Same(svc, whitelabel.Svc(ctx))
	s.Nil(whitelabel.Svc(context.Background()))
}

func (s *ServiceTestSuite) TestConfigIsThreadedIntoContext() {
	cfg := &whitelabel.ConfigurationDefault{ServiceName: "storefront", ActiveBrandID: "brand-c"}

	ctx, svc := whitelabel.NewService(
		whitelabel.WithConfig(cfg),
		whitelabel.WithNoopDriver(),
	)

	s.Same(cfg, svc.Config())

	fromCtx := whitelabel.ConfigFromContext[*whitelabel.ConfigurationDefault](ctx)
	s.Require().NotNil(fromCtx)
	s.Equal("brand-c", fromCtx.ActiveBrandID)
}

func (s *ServiceTestSuite) TestRunWithNoopDriverReturnsCleanly() {
	ctx, svc := whitelabel.NewService(
		whitelabel.WithName("noop"),
		whitelabel.WithNoopDriver(),
	)

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx, ":0")
	}()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(5 * time.Second):
		s.Fail("service did not stop in time")
	}
}

func (s *ServiceTestSuite) TestCleanupMethodsRunOnStop() {
	ctx, svc := whitelabel.NewService(
		whitelabel.WithName("cleanup"),
		whitelabel.WithNoopDriver(),
	)

	var order []string
	svc.AddCleanupMethod(func(_ context.Context) { order = append(order, "first") })
	svc.AddCleanupMethod(func(_ context.Context) { order = append(order, "second") })

	svc.Stop(ctx)

	// Cleanup methods run newest first.
	s.Equal([]string{"second", "first"}, order)
}
