//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/astrachart/astrachart/internal/bootstrap"
	"github.com/astrachart/astrachart/internal/domain/chart"
	"github.com/astrachart/astrachart/internal/infra/config"
	httpiface "github.com/astrachart/astrachart/internal/interface/http"
	"github.com/astrachart/astrachart/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChartConfig,
		provideEphemerisGateway,
		provideResultCache,
		provideWheelRepository,
		provideSpecStore,
		chart.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
