// Command catalog-lambda serves the catalog API from AWS Lambda behind an
// API Gateway HTTP API. Configuration is read from the environment as for
// the catalog command; the dynamodb backend is the usual choice.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jacentio/catalog/catalog"
	"github.com/jacentio/catalog/httpapi"
	"github.com/jacentio/catalog/internal/app"
	"github.com/jacentio/catalog/internal/config"
	"github.com/jacentio/catalog/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel, "json")
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open backend")
	}
	if cfg.Seed {
		if _, err := catalog.Seed(ctx, a.Catalog); err != nil {
			log.Fatal().Err(err).Msg("seed sample data")
		}
	}

	opts := httpapi.Options{RateLimit: cfg.RateLimit}
	if rdb := app.NewRedis(cfg); rdb != nil {
		opts.Redis = rdb
	}

	lambda.Start(httpapi.LambdaHandler(httpapi.NewRouter(a.Catalog, opts)))
}
