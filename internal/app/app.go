// Package app builds the catalog against the configured storage backend.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jacentio/catalog/catalog"
	"github.com/jacentio/catalog/internal/config"
	"github.com/jacentio/catalog/store"
	"github.com/jacentio/catalog/store/dynamo"
	"github.com/jacentio/catalog/store/memory"
	"github.com/jacentio/catalog/store/sqlstore"
)

// tableNames lists every logical table the catalog uses.
var tableNames = []string{
	catalog.BrandsTable,
	catalog.CategoriesTable,
	catalog.ProductsTable,
	catalog.UsersTable,
}

// App is an opened backend.
type App struct {
	Catalog *catalog.Catalog

	closers []func() error
}

// Close releases backend connections.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open connects to the configured backend and wires the catalog.
// Tables are not created; run Migrate first for persistent backends.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	storeCfg := storeConfig(cfg)

	switch cfg.Backend {
	case config.BackendMemory:
		return &App{Catalog: catalog.New(MemoryTables())}, nil

	case config.BackendDynamoDB:
		client, err := NewDynamoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &App{Catalog: catalog.New(DynamoTables(client, storeCfg))}, nil

	case config.BackendPostgres:
		db, err := sqlstore.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &App{
			Catalog: catalog.New(SQLTables(db, storeCfg)),
			closers: []func() error{func() error { return closeDB(db) }},
		}, nil

	default:
		return nil, fmt.Errorf("app: unknown backend %q", cfg.Backend)
	}
}

// Migrate creates the tables the configured backend needs.
func Migrate(ctx context.Context, cfg config.Config) error {
	storeCfg := storeConfig(cfg)

	switch cfg.Backend {
	case config.BackendMemory:
		return nil

	case config.BackendDynamoDB:
		client, err := NewDynamoClient(ctx, cfg)
		if err != nil {
			return err
		}
		log.Info().Strs("tables", tableNames).Str("prefix", cfg.TablePrefix).Msg("ensuring dynamodb tables")
		return dynamo.EnsureTables(ctx, client, storeCfg, tableNames...)

	case config.BackendPostgres:
		db, err := sqlstore.Open(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer closeDB(db)
		log.Info().Strs("tables", tableNames).Str("prefix", cfg.TablePrefix).Msg("migrating postgres tables")
		return sqlstore.AutoMigrate(db, storeCfg,
			catalog.Brand{}, catalog.Category{}, catalog.Product{}, catalog.User{})

	default:
		return fmt.Errorf("app: unknown backend %q", cfg.Backend)
	}
}

// MemoryTables returns fresh in-memory tables sharing one DB.
func MemoryTables() catalog.Tables {
	db := memory.NewDB()
	return catalog.Tables{
		Brands:     memory.NewTable[catalog.Brand](db, catalog.BrandsTable),
		Categories: memory.NewTable[catalog.Category](db, catalog.CategoriesTable),
		Products:   memory.NewTable[catalog.Product](db, catalog.ProductsTable),
		Users:      memory.NewTable[catalog.User](db, catalog.UsersTable),
	}
}

// DynamoTables returns DynamoDB-backed tables.
func DynamoTables(client dynamo.API, cfg store.Config) catalog.Tables {
	return catalog.Tables{
		Brands:     dynamo.NewTable[catalog.Brand](client, cfg, catalog.BrandsTable),
		Categories: dynamo.NewTable[catalog.Category](client, cfg, catalog.CategoriesTable),
		Products:   dynamo.NewTable[catalog.Product](client, cfg, catalog.ProductsTable),
		Users:      dynamo.NewTable[catalog.User](client, cfg, catalog.UsersTable),
	}
}

// SQLTables returns gorm-backed tables.
func SQLTables(db *gorm.DB, cfg store.Config) catalog.Tables {
	return catalog.Tables{
		Brands:     sqlstore.NewTable[catalog.Brand](db, cfg, catalog.BrandsTable),
		Categories: sqlstore.NewTable[catalog.Category](db, cfg, catalog.CategoriesTable),
		Products:   sqlstore.NewTable[catalog.Product](db, cfg, catalog.ProductsTable),
		Users:      sqlstore.NewTable[catalog.User](db, cfg, catalog.UsersTable),
	}
}

// NewDynamoClient loads AWS credentials the standard way. A configured
// endpoint points the client at DynamoDB Local or another emulator.
func NewDynamoClient(ctx context.Context, cfg config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

// NewRedis returns a client for the rate limiter, or nil when no address
// is configured.
func NewRedis(cfg config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

func storeConfig(cfg config.Config) store.Config {
	c := store.DefaultConfig()
	c.TablePrefix = cfg.TablePrefix
	c.UniqueTable = cfg.TablePrefix + c.UniqueTable
	return c
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
