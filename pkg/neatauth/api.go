// Package neatauth is the embeddable client for per-identity genome
// transforms: provision a genome for an identity, turn secrets into digests
// and verify them.
package neatauth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"neatauth/internal/config"
	"neatauth/internal/credential"
	"neatauth/internal/model"
	"neatauth/internal/storage"
)

var (
	ErrNotFound        = model.ErrNotFound
	ErrShapeMismatch   = model.ErrShapeMismatch
	ErrMalformedGenome = model.ErrMalformedGenome
)

type GenomeSummary = model.Summary

type Options struct {
	// ConfigPath is an optional YAML config file. Empty means defaults only.
	ConfigPath string
	StoreKind  string
	StoreRoot  string
	StoreDSN   string
	Logger     *slog.Logger
	// Registerer receives the client's metrics. Nil skips registration.
	Registerer prometheus.Registerer
}

type Client struct {
	store   storage.Store
	service *credential.Service
}

func New(opts Options) (*Client, error) {
	cfg, err := config.Load(opts.ConfigPath, nil)
	if err != nil {
		return nil, err
	}
	if opts.StoreKind != "" {
		cfg.Store.Kind = opts.StoreKind
	}
	if opts.StoreRoot != "" {
		cfg.Store.Root = opts.StoreRoot
	}
	if opts.StoreDSN != "" {
		cfg.Store.DSN = opts.StoreDSN
	}
	cfg.ResolvePaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, opts.Logger, opts.Registerer)
}

// NewWithConfig builds a client from an already loaded configuration.
func NewWithConfig(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Client, error) {
	store, err := storage.NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	service, err := credential.New(store, credential.Options{
		Genome:    cfg.Genome,
		Width:     cfg.Encoder.Width,
		CacheSize: cfg.Cache.Size,
		Logger:    logger,
		Metrics:   credential.NewMetrics(reg),
	})
	if err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return &Client{store: store, service: service}, nil
}

// Init prepares the genome store. It must be called before any other method.
func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// NewIdentity returns a fresh random identity for callers that do not
// bring their own.
func NewIdentity() string {
	return uuid.NewString()
}

func (c *Client) Provision(ctx context.Context, identity string) error {
	return c.service.Provision(ctx, identity)
}

func (c *Client) Transform(ctx context.Context, identity string, secret []byte) (string, error) {
	return c.service.Transform(ctx, identity, secret)
}

func (c *Client) Enroll(ctx context.Context, identity string, secret []byte) (string, error) {
	return c.service.Enroll(ctx, identity, secret)
}

func (c *Client) Verify(ctx context.Context, identity string, secret []byte, digest string) (bool, error) {
	return c.service.Verify(ctx, identity, secret, digest)
}

func (c *Client) Delete(ctx context.Context, identity string) error {
	return c.service.Delete(ctx, identity)
}

func (c *Client) Inspect(ctx context.Context, identity string) (GenomeSummary, error) {
	return c.service.Inspect(ctx, identity)
}
