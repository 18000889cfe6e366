// Package credential implements the per-identity transform that stands in
// for a password hash: provisioning a genome for an identity and turning a
// secret into the digest stored as that identity's credential.
//
// Secrets and encoded vectors never reach logs, metrics or error context.
package credential

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/singleflight"

	"neatauth/internal/digest"
	"neatauth/internal/encoder"
	"neatauth/internal/genotype"
	"neatauth/internal/logging"
	"neatauth/internal/model"
	"neatauth/internal/nn"
	"neatauth/internal/storage"
)

const DefaultCacheSize = 1024

type Options struct {
	// Genome is the pinned factory configuration. Provisioning and every
	// later transform must agree on it.
	Genome genotype.Config
	// Width is the encoder width. Zero means Genome.Inputs.
	Width int
	// CacheSize bounds the compiled-network cache. Negative disables it.
	CacheSize int
	Logger    *slog.Logger
	Metrics   *Metrics
}

type Service struct {
	store   storage.Store
	genome  genotype.Config
	width   int
	logger  *slog.Logger
	metrics *Metrics
	cache   *networkCache
	compile singleflight.Group
}

func New(store storage.Store, opts Options) (*Service, error) {
	if store == nil {
		return nil, oops.In("credential").Errorf("store is required")
	}
	if err := opts.Genome.Validate(); err != nil {
		return nil, err
	}
	width := opts.Width
	if width == 0 {
		width = opts.Genome.Inputs
	}
	if width < 0 {
		return nil, oops.Code(genotype.CodeInvalidConfig).In("credential").Errorf("encoder width must be positive, got %d", width)
	}
	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Service{
		store:   store,
		genome:  opts.Genome,
		width:   width,
		logger:  logger.With("component", "credential"),
		metrics: metrics,
		cache:   newNetworkCache(size),
	}, nil
}

// Provision creates and persists the genome for identity, replacing any
// genome already stored for it. Callers own identity uniqueness.
func (s *Service) Provision(ctx context.Context, identity string) (err error) {
	started := time.Now()
	defer func() { s.finish(ctx, OpProvision, identity, started, err) }()

	genome, err := genotype.NewGenome(identity, s.genome)
	if err != nil {
		return err
	}
	if err := s.store.SaveGenome(ctx, genome); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "genome provisioned",
		"identity", identity,
		"neurons", len(genome.Neurons),
		"synapses", len(genome.Synapses))
	return nil
}

// Transform loads identity's genome and maps secret to its digest.
func (s *Service) Transform(ctx context.Context, identity string, secret []byte) (result string, err error) {
	started := time.Now()
	defer func() { s.finish(ctx, OpTransform, identity, started, err) }()

	return s.transform(ctx, identity, secret)
}

// Enroll provisions identity and returns the digest of secret, the value a
// caller stores as the new credential.
func (s *Service) Enroll(ctx context.Context, identity string, secret []byte) (result string, err error) {
	started := time.Now()
	defer func() { s.finish(ctx, OpEnroll, identity, started, err) }()

	genome, err := genotype.NewGenome(identity, s.genome)
	if err != nil {
		return "", err
	}
	if err := s.store.SaveGenome(ctx, genome); err != nil {
		return "", err
	}
	return s.transform(ctx, identity, secret)
}

// Verify reports whether secret transforms to want. An unknown identity is
// indistinguishable from a wrong secret: false with a nil error.
func (s *Service) Verify(ctx context.Context, identity string, secret []byte, want string) (bool, error) {
	started := time.Now()

	got, err := s.transform(ctx, identity, secret)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.metrics.observe(OpVerify, OutcomeNotFound, started)
		s.logger.DebugContext(ctx, "verify rejected", "identity", identity)
		return false, nil
	case err != nil:
		s.metrics.observe(OpVerify, outcomeOf(err), started)
		logging.LogError(ctx, s.logger, "verify failed", err)
		return false, err
	}

	match := digest.Equal(got, want)
	outcome := OutcomeOK
	if !match {
		outcome = OutcomeRejected
	}
	s.metrics.observe(OpVerify, outcome, started)
	s.logger.DebugContext(ctx, "verify finished", "identity", identity, "match", match)
	return match, nil
}

// Delete removes identity's genome. Deleting an unknown identity succeeds.
func (s *Service) Delete(ctx context.Context, identity string) (err error) {
	started := time.Now()
	defer func() { s.finish(ctx, OpDelete, identity, started, err) }()

	return s.store.DeleteGenome(ctx, identity)
}

// Inspect summarizes identity's stored genome.
func (s *Service) Inspect(ctx context.Context, identity string) (summary model.Summary, err error) {
	started := time.Now()
	defer func() { s.finish(ctx, OpInspect, identity, started, err) }()

	genome, err := storage.Load(ctx, s.store, identity)
	if err != nil {
		return model.Summary{}, err
	}
	fingerprint, err := storage.Fingerprint(genome)
	if err != nil {
		return model.Summary{}, oops.In("credential").With("identity", identity).Wrap(err)
	}
	return Summarize(genome, fingerprint), nil
}

// CachedNetworks reports how many compiled networks are held.
func (s *Service) CachedNetworks() int {
	return s.cache.len()
}

func (s *Service) transform(ctx context.Context, identity string, secret []byte) (string, error) {
	genome, err := storage.Load(ctx, s.store, identity)
	if err != nil {
		return "", err
	}
	network, fingerprint, err := s.network(genome)
	if err != nil {
		return "", err
	}
	outputs, err := network.Evaluate(encoder.Encode(secret, s.width))
	if err != nil {
		return "", oops.In("credential").With("identity", identity, "fingerprint", fingerprint).Wrap(err)
	}
	s.logger.DebugContext(ctx, "transform evaluated", "identity", identity, "fingerprint", fingerprint)
	return digest.Reduce(outputs), nil
}

// network returns the compiled form of genome, compiling each distinct
// fingerprint once even under concurrent callers.
func (s *Service) network(genome model.Genome) (*nn.Network, string, error) {
	fingerprint, err := storage.Fingerprint(genome)
	if err != nil {
		return nil, "", oops.In("credential").With("identity", genome.ID).Wrap(err)
	}
	if network, ok := s.cache.get(fingerprint); ok {
		return network, fingerprint, nil
	}

	v, err, _ := s.compile.Do(fingerprint, func() (any, error) {
		if network, ok := s.cache.get(fingerprint); ok {
			return network, nil
		}
		network, err := nn.Compile(genome)
		if err != nil {
			return nil, err
		}
		s.metrics.CacheEntries.Set(float64(s.cache.put(fingerprint, network)))
		return network, nil
	})
	if err != nil {
		return nil, "", err
	}
	return v.(*nn.Network), fingerprint, nil
}

func (s *Service) finish(ctx context.Context, op, identity string, started time.Time, err error) {
	s.metrics.observe(op, outcomeOf(err), started)
	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "operation finished", "operation", op, "identity", identity)
	case errors.Is(err, model.ErrNotFound):
		s.logger.InfoContext(ctx, "genome not found", "operation", op, "identity", identity)
	default:
		logging.LogError(ctx, s.logger, op+" failed", err)
	}
}

// Summarize builds the operator view of genome.
func Summarize(genome model.Genome, fingerprint string) model.Summary {
	summary := model.Summary{
		ID:            genome.ID,
		Fingerprint:   fingerprint,
		SchemaVersion: genome.SchemaVersion,
		Synapses:      len(genome.Synapses),
		Activations:   make(map[string]int),
	}
	for _, neuron := range genome.Neurons {
		switch neuron.Role {
		case model.RoleInput:
			summary.Inputs++
			continue
		case model.RoleHidden:
			summary.Hidden++
		case model.RoleOutput:
			summary.Outputs++
		}
		summary.Activations[neuron.Activation]++
	}
	for _, synapse := range genome.Synapses {
		if synapse.Enabled {
			summary.Enabled++
		}
	}
	return summary
}
