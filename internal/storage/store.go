package storage

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"neatauth/internal/model"
)

// Store persists genomes keyed by the identity they were provisioned for.
// Lookups report absence with ok=false rather than an error.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, genome model.Genome) error
	GetGenome(ctx context.Context, identity string) (model.Genome, bool, error)
	DeleteGenome(ctx context.Context, identity string) error
}

const (
	CodeStoreUnsupported    = "STORE_UNSUPPORTED"
	CodeStoreNotInitialized = "STORE_NOT_INITIALIZED"
	CodeStoreIO             = "STORE_IO"
	CodeStoreConfig         = "STORE_CONFIG"
)

var ErrNotInitialized = errors.New("store is not initialized")

// Load fetches the genome for identity and turns absence into
// model.ErrNotFound.
func Load(ctx context.Context, store Store, identity string) (model.Genome, error) {
	genome, ok, err := store.GetGenome(ctx, identity)
	if err != nil {
		return model.Genome{}, err
	}
	if !ok {
		return model.Genome{}, oops.
			Code(model.CodeNotFound).
			In("storage").
			With("identity", identity).
			Wrapf(model.ErrNotFound, "no genome for identity")
	}
	return genome, nil
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

func notInitialized(backend string) error {
	return oops.
		Code(CodeStoreNotInitialized).
		In("storage").
		With("backend", backend).
		Wrap(ErrNotInitialized)
}

func ioError(backend, op, identity string, err error) error {
	return oops.
		Code(CodeStoreIO).
		In("storage").
		With("backend", backend, "op", op, "identity", identity).
		Wrapf(err, "%s %s", backend, op)
}
