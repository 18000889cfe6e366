package nn

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

const (
	ActivationIdentity = "identity"
	ActivationReLU     = "relu"
	ActivationTanh     = "tanh"
	ActivationSigmoid  = "sigmoid"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
)

type ActivationFunc func(x float64) float64

var activationRegistry = struct {
	mu sync.RWMutex
	m  map[string]ActivationFunc
}{
	m: make(map[string]ActivationFunc),
}

func init() {
	initializeBuiltInActivations()
}

// Built-ins are part of the digest contract: changing any of them changes
// every digest produced by genomes that reference it.
func initializeBuiltInActivations() {
	MustRegisterActivation(ActivationIdentity, func(x float64) float64 { return x })
	MustRegisterActivation(ActivationReLU, func(x float64) float64 {
		if x < 0 {
			return 0
		}
		return x
	})
	MustRegisterActivation(ActivationTanh, Tanh)
	MustRegisterActivation(ActivationSigmoid, Sigmoid)
}

func RegisterActivation(name string, fn ActivationFunc) error {
	if name == "" {
		return errors.New("activation name is required")
	}
	if fn == nil {
		return errors.New("activation function is required")
	}

	activationRegistry.mu.Lock()
	defer activationRegistry.mu.Unlock()

	if _, exists := activationRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrActivationExists, name)
	}
	activationRegistry.m[name] = fn
	return nil
}

func MustRegisterActivation(name string, fn ActivationFunc) {
	if err := RegisterActivation(name, fn); err != nil {
		panic(err)
	}
}

func GetActivation(name string) (ActivationFunc, error) {
	activationRegistry.mu.RLock()
	fn, ok := activationRegistry.m[name]
	activationRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrActivationNotFound, name)
	}
	return fn, nil
}

// KnownActivation reports whether name resolves in the registry.
func KnownActivation(name string) bool {
	_, err := GetActivation(name)
	return err == nil
}

func ListActivations() []string {
	activationRegistry.mu.RLock()
	defer activationRegistry.mu.RUnlock()

	names := make([]string, 0, len(activationRegistry.m))
	for name := range activationRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetActivationRegistryForTests() {
	activationRegistry.mu.Lock()
	activationRegistry.m = make(map[string]ActivationFunc)
	activationRegistry.mu.Unlock()
	initializeBuiltInActivations()
}
