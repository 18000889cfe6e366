package genotype

import (
	"fmt"
	"slices"

	"github.com/samber/oops"

	"neatauth/internal/encoder"
	"neatauth/internal/nn"
)

const (
	ConnectivityFull       = "full"
	ConnectivityFullDirect = "full_direct"
	ConnectivityPartial    = "partial"

	DistributionUniform = "uniform"
	DistributionNormal  = "normal"
)

// CodeInvalidConfig tags factory configuration errors.
const CodeInvalidConfig = "CONFIG_INVALID_GENOME"

// Distribution describes how weights or biases are drawn. Normal draws are
// clamped to [Min, Max].
type Distribution struct {
	Kind  string  `koanf:"kind" json:"kind" yaml:"kind"`
	Min   float64 `koanf:"min" json:"min" yaml:"min"`
	Max   float64 `koanf:"max" json:"max" yaml:"max"`
	Mean  float64 `koanf:"mean" json:"mean" yaml:"mean"`
	Stdev float64 `koanf:"stdev" json:"stdev" yaml:"stdev"`
}

// Config pins the shape of every provisioned genome. Provisioning and later
// evaluation must use the same values.
type Config struct {
	Inputs                int          `koanf:"inputs" json:"inputs" yaml:"inputs"`
	Hidden                int          `koanf:"hidden" json:"hidden" yaml:"hidden"`
	Outputs               int          `koanf:"outputs" json:"outputs" yaml:"outputs"`
	Activations           []string     `koanf:"activations" json:"activations" yaml:"activations"`
	Connectivity          string       `koanf:"connectivity" json:"connectivity" yaml:"connectivity"`
	ConnectionProbability float64      `koanf:"connection_probability" json:"connection_probability" yaml:"connection_probability"`
	Weight                Distribution `koanf:"weight" json:"weight" yaml:"weight"`
	Bias                  Distribution `koanf:"bias" json:"bias" yaml:"bias"`
}

func DefaultDistribution() Distribution {
	return Distribution{Kind: DistributionUniform, Min: -1, Max: 1, Mean: 0, Stdev: 0.5}
}

// DefaultConfig is the reference deployment shape: 256 inputs, 16 hidden
// neurons and 32 outputs, fully connected.
func DefaultConfig() Config {
	return Config{
		Inputs:                encoder.DefaultWidth,
		Hidden:                16,
		Outputs:               32,
		Activations:           []string{nn.ActivationTanh, nn.ActivationSigmoid},
		Connectivity:          ConnectivityFull,
		ConnectionProbability: 0.5,
		Weight:                DefaultDistribution(),
		Bias:                  DefaultDistribution(),
	}
}

func (c Config) Validate() error {
	errb := oops.Code(CodeInvalidConfig).In("genotype")
	if c.Inputs <= 0 {
		return errb.Errorf("inputs must be positive, got %d", c.Inputs)
	}
	if c.Hidden < 0 {
		return errb.Errorf("hidden must not be negative, got %d", c.Hidden)
	}
	if c.Outputs <= 0 {
		return errb.Errorf("outputs must be positive, got %d", c.Outputs)
	}
	if len(c.Activations) == 0 {
		return errb.Errorf("at least one activation is required")
	}
	for _, name := range c.Activations {
		if !nn.KnownActivation(name) {
			return errb.With("known", nn.ListActivations()).Errorf("unknown activation %q", name)
		}
	}
	switch c.Connectivity {
	case ConnectivityFull, ConnectivityFullDirect:
	case ConnectivityPartial:
		if !(c.ConnectionProbability >= 0 && c.ConnectionProbability <= 1) {
			return errb.Errorf("connection probability must be within [0,1], got %v", c.ConnectionProbability)
		}
	default:
		return errb.Errorf("unknown connectivity %q", c.Connectivity)
	}
	if err := c.Weight.validate("weight"); err != nil {
		return errb.Wrap(err)
	}
	if err := c.Bias.validate("bias"); err != nil {
		return errb.Wrap(err)
	}
	return nil
}

func (d Distribution) validate(field string) error {
	if !slices.Contains([]string{DistributionUniform, DistributionNormal}, d.Kind) {
		return fmt.Errorf("%s: unknown distribution %q", field, d.Kind)
	}
	if !nn.Finite(d.Min) || !nn.Finite(d.Max) || d.Min > d.Max {
		return fmt.Errorf("%s: invalid range [%v, %v]", field, d.Min, d.Max)
	}
	if d.Kind == DistributionNormal && (!nn.Finite(d.Mean) || !nn.Finite(d.Stdev) || d.Stdev < 0) {
		return fmt.Errorf("%s: invalid normal parameters mean=%v stdev=%v", field, d.Mean, d.Stdev)
	}
	return nil
}
