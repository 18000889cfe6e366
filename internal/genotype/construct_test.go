package genotype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neatauth/internal/model"
	"neatauth/internal/nn"
)

func TestNewGenomeIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()

	a, err := NewGenome("alice", cfg)
	require.NoError(t, err)
	b, err := NewGenome("alice", cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewGenome("bob", cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Synapses[0].Weight, c.Synapses[0].Weight)
}

func TestNewGenomeDefaultShape(t *testing.T) {
	cfg := DefaultConfig()
	genome, err := NewGenome("alice", cfg)
	require.NoError(t, err)
	require.NoError(t, nn.Validate(genome))

	assert.Equal(t, "alice", genome.ID)
	assert.Equal(t, model.CurrentSchemaVersion, genome.SchemaVersion)
	assert.Len(t, genome.InputIDs, 256)
	assert.Len(t, genome.OutputIDs, 32)
	assert.Len(t, genome.Neurons, 256+16+32)
	assert.Len(t, genome.Synapses, 256*16+16*32)
	assert.Equal(t, "in:0", genome.InputIDs[0])
	assert.Equal(t, "out:31", genome.OutputIDs[31])

	for _, neuron := range genome.Neurons {
		if neuron.Role == model.RoleInput {
			assert.Empty(t, neuron.Activation)
			continue
		}
		assert.Contains(t, cfg.Activations, neuron.Activation)
		assert.GreaterOrEqual(t, neuron.Bias, -1.0)
		assert.Less(t, neuron.Bias, 1.0)
	}
	for _, synapse := range genome.Synapses {
		assert.True(t, synapse.Enabled)
		assert.Equal(t, SynapseID(synapse.From, synapse.To), synapse.ID)
	}
}

// The expected values pin the construction draw order. A change here breaks
// every digest already issued.
func TestNewGenomeReferenceDraws(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inputs, cfg.Hidden, cfg.Outputs = 2, 1, 2
	cfg.Activations = []string{nn.ActivationIdentity, nn.ActivationReLU, nn.ActivationTanh}

	genome, err := NewGenome("alice", cfg)
	require.NoError(t, err)

	assert.Equal(t, []model.Neuron{
		{ID: "in:0", Role: model.RoleInput},
		{ID: "in:1", Role: model.RoleInput},
		{ID: "hid:0", Role: model.RoleHidden, Activation: "identity", Bias: -0.8724026738622759},
		{ID: "out:0", Role: model.RoleOutput, Activation: "relu", Bias: -0.5159828478322002},
		{ID: "out:1", Role: model.RoleOutput, Activation: "tanh", Bias: 0.5015520325125893},
	}, genome.Neurons)
	assert.Equal(t, []model.Synapse{
		{ID: "in:0->hid:0", From: "in:0", To: "hid:0", Weight: 0.48619624128492833, Enabled: true},
		{ID: "in:1->hid:0", From: "in:1", To: "hid:0", Weight: -0.35310727759200145, Enabled: true},
		{ID: "hid:0->out:0", From: "hid:0", To: "out:0", Weight: 0.23582607503675823, Enabled: true},
		{ID: "hid:0->out:1", From: "hid:0", To: "out:1", Weight: 0.318448579285189, Enabled: true},
	}, genome.Synapses)
}

func TestNewGenomePartialConnectivityReferenceDraws(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inputs, cfg.Hidden, cfg.Outputs = 3, 0, 2
	cfg.Activations = []string{nn.ActivationIdentity, nn.ActivationReLU}
	cfg.Connectivity = ConnectivityPartial

	genome, err := NewGenome("bob", cfg)
	require.NoError(t, err)
	require.NoError(t, nn.Validate(genome))

	assert.Equal(t, []model.Synapse{
		{ID: "in:0->out:0", From: "in:0", To: "out:0", Weight: -0.9010420609282213, Enabled: true},
		{ID: "in:1->out:1", From: "in:1", To: "out:1", Weight: -0.7278219049775585, Enabled: true},
		{ID: "in:2->out:1", From: "in:2", To: "out:1", Weight: -0.21702784981664425, Enabled: true},
	}, genome.Synapses)
	assert.Equal(t, 0.5231697845754308, genome.Neurons[3].Bias)
}

func TestNewGenomeConnectivityModes(t *testing.T) {
	tests := []struct {
		name     string
		hidden   int
		mode     string
		prob     float64
		synapses int
	}{
		{name: "full", hidden: 3, mode: ConnectivityFull, synapses: 4*3 + 3*2},
		{name: "full direct", hidden: 3, mode: ConnectivityFullDirect, synapses: 4*3 + 3*2 + 4*2},
		{name: "no hidden", hidden: 0, mode: ConnectivityFull, synapses: 4 * 2},
		{name: "no hidden direct", hidden: 0, mode: ConnectivityFullDirect, synapses: 4 * 2},
		{name: "partial none", hidden: 3, mode: ConnectivityPartial, prob: 0, synapses: 0},
		{name: "partial all", hidden: 3, mode: ConnectivityPartial, prob: 1, synapses: 4*3 + 3*2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Inputs, cfg.Hidden, cfg.Outputs = 4, tc.hidden, 2
			cfg.Connectivity = tc.mode
			cfg.ConnectionProbability = tc.prob

			genome, err := NewGenome("carol", cfg)
			require.NoError(t, err)
			require.NoError(t, nn.Validate(genome))
			assert.Len(t, genome.Synapses, tc.synapses)
		})
	}
}

func TestNewGenomeNormalDistributionIsClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inputs, cfg.Hidden, cfg.Outputs = 8, 4, 4
	cfg.Weight = Distribution{Kind: DistributionNormal, Min: -0.1, Max: 0.1, Mean: 0, Stdev: 10}

	genome, err := NewGenome("dave", cfg)
	require.NoError(t, err)
	for _, synapse := range genome.Synapses {
		assert.GreaterOrEqual(t, synapse.Weight, -0.1)
		assert.LessOrEqual(t, synapse.Weight, 0.1)
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := map[string]func(c *Config){
		"zero inputs":        func(c *Config) { c.Inputs = 0 },
		"negative hidden":    func(c *Config) { c.Hidden = -1 },
		"zero outputs":       func(c *Config) { c.Outputs = 0 },
		"no activations":     func(c *Config) { c.Activations = nil },
		"unknown activation": func(c *Config) { c.Activations = []string{"softsign"} },
		"unknown mode":       func(c *Config) { c.Connectivity = "sparse" },
		"bad probability":    func(c *Config) { c.Connectivity = ConnectivityPartial; c.ConnectionProbability = 1.5 },
		"unknown kind":       func(c *Config) { c.Weight.Kind = "cauchy" },
		"inverted range":     func(c *Config) { c.Bias.Min, c.Bias.Max = 1, -1 },
		"negative stdev":     func(c *Config) { c.Weight.Kind = DistributionNormal; c.Weight.Stdev = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())

			_, err := NewGenome("eve", cfg)
			require.Error(t, err)
			assert.False(t, errors.Is(err, model.ErrMalformedGenome))
		})
	}
}
