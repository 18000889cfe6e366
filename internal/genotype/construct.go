package genotype

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strconv"

	"neatauth/internal/model"
	"neatauth/internal/nn"
)

// Neuron id prefixes. Slot i of each layer is "<prefix>:<i>".
const (
	InputPrefix  = "in"
	HiddenPrefix = "hid"
	OutputPrefix = "out"
)

// NewRNG returns the generator for identity: PCG seeded with the first two
// big-endian words of sha256(identity).
func NewRNG(identity string) *rand.Rand {
	sum := sha256.Sum256([]byte(identity))
	return rand.New(rand.NewPCG(
		binary.BigEndian.Uint64(sum[0:8]),
		binary.BigEndian.Uint64(sum[8:16]),
	))
}

// NewGenome builds the genome for identity under cfg. The same identity and
// configuration always yield the same genome; the draw order below is part
// of that contract and must not change.
func NewGenome(identity string, cfg Config) (model.Genome, error) {
	if err := cfg.Validate(); err != nil {
		return model.Genome{}, err
	}
	rng := NewRNG(identity)

	genome := model.Genome{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: model.CurrentSchemaVersion,
			CodecVersion:  model.CurrentCodecVersion,
		},
		ID:        identity,
		Neurons:   make([]model.Neuron, 0, cfg.Inputs+cfg.Hidden+cfg.Outputs),
		InputIDs:  layerIDs(InputPrefix, cfg.Inputs),
		OutputIDs: layerIDs(OutputPrefix, cfg.Outputs),
	}
	hiddenIDs := layerIDs(HiddenPrefix, cfg.Hidden)

	for _, id := range genome.InputIDs {
		genome.Neurons = append(genome.Neurons, model.Neuron{ID: id, Role: model.RoleInput})
	}
	for _, id := range hiddenIDs {
		genome.Neurons = append(genome.Neurons, constructNeuron(rng, id, model.RoleHidden, cfg))
	}
	for _, id := range genome.OutputIDs {
		genome.Neurons = append(genome.Neurons, constructNeuron(rng, id, model.RoleOutput, cfg))
	}

	for _, target := range hiddenIDs {
		genome.Synapses = connect(rng, genome.Synapses, genome.InputIDs, target, cfg)
	}
	for _, target := range genome.OutputIDs {
		if len(hiddenIDs) == 0 {
			genome.Synapses = connect(rng, genome.Synapses, genome.InputIDs, target, cfg)
			continue
		}
		genome.Synapses = connect(rng, genome.Synapses, hiddenIDs, target, cfg)
		if cfg.Connectivity == ConnectivityFullDirect {
			genome.Synapses = connect(rng, genome.Synapses, genome.InputIDs, target, cfg)
		}
	}
	return genome, nil
}

func constructNeuron(rng *rand.Rand, id string, role model.Role, cfg Config) model.Neuron {
	activation := cfg.Activations[rng.IntN(len(cfg.Activations))]
	return model.Neuron{
		ID:         id,
		Role:       role,
		Activation: activation,
		Bias:       Draw(rng, cfg.Bias),
	}
}

func connect(rng *rand.Rand, synapses []model.Synapse, sources []string, target string, cfg Config) []model.Synapse {
	for _, from := range sources {
		if cfg.Connectivity == ConnectivityPartial && !(rng.Float64() < cfg.ConnectionProbability) {
			continue
		}
		synapses = append(synapses, model.Synapse{
			ID:      SynapseID(from, target),
			From:    from,
			To:      target,
			Weight:  Draw(rng, cfg.Weight),
			Enabled: true,
		})
	}
	return synapses
}

// Draw samples one value from d. Uniform draws consume one Float64; normal
// draws consume whatever NormFloat64 needs and are clamped to [Min, Max].
func Draw(rng *rand.Rand, d Distribution) float64 {
	if d.Kind == DistributionNormal {
		return nn.Sat(d.Mean+float64(d.Stdev*rng.NormFloat64()), d.Max, d.Min)
	}
	return d.Min + float64((d.Max-d.Min)*rng.Float64())
}

func SynapseID(from, to string) string {
	return from + "->" + to
}

func layerIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = prefix + ":" + strconv.Itoa(i)
	}
	return ids
}
