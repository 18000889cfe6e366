package model

// Versions written by this build. Decoders reject anything else.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version" jsonschema:"minimum=1"`
	CodecVersion  int `json:"codec_version" jsonschema:"minimum=1"`
}

// Role places a neuron in the input -> hidden -> output layering.
type Role string

const (
	RoleInput  Role = "input"
	RoleHidden Role = "hidden"
	RoleOutput Role = "output"
)

func (r Role) Valid() bool {
	switch r {
	case RoleInput, RoleHidden, RoleOutput:
		return true
	default:
		return false
	}
}

// Genome is the per-identity transform definition. Synapse order is the
// summation order used during evaluation; InputIDs and OutputIDs are the
// slot tables mapping vector positions to neurons.
type Genome struct {
	VersionedRecord
	ID        string    `json:"id"`
	Neurons   []Neuron  `json:"neurons"`
	Synapses  []Synapse `json:"synapses"`
	InputIDs  []string  `json:"input_ids"`
	OutputIDs []string  `json:"output_ids"`
}

type Neuron struct {
	ID         string  `json:"id" jsonschema:"minLength=1"`
	Role       Role    `json:"role" jsonschema:"enum=input,enum=hidden,enum=output"`
	Activation string  `json:"activation,omitempty"`
	Bias       float64 `json:"bias"`
}

type Synapse struct {
	ID      string  `json:"id"`
	From    string  `json:"from" jsonschema:"minLength=1"`
	To      string  `json:"to" jsonschema:"minLength=1"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// Clone returns a deep copy so callers never share slices with a stored genome.
func (g Genome) Clone() Genome {
	out := g
	out.Neurons = append([]Neuron(nil), g.Neurons...)
	out.Synapses = append([]Synapse(nil), g.Synapses...)
	out.InputIDs = append([]string(nil), g.InputIDs...)
	out.OutputIDs = append([]string(nil), g.OutputIDs...)
	return out
}

// Summary is an operator view of a stored genome.
type Summary struct {
	ID            string         `json:"id" yaml:"id"`
	Fingerprint   string         `json:"fingerprint" yaml:"fingerprint"`
	SchemaVersion int            `json:"schema_version" yaml:"schema_version"`
	Inputs        int            `json:"inputs" yaml:"inputs"`
	Hidden        int            `json:"hidden" yaml:"hidden"`
	Outputs       int            `json:"outputs" yaml:"outputs"`
	Synapses      int            `json:"synapses" yaml:"synapses"`
	Enabled       int            `json:"enabled_synapses" yaml:"enabled_synapses"`
	Activations   map[string]int `json:"activations" yaml:"activations"`
}
