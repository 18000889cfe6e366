package nn

import (
	"sort"
	"strings"

	"github.com/samber/oops"

	"neatauth/internal/model"
)

// Network is a compiled genome: slot tables resolved to neuron indexes and
// the evaluation order computed once. It is immutable and safe for
// concurrent use.
type Network struct {
	genomeID string
	inputs   []int
	outputs  []int
	order    []int
	nodes    []node
}

type node struct {
	bias     float64
	activate ActivationFunc
	incoming []edge
}

type edge struct {
	from   int
	weight float64
}

// Compile validates genome and builds its feed-forward evaluation plan:
// inputs by slot, hidden neurons in dependency order, outputs by slot.
func Compile(genome model.Genome) (*Network, error) {
	index, err := indexNeurons(genome)
	if err != nil {
		return nil, err
	}

	inputs, err := resolveSlots(genome, index, genome.InputIDs, model.RoleInput)
	if err != nil {
		return nil, err
	}
	outputs, err := resolveSlots(genome, index, genome.OutputIDs, model.RoleOutput)
	if err != nil {
		return nil, err
	}

	nodes := make([]node, len(genome.Neurons))
	for i, neuron := range genome.Neurons {
		nodes[i].bias = neuron.Bias
		if neuron.Role == model.RoleInput {
			continue
		}
		fn, err := GetActivation(neuron.Activation)
		if err != nil {
			return nil, malformed(genome, "neuron %s: %v", neuron.ID, err)
		}
		nodes[i].activate = fn
	}

	for _, synapse := range genome.Synapses {
		from, ok := index[synapse.From]
		if !ok {
			return nil, malformed(genome, "synapse %s: unknown source %s", synapseLabel(synapse), synapse.From)
		}
		to, ok := index[synapse.To]
		if !ok {
			return nil, malformed(genome, "synapse %s: unknown target %s", synapseLabel(synapse), synapse.To)
		}
		if !Finite(synapse.Weight) {
			return nil, malformed(genome, "synapse %s: weight is not finite", synapseLabel(synapse))
		}
		if !synapse.Enabled {
			continue
		}
		if genome.Neurons[to].Role == model.RoleInput {
			return nil, malformed(genome, "synapse %s: enabled edge targets input %s", synapseLabel(synapse), synapse.To)
		}
		if genome.Neurons[from].Role == model.RoleOutput {
			return nil, malformed(genome, "synapse %s: enabled edge leaves output %s", synapseLabel(synapse), synapse.From)
		}
		nodes[to].incoming = append(nodes[to].incoming, edge{from: from, weight: synapse.Weight})
	}

	hidden, err := hiddenOrder(genome, index)
	if err != nil {
		return nil, err
	}
	order := make([]int, 0, len(hidden)+len(outputs))
	order = append(order, hidden...)
	order = append(order, outputs...)

	return &Network{
		genomeID: genome.ID,
		inputs:   inputs,
		outputs:  outputs,
		order:    order,
		nodes:    nodes,
	}, nil
}

// Validate reports whether genome is a well-formed feed-forward genome.
func Validate(genome model.Genome) error {
	_, err := Compile(genome)
	return err
}

// Evaluate runs the network on one input vector. Summation follows the
// genome's synapse order exactly.
func (n *Network) Evaluate(input []float64) ([]float64, error) {
	if len(input) != len(n.inputs) {
		return nil, oops.
			Code(model.CodeShapeMismatch).
			In("nn").
			With("genome_id", n.genomeID, "want", len(n.inputs), "got", len(input)).
			Wrapf(model.ErrShapeMismatch, "input width %d, network expects %d", len(input), len(n.inputs))
	}

	values := make([]float64, len(n.nodes))
	for slot, idx := range n.inputs {
		values[idx] = input[slot]
	}
	for _, idx := range n.order {
		nd := &n.nodes[idx]
		total := nd.bias
		for _, e := range nd.incoming {
			// The explicit conversion rounds the product, which keeps the
			// compiler from fusing it into a multiply-add on any platform.
			total += float64(e.weight * values[e.from])
		}
		values[idx] = nd.activate(total)
	}

	out := make([]float64, len(n.outputs))
	for slot, idx := range n.outputs {
		out[slot] = values[idx]
	}
	return out, nil
}

func (n *Network) InputCount() int  { return len(n.inputs) }
func (n *Network) OutputCount() int { return len(n.outputs) }

// Evaluate compiles genome and evaluates it once.
func Evaluate(genome model.Genome, input []float64) ([]float64, error) {
	network, err := Compile(genome)
	if err != nil {
		return nil, err
	}
	return network.Evaluate(input)
}

func indexNeurons(genome model.Genome) (map[string]int, error) {
	index := make(map[string]int, len(genome.Neurons))
	for i, neuron := range genome.Neurons {
		if strings.TrimSpace(neuron.ID) == "" {
			return nil, malformed(genome, "neuron %d has an empty id", i)
		}
		if _, dup := index[neuron.ID]; dup {
			return nil, malformed(genome, "duplicate neuron id %s", neuron.ID)
		}
		if !neuron.Role.Valid() {
			return nil, malformed(genome, "neuron %s: unknown role %q", neuron.ID, neuron.Role)
		}
		if !Finite(neuron.Bias) {
			return nil, malformed(genome, "neuron %s: bias is not finite", neuron.ID)
		}
		index[neuron.ID] = i
	}
	return index, nil
}

func resolveSlots(genome model.Genome, index map[string]int, ids []string, role model.Role) ([]int, error) {
	slots := make([]int, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for slot, id := range ids {
		idx, ok := index[id]
		if !ok {
			return nil, malformed(genome, "%s slot %d references unknown neuron %s", role, slot, id)
		}
		if genome.Neurons[idx].Role != role {
			return nil, malformed(genome, "%s slot %d references %s neuron %s", role, slot, genome.Neurons[idx].Role, id)
		}
		if _, dup := seen[id]; dup {
			return nil, malformed(genome, "neuron %s occupies more than one %s slot", id, role)
		}
		seen[id] = struct{}{}
		slots[slot] = idx
	}
	for _, neuron := range genome.Neurons {
		if neuron.Role != role {
			continue
		}
		if _, ok := seen[neuron.ID]; !ok {
			return nil, malformed(genome, "%s neuron %s has no slot", role, neuron.ID)
		}
	}
	return slots, nil
}

// hiddenOrder is Kahn's algorithm over enabled hidden-to-hidden edges. Ready
// neurons are taken in genome order so the result never depends on map
// iteration.
func hiddenOrder(genome model.Genome, index map[string]int) ([]int, error) {
	indegree := make(map[int]int)
	dependents := make(map[int][]int)
	hidden := make([]int, 0)
	for i, neuron := range genome.Neurons {
		if neuron.Role == model.RoleHidden {
			hidden = append(hidden, i)
			indegree[i] = 0
		}
	}
	for _, synapse := range genome.Synapses {
		if !synapse.Enabled {
			continue
		}
		from, to := index[synapse.From], index[synapse.To]
		if genome.Neurons[from].Role != model.RoleHidden || genome.Neurons[to].Role != model.RoleHidden {
			continue
		}
		indegree[to]++
		dependents[from] = append(dependents[from], to)
	}

	ready := make([]int, 0, len(hidden))
	for _, idx := range hidden {
		if indegree[idx] == 0 {
			ready = append(ready, idx)
		}
	}

	order := make([]int, 0, len(hidden))
	for len(ready) > 0 {
		idx := ready[0]
		ready = ready[1:]
		order = append(order, idx)
		for _, dep := range dependents[idx] {
			indegree[dep]--
			if indegree[dep] == 0 {
				at := sort.SearchInts(ready, dep)
				ready = append(ready, 0)
				copy(ready[at+1:], ready[at:])
				ready[at] = dep
			}
		}
	}

	if len(order) != len(hidden) {
		stuck := make([]string, 0, len(hidden)-len(order))
		for _, idx := range hidden {
			if indegree[idx] > 0 {
				stuck = append(stuck, genome.Neurons[idx].ID)
			}
		}
		return nil, malformed(genome, "cycle through hidden neurons %s", strings.Join(stuck, ","))
	}
	return order, nil
}

func malformed(genome model.Genome, format string, args ...any) error {
	return oops.
		Code(model.CodeMalformedGenome).
		In("nn").
		With("genome_id", genome.ID).
		Wrapf(model.ErrMalformedGenome, format, args...)
}

func synapseLabel(s model.Synapse) string {
	if s.ID != "" {
		return s.ID
	}
	return s.From + "->" + s.To
}
