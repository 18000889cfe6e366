package storage

import (
	"encoding/json"
	"errors"

	"github.com/samber/oops"

	"neatauth/internal/model"
	"neatauth/internal/nn"
)

// EnvelopeFormat tags every persisted genome.
const EnvelopeFormat = "neatauth.genome"

// Envelope is the persisted form of a genome. Fingerprint is the CIDv1 of the
// canonical genome JSON and is checked on every decode.
type Envelope struct {
	Format      string       `json:"format" jsonschema:"enum=neatauth.genome"`
	Fingerprint string       `json:"fingerprint" jsonschema:"minLength=1"`
	Genome      model.Genome `json:"genome"`
}

// Fingerprint returns the content id of genome's canonical JSON form.
func Fingerprint(genome model.Genome) (string, error) {
	body, err := json.Marshal(canonical(genome))
	if err != nil {
		return "", err
	}
	return contentID(body)
}

// EncodeGenome validates genome and wraps it in a fingerprinted envelope.
// Anything it returns decodes back to an equal genome.
func EncodeGenome(genome model.Genome) ([]byte, error) {
	genome = canonical(genome)
	if genome.SchemaVersion != model.CurrentSchemaVersion || genome.CodecVersion != model.CurrentCodecVersion {
		return nil, malformed(genome.ID, "unsupported record version schema=%d codec=%d", genome.SchemaVersion, genome.CodecVersion)
	}
	if err := nn.Validate(genome); err != nil {
		return nil, err
	}
	fingerprint, err := Fingerprint(genome)
	if err != nil {
		return nil, oops.In("storage").With("identity", genome.ID).Wrapf(err, "fingerprint genome")
	}
	return json.Marshal(Envelope{
		Format:      EnvelopeFormat,
		Fingerprint: fingerprint,
		Genome:      genome,
	})
}

// DecodeGenome reverses EncodeGenome. Every failure is ErrMalformedGenome:
// schema violations, bad JSON, foreign format or version, a fingerprint that
// does not match the content, and genomes that are not feed-forward.
func DecodeGenome(data []byte) (model.Genome, error) {
	envelope, err := DecodeEnvelope(data)
	if err != nil {
		return model.Genome{}, err
	}
	return envelope.Genome, nil
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	if err := ValidateSchema(data); err != nil {
		return Envelope{}, malformed("", "schema: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, malformed("", "decode: %v", err)
	}
	genome := envelope.Genome
	if envelope.Format != EnvelopeFormat {
		return Envelope{}, malformed(genome.ID, "unexpected format %q", envelope.Format)
	}
	if genome.SchemaVersion != model.CurrentSchemaVersion || genome.CodecVersion != model.CurrentCodecVersion {
		return Envelope{}, malformed(genome.ID, "unsupported record version schema=%d codec=%d", genome.SchemaVersion, genome.CodecVersion)
	}

	if _, err := ParseFingerprint(envelope.Fingerprint); err != nil {
		return Envelope{}, malformed(genome.ID, "fingerprint: %v", err)
	}
	genome = canonical(genome)
	want, err := Fingerprint(genome)
	if err != nil {
		return Envelope{}, malformed(genome.ID, "fingerprint: %v", err)
	}
	if want != envelope.Fingerprint {
		return Envelope{}, malformed(genome.ID, "fingerprint mismatch: stored %s, content %s", envelope.Fingerprint, want)
	}

	if err := nn.Validate(genome); err != nil {
		return Envelope{}, err
	}
	envelope.Genome = genome
	return envelope, nil
}

// decodeStored decodes a payload read under identity's key.
func decodeStored(identity string, payload []byte) (model.Genome, error) {
	genome, err := DecodeGenome(payload)
	if err != nil {
		return model.Genome{}, err
	}
	if genome.ID != identity {
		return model.Genome{}, malformed(identity, "record holds genome for %q", genome.ID)
	}
	return genome, nil
}

// canonical returns a copy of genome with empty tables instead of nil ones,
// so every genome has exactly one JSON form.
func canonical(genome model.Genome) model.Genome {
	out := genome.Clone()
	if out.Neurons == nil {
		out.Neurons = []model.Neuron{}
	}
	if out.Synapses == nil {
		out.Synapses = []model.Synapse{}
	}
	if out.InputIDs == nil {
		out.InputIDs = []string{}
	}
	if out.OutputIDs == nil {
		out.OutputIDs = []string{}
	}
	return out
}

func malformed(identity, format string, args ...any) error {
	return oops.
		Code(model.CodeMalformedGenome).
		In("storage").
		With("identity", identity).
		Wrapf(model.ErrMalformedGenome, format, args...)
}

// IsMalformed reports whether err means the stored bytes are unusable, as
// opposed to the backend being unreachable.
func IsMalformed(err error) bool {
	return errors.Is(err, model.ErrMalformedGenome)
}
