package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// contentID returns the CIDv1 (raw codec, sha2-256 multihash) of data.
func contentID(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// ParseFingerprint checks that s is a raw sha2-256 CIDv1.
func ParseFingerprint(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if c.Version() != 1 || c.Type() != cid.Raw || c.Prefix().MhType != multihash.SHA2_256 {
		return cid.Undef, fmt.Errorf("fingerprint %s is not a raw sha2-256 CIDv1", s)
	}
	return c, nil
}
