package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Epoch is the custom Snowflake epoch in milliseconds (Mon Dec 01 2025 00:00:00 UTC+7).
const Epoch int64 = 1764522000000

// maxNodeID is the largest node ID representable in the default 10 node bits.
const maxNodeID int64 = 1<<10 - 1

// Snowflake generates numeric IDs using the Snowflake algorithm.
//
// Record identifiers in the analysis module come from here, so they are
// positive, roughly time ordered, and safe to render in URLs.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & maxNodeID, nil
}

// NewSnowflake constructs a Snowflake generator with a random node ID.
func NewSnowflake() (*Snowflake, error) {
	nodeID, err := generateRandomNodeID()
	if err != nil {
		return nil, err
	}

	return NewSnowflakeNode(nodeID)
}

// NewSnowflakeNode constructs a Snowflake generator for a fixed node ID in 0..1023.
// Deployments with several replicas should give each one its own node ID.
func NewSnowflakeNode(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, errors.New("snowflake node id out of range")
	}

	snowflake.Epoch = Epoch

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
