// Package snowflake hands out time-ordered unique IDs for database rows.
package snowflake

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

// Init sets up the generator. nodeID must differ between running
// instances (0-1023) so replicas never mint colliding IDs.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	node = n
	return nil
}

// NextID returns the next row ID. Init must run first.
func NextID() int64 {
	return node.Generate().Int64()
}
