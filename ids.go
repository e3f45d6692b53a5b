package apireview

import (
	"strconv"
	"sync/atomic"
)

var fieldSeq atomic.Uint64

// NextID returns a process-unique identifier of the form "<hint>::<n>".
// Identifiers are never reused, so a node keeps its identity across renames
// and a node built later can never collide with an existing one.
func NextID(hint string) string {
	return hint + "::" + strconv.FormatUint(fieldSeq.Add(1)-1, 10)
}
