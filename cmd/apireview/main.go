// Command apireview loads a v3 and a v4 OpenAPI document, pairs their
// operations and lays them out for review.
//
// Usage:
//
//	apireview pairs   --v3 old.yaml --v4 new.yaml
//	apireview layout  --v3 old.yaml --v4 new.yaml -o board.json
//	apireview inspect --v3 old.yaml --v4 new.yaml v4 getOrder
//	apireview serve   --v3 old.yaml --v4 new.yaml --config apireview.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
