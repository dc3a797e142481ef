/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type opKind string

const (
	opSet    opKind = "set"
	opGet    opKind = "get"
	opDelete opKind = "delete"
	opDump   opKind = "dump"
)

type scriptOp struct {
	Op    opKind `yaml:"op"`
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type script struct {
	Ops []scriptOp `yaml:"ops"`
}

// parseScript decodes and validates a YAML replay script.
func parseScript(r io.Reader) (*script, error) {
	var s script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}
	for i, op := range s.Ops {
		switch op.Op {
		case opSet, opGet, opDelete, opDump:
		default:
			return nil, fmt.Errorf("op #%d: unknown operation %q", i+1, op.Op)
		}
	}
	return &s, nil
}
