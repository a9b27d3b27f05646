// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaf1

import (
	"fmt"

	"github.com/casbin/govaluate"
)

// Requirement is a boolean expression over feature names, for example
// "AVX && (SSE4_1 || SSE4_2) && !HYPERVISOR".
type Requirement struct {
	expression string
	evaluable  *govaluate.EvaluableExpression // parse once, evaluate per feature set
}

// NewRequirement parses an expression.
func NewRequirement(expression string) (*Requirement, error) {
	evaluable, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse requirement %q: %w", expression, err)
	}
	return &Requirement{expression: expression, evaluable: evaluable}, nil
}

func (r *Requirement) String() string {
	return r.expression
}

// Features returns the feature names referenced by the expression.
func (r *Requirement) Features() []string {
	return r.evaluable.Vars()
}

// Unknown returns the referenced names that are not in the registry. They
// evaluate as unsupported.
func (r *Requirement) Unknown() []string {
	var unknown []string
	for _, name := range r.Features() {
		if _, ok := Find(name); !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Satisfied evaluates the expression against fs.
func (r *Requirement) Satisfied(fs FeatureSet) (bool, error) {
	result, err := r.evaluable.Eval(featureParameters{fs})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate requirement %q: %w", r.expression, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("requirement %q evaluated to %v, not a boolean", r.expression, result)
	}
	return ok, nil
}

// featureParameters resolves expression variables to feature flags.
type featureParameters struct {
	fs FeatureSet
}

func (p featureParameters) Get(name string) (any, error) {
	return p.fs.Has(name), nil
}
