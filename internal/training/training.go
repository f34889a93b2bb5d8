// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package training is the placeholder for learned robot behaviors. Nothing is
// implemented yet; every operation reports ErrNotImplemented so callers cannot
// mistake it for success.
package training

import "errors"

// ErrNotImplemented is returned by every Trainer operation.
var ErrNotImplemented = errors.New("training: not implemented")

// Trainer records and replays learned behaviors.
type Trainer struct{}

func (Trainer) Start() error                  { return ErrNotImplemented }
func (Trainer) Stop() error                   { return ErrNotImplemented }
func (Trainer) ExecuteLearnedBehavior() error { return ErrNotImplemented }
func (Trainer) SaveModel() error              { return ErrNotImplemented }
func (Trainer) LoadModel() error              { return ErrNotImplemented }
func (Trainer) ResetModel() error             { return ErrNotImplemented }

// IsTraining is always false.
func (Trainer) IsTraining() bool { return false }

// HasLearnedBehavior is always false.
func (Trainer) HasLearnedBehavior() bool { return false }
