// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package params

import (
	"fmt"
)

// Hardfork is the constraint satisfied by every chain's hardfork identifier.
type Hardfork interface {
	comparable
	fmt.Stringer
}

// ForkCondition is the threshold from which a hardfork is active. Pre-merge forks
// activate at a block number, post-merge forks at a block timestamp.
type ForkCondition struct {
	Timestamp bool   // whether Value is a timestamp rather than a block number
	Value     uint64 // activation block number or timestamp
}

// Block returns a condition satisfied from the given block number on.
func Block(number uint64) ForkCondition {
	return ForkCondition{Value: number}
}

// Timestamp returns a condition satisfied from the given block time on.
func Timestamp(time uint64) ForkCondition {
	return ForkCondition{Timestamp: true, Value: time}
}

// IsSatisfied reports whether a block with the given number and time is past the
// threshold.
func (c ForkCondition) IsSatisfied(number, time uint64) bool {
	if c.Timestamp {
		return time >= c.Value
	}
	return number >= c.Value
}

func (c ForkCondition) String() string {
	if c.Timestamp {
		return fmt.Sprintf("@%d", c.Value)
	}
	return fmt.Sprintf("#%d", c.Value)
}

// Activation is a single boundary of an activation table.
type Activation[H Hardfork] struct {
	Condition ForkCondition
	Fork      H
}

// Activations is the ordered hardfork history of one chain. Tables are built once
// and never modified.
type Activations[H Hardfork] struct {
	entries []Activation[H]
}

// NewActivations creates an activation table from entries in activation order.
func NewActivations[H Hardfork](entries ...Activation[H]) *Activations[H] {
	return &Activations[H]{entries: append([]Activation[H](nil), entries...)}
}

// Len returns the number of boundaries in the table.
func (a *Activations[H]) Len() int {
	return len(a.entries)
}

// Entries returns a copy of the table's boundaries.
func (a *Activations[H]) Entries() []Activation[H] {
	return append([]Activation[H](nil), a.entries...)
}

// HardforkAt returns the hardfork active at the given block number and time. The
// second return value is false if the block precedes the first boundary.
func (a *Activations[H]) HardforkAt(number, time uint64) (H, bool) {
	var (
		fork  H
		found bool
	)
	for _, entry := range a.entries {
		if !entry.Condition.IsSatisfied(number, time) {
			break
		}
		fork, found = entry.Fork, true
	}
	return fork, found
}

// ActivationOf returns the condition under which fork activates, if the table
// contains it.
func (a *Activations[H]) ActivationOf(fork H) (ForkCondition, bool) {
	for _, entry := range a.entries {
		if entry.Fork == fork {
			return entry.Condition, true
		}
	}
	return ForkCondition{}, false
}

// Validate checks that the boundaries are strictly increasing and that no block
// activated fork is listed after a timestamp activated one.
func (a *Activations[H]) Validate() error {
	var last *ForkCondition
	for i := range a.entries {
		cur := a.entries[i].Condition
		if last != nil {
			switch {
			case last.Timestamp && !cur.Timestamp:
				return fmt.Errorf("unsupported fork ordering: %v enabled by block %d after timestamp activation", a.entries[i].Fork, cur.Value)
			case last.Timestamp == cur.Timestamp && cur.Value <= last.Value:
				return fmt.Errorf("unsupported fork ordering: %v activation %v does not follow %v", a.entries[i].Fork, cur, *last)
			}
		}
		last = &cur
	}
	return nil
}
