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

package optimism

import (
	"fmt"
	"strings"

	"github.com/evmfork/chaincore/params"
)

// Chain identifiers of the supported OP Stack networks.
const (
	MainnetChainID = 10
	SepoliaChainID = 11155420
	BaseChainID    = 8453
)

// SpecID identifies an OP Stack hardfork. Values are ordered by activation.
type SpecID uint8

const (
	Bedrock SpecID = iota
	Regolith
	Canyon
	Ecotone
	Fjord
	Granite
	Holocene
	Isthmus
)

// LatestSpecID is the most recent OP Stack hardfork known to this package.
const LatestSpecID = Isthmus

var specs = [...]struct {
	name string
	l1   params.SpecID
}{
	Bedrock:  {"Bedrock", params.Merge},
	Regolith: {"Regolith", params.Merge},
	Canyon:   {"Canyon", params.Shanghai},
	Ecotone:  {"Ecotone", params.Cancun},
	Fjord:    {"Fjord", params.Cancun},
	Granite:  {"Granite", params.Cancun},
	Holocene: {"Holocene", params.Cancun},
	Isthmus:  {"Isthmus", params.Prague},
}

func (id SpecID) String() string {
	if int(id) < len(specs) {
		return specs[id].name
	}
	return fmt.Sprintf("SpecID(%d)", uint8(id))
}

// L1 returns the Ethereum hardfork whose rules id builds upon.
func (id SpecID) L1() params.SpecID {
	if int(id) < len(specs) {
		return specs[id].l1
	}
	return params.LatestSpecID
}

// IsEnabled reports whether the rules of fork are included in id.
func (id SpecID) IsEnabled(fork SpecID) bool {
	return id >= fork
}

// ParseSpecID looks up an OP Stack hardfork by its name, ignoring case.
func ParseSpecID(name string) (SpecID, error) {
	for id, s := range specs {
		if strings.EqualFold(s.name, name) {
			return SpecID(id), nil
		}
	}
	return 0, fmt.Errorf("unknown OP Stack hardfork %q", name)
}

// Superchain hardfork timestamps shared by OP Mainnet and Base.
const (
	mainnetCanyonTime   = 1_704_992_401
	mainnetEcotoneTime  = 1_710_374_401
	mainnetFjordTime    = 1_720_627_201
	mainnetGraniteTime  = 1_726_070_401
	mainnetHoloceneTime = 1_736_445_601
	mainnetIsthmusTime  = 1_746_806_401
)

// chains holds the hardfork history of the OP Stack networks. Regolith was
// active from the first Bedrock block on all of them.
var chains = make(params.Registry[SpecID]).
	Register(MainnetChainID, "op-mainnet", params.NewActivations(
		params.Activation[SpecID]{Condition: params.Block(105_235_063), Fork: Regolith},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetCanyonTime), Fork: Canyon},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetEcotoneTime), Fork: Ecotone},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetFjordTime), Fork: Fjord},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetGraniteTime), Fork: Granite},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetHoloceneTime), Fork: Holocene},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetIsthmusTime), Fork: Isthmus},
	)).
	Register(SepoliaChainID, "op-sepolia", params.NewActivations(
		params.Activation[SpecID]{Condition: params.Block(0), Fork: Regolith},
		params.Activation[SpecID]{Condition: params.Timestamp(1_699_981_200), Fork: Canyon},
		params.Activation[SpecID]{Condition: params.Timestamp(1_708_534_800), Fork: Ecotone},
		params.Activation[SpecID]{Condition: params.Timestamp(1_716_998_400), Fork: Fjord},
		params.Activation[SpecID]{Condition: params.Timestamp(1_723_478_400), Fork: Granite},
		params.Activation[SpecID]{Condition: params.Timestamp(1_732_633_200), Fork: Holocene},
		params.Activation[SpecID]{Condition: params.Timestamp(1_744_905_600), Fork: Isthmus},
	)).
	Register(BaseChainID, "base", params.NewActivations(
		params.Activation[SpecID]{Condition: params.Block(0), Fork: Regolith},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetCanyonTime), Fork: Canyon},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetEcotoneTime), Fork: Ecotone},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetFjordTime), Fork: Fjord},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetGraniteTime), Fork: Granite},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetHoloceneTime), Fork: Holocene},
		params.Activation[SpecID]{Condition: params.Timestamp(mainnetIsthmusTime), Fork: Isthmus},
	))

// ChainActivations returns the hardfork table of an OP Stack network, or nil if
// the chain id is not recognised.
func ChainActivations(chainID uint64) *params.Activations[SpecID] {
	return chains.Activations(chainID)
}

// ChainName returns the name of an OP Stack network.
func ChainName(chainID uint64) (string, bool) {
	return chains.Name(chainID)
}

// ChainIDs returns the identifiers of all known OP Stack networks.
func ChainIDs() []uint64 {
	return chains.ChainIDs()
}
