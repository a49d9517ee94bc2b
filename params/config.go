// Copyright 2016 The go-ethereum Authors
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
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain identifiers of the supported L1 networks.
const (
	MainnetChainID = 1
	GoerliChainID  = 5
	HoleskyChainID = 17000
	SepoliaChainID = 11155111
)

// MainnetGenesisHash is the hash of the mainnet genesis header.
var MainnetGenesisHash = common.HexToHash("d4e56740f876aef8c010b86a40d5f56745a118d0906a34e69aec8c0db1cb8fa3")

// SpecID identifies an Ethereum L1 hardfork. Values are ordered by activation.
type SpecID uint8

const (
	Frontier SpecID = iota
	FrontierThawing
	Homestead
	DAOFork
	Tangerine
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	MuirGlacier
	Berlin
	London
	ArrowGlacier
	GrayGlacier
	Merge
	Shanghai
	Cancun
	Prague
)

// LatestSpecID is the most recent hardfork known to this package.
const LatestSpecID = Prague

var specNames = [...]string{
	Frontier:        "Frontier",
	FrontierThawing: "FrontierThawing",
	Homestead:       "Homestead",
	DAOFork:         "DAOFork",
	Tangerine:       "Tangerine",
	SpuriousDragon:  "SpuriousDragon",
	Byzantium:       "Byzantium",
	Constantinople:  "Constantinople",
	Petersburg:      "Petersburg",
	Istanbul:        "Istanbul",
	MuirGlacier:     "MuirGlacier",
	Berlin:          "Berlin",
	London:          "London",
	ArrowGlacier:    "ArrowGlacier",
	GrayGlacier:     "GrayGlacier",
	Merge:           "Merge",
	Shanghai:        "Shanghai",
	Cancun:          "Cancun",
	Prague:          "Prague",
}

func (id SpecID) String() string {
	if int(id) < len(specNames) {
		return specNames[id]
	}
	return fmt.Sprintf("SpecID(%d)", uint8(id))
}

// ParseSpecID looks up a hardfork by its name, ignoring case.
func ParseSpecID(name string) (SpecID, error) {
	for id, n := range specNames {
		if strings.EqualFold(n, name) {
			return SpecID(id), nil
		}
	}
	return 0, fmt.Errorf("unknown hardfork %q", name)
}

// IsEnabled reports whether the rules of fork are included in id.
func (id SpecID) IsEnabled(fork SpecID) bool {
	return id >= fork
}

// chainConfig binds a chain name to its hardfork history.
type chainConfig[H Hardfork] struct {
	Name        string
	Activations *Activations[H]
}

// Registry maps chain identifiers onto their static hardfork configuration.
type Registry[H Hardfork] map[uint64]chainConfig[H]

// Register adds a chain to the registry. It is meant to be called while building
// package level tables.
func (r Registry[H]) Register(chainID uint64, name string, activations *Activations[H]) Registry[H] {
	r[chainID] = chainConfig[H]{Name: name, Activations: activations}
	return r
}

// Activations returns the hardfork table of a chain, or nil if the chain is unknown.
func (r Registry[H]) Activations(chainID uint64) *Activations[H] {
	if cfg, ok := r[chainID]; ok {
		return cfg.Activations
	}
	return nil
}

// Name returns the human readable name of a chain.
func (r Registry[H]) Name(chainID uint64) (string, bool) {
	cfg, ok := r[chainID]
	return cfg.Name, ok
}

// l1Chains holds the hardfork history of the public Ethereum networks.
var l1Chains = make(Registry[SpecID]).
	Register(MainnetChainID, "mainnet", NewActivations(
		Activation[SpecID]{Block(0), Frontier},
		Activation[SpecID]{Block(200_000), FrontierThawing},
		Activation[SpecID]{Block(1_150_000), Homestead},
		Activation[SpecID]{Block(1_920_000), DAOFork},
		Activation[SpecID]{Block(2_463_000), Tangerine},
		Activation[SpecID]{Block(2_675_000), SpuriousDragon},
		Activation[SpecID]{Block(4_370_000), Byzantium},
		// Constantinople and Petersburg activated at the same block.
		Activation[SpecID]{Block(7_280_000), Petersburg},
		Activation[SpecID]{Block(9_069_000), Istanbul},
		Activation[SpecID]{Block(9_200_000), MuirGlacier},
		Activation[SpecID]{Block(12_244_000), Berlin},
		Activation[SpecID]{Block(12_965_000), London},
		Activation[SpecID]{Block(13_773_000), ArrowGlacier},
		Activation[SpecID]{Block(15_050_000), GrayGlacier},
		Activation[SpecID]{Block(15_537_394), Merge},
		Activation[SpecID]{Timestamp(1_681_338_455), Shanghai},
		Activation[SpecID]{Timestamp(1_710_338_135), Cancun},
		Activation[SpecID]{Timestamp(1_746_612_311), Prague},
	)).
	Register(GoerliChainID, "goerli", NewActivations(
		Activation[SpecID]{Block(0), Petersburg},
		Activation[SpecID]{Block(1_561_651), Istanbul},
		Activation[SpecID]{Block(4_460_644), Berlin},
		Activation[SpecID]{Block(5_062_605), London},
		Activation[SpecID]{Block(7_382_818), Merge},
		Activation[SpecID]{Timestamp(1_678_832_736), Shanghai},
		Activation[SpecID]{Timestamp(1_705_473_120), Cancun},
	)).
	Register(HoleskyChainID, "holesky", NewActivations(
		Activation[SpecID]{Block(0), Merge},
		Activation[SpecID]{Timestamp(1_696_000_704), Shanghai},
		Activation[SpecID]{Timestamp(1_707_305_664), Cancun},
		Activation[SpecID]{Timestamp(1_740_434_112), Prague},
	)).
	Register(SepoliaChainID, "sepolia", NewActivations(
		Activation[SpecID]{Block(0), London},
		Activation[SpecID]{Block(1_450_409), Merge},
		Activation[SpecID]{Timestamp(1_677_557_088), Shanghai},
		Activation[SpecID]{Timestamp(1_706_655_072), Cancun},
		Activation[SpecID]{Timestamp(1_741_159_776), Prague},
	))

// L1ChainActivations returns the hardfork table of an Ethereum network, or nil if
// the chain id is not recognised.
func L1ChainActivations(chainID uint64) *Activations[SpecID] {
	return l1Chains.Activations(chainID)
}

// L1ChainName returns the name of an Ethereum network.
func L1ChainName(chainID uint64) (string, bool) {
	return l1Chains.Name(chainID)
}

// L1ChainIDs returns the identifiers of all known Ethereum networks.
func L1ChainIDs() []uint64 {
	return l1Chains.ChainIDs()
}

// ChainIDs returns the registered chain identifiers in ascending order.
func (r Registry[H]) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
