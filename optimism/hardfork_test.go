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
	"testing"

	"github.com/evmfork/chaincore/chainspec"
	"github.com/evmfork/chaincore/params"
	"github.com/stretchr/testify/require"
)

func TestTablesValid(t *testing.T) {
	require.Equal(t, []uint64{MainnetChainID, BaseChainID, SepoliaChainID}, ChainIDs())
	for _, id := range ChainIDs() {
		table := ChainActivations(id)
		require.NotNil(t, table)
		require.NoError(t, table.Validate(), "chain %d", id)
	}
}

func TestHardforkAt(t *testing.T) {
	tests := []struct {
		chain        uint64
		number, time uint64
		want         SpecID
		ok           bool
	}{
		{MainnetChainID, 105_235_062, 1_800_000_000, 0, false},
		{MainnetChainID, 105_235_063, 1_686_068_903, Regolith, true},
		{MainnetChainID, 114_000_000, 1_704_992_400, Regolith, true},
		{MainnetChainID, 114_000_000, 1_704_992_401, Canyon, true},
		{MainnetChainID, 120_000_000, 1_726_070_401, Granite, true},
		{MainnetChainID, 135_000_000, 1_746_806_401, Isthmus, true},
		{SepoliaChainID, 0, 0, Regolith, true},
		{SepoliaChainID, 1, 1_708_534_800, Ecotone, true},
		{BaseChainID, 0, 1_686_789_347, Regolith, true},
		{BaseChainID, 20_000_000, 1_736_445_601, Holocene, true},
	}
	for i, tt := range tests {
		fork, ok := ChainSpec{}.ChainHardforkActivations(tt.chain).HardforkAt(tt.number, tt.time)
		require.Equal(t, tt.ok, ok, "test %d", i)
		if ok {
			require.Equal(t, tt.want, fork, "test %d", i)
		}
	}
}

func TestChainNames(t *testing.T) {
	name, ok := ChainSpec{}.ChainName(BaseChainID)
	require.True(t, ok)
	require.Equal(t, "base", name)

	_, ok = ChainSpec{}.ChainName(params.MainnetChainID)
	require.False(t, ok)
	require.Nil(t, ChainSpec{}.ChainHardforkActivations(params.MainnetChainID))

	_, ok = chainspec.HardforkAt[*Transaction, RPCTransaction, SpecID](ChainSpec{}, 1, 0, 0)
	require.False(t, ok)
}

func TestSpecIDs(t *testing.T) {
	require.Equal(t, params.Merge, Bedrock.L1())
	require.Equal(t, params.Shanghai, Canyon.L1())
	require.Equal(t, params.Cancun, Ecotone.L1())
	require.Equal(t, params.Prague, Isthmus.L1())
	require.True(t, Fjord.IsEnabled(Ecotone))
	require.False(t, Canyon.IsEnabled(Ecotone))

	for id := Bedrock; id <= LatestSpecID; id++ {
		parsed, err := ParseSpecID(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
		require.True(t, id.L1().IsEnabled(params.Merge))
	}
	_, err := ParseSpecID("jovian")
	require.Error(t, err)
	require.Equal(t, "SpecID(42)", SpecID(42).String())
}
