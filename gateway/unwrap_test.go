package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapSolidity(t *testing.T) {
	const code = "pragma solidity ^0.8.20; contract A {}"

	tests := []struct {
		name string
		raw  string
	}{
		{"plain", `{"solidityCode":"pragma solidity ^0.8.20; contract A {}"}`},
		{"json fence", "```json\n{\"solidityCode\":\"pragma solidity ^0.8.20; contract A {}\"}\n```"},
		{"bare fence", "```\n{\"solidityCode\":\"pragma solidity ^0.8.20; contract A {}\"}\n```"},
		{"padded", "  \n```json\n  {\"solidityCode\":\"pragma solidity ^0.8.20; contract A {}\"}  \n```\n"},
		{"extra keys", `{"solidityCode":"pragma solidity ^0.8.20; contract A {}","notes":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnwrapSolidity(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, code, got)
		})
	}
}

func TestUnwrapSolidityErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", "here is your contract", errNotJSON},
		{"array", `["pragma"]`, errNotJSON},
		{"missing key", `{"code":"pragma"}`, errMissingSolidity},
		{"number", `{"solidityCode":42}`, errSolidityType},
		{"null", `{"solidityCode":null}`, errSolidityType},
		{"empty", `{"solidityCode":"  "}`, errEmptySolidity},
		{"two fences", "```json\n{}\n```\n```json\n{}\n```", errNotJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnwrapSolidity(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStripFenceKeepsUnfencedText(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFence("  {\"a\":1}\n"))
	assert.Equal(t, "```", StripFence("```"))
}
