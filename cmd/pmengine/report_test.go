package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymesh/engine/configs"
	"github.com/polymesh/engine/internal/app"
	"github.com/polymesh/engine/pkg/types"
)

// TestParseParty_DashIsNone "-" 表示无此方
func TestParseParty_DashIsNone(t *testing.T) {
	// Act
	none, err := parseParty("-")

	// Assert
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseParty("not-hex")
	assert.Error(t, err)
}

// TestReportRows_OneRowPerCondition 每个条件一行
func TestReportRows_OneRowPerCondition(t *testing.T) {
	// Arrange
	alice := types.IdentityId{1}
	kyc := types.KycClaim(types.TickerScope(types.MustTicker("ACME")))
	report := types.AssetComplianceResult{
		Requirements: []types.RequirementResult{
			{
				Id: 1,
				SenderConditions: []types.ConditionResult{
					{Condition: types.NewCondition(types.IsPresent(kyc)), Result: true},
				},
				ReceiverConditions: []types.ConditionResult{
					{Condition: types.NewCondition(types.IsIdentity(types.SpecificTarget(alice))), Result: false},
				},
			},
			{Id: 2, Result: true},
		},
	}

	// Act
	rows := reportRows(report)

	// Assert
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "sender", "IsPresent(KnowYourCustomer)", "✔"}, rows[1])
	assert.Equal(t, "receiver", rows[2][1])
	assert.Equal(t, "✘", rows[2][3])
	assert.Equal(t, []string{"2", "", "(无条件)", "✔"}, rows[3])
}

// TestGenesisRows_SortedByName 身份按名称排序
func TestGenesisRows_SortedByName(t *testing.T) {
	// Arrange
	result := app.GenesisResult{
		Identities: map[string]types.IdentityId{"bob": {2}, "alice": {1}},
		Venues:     []types.VenueId{7},
	}

	// Act
	rows := genesisRows(result)

	// Assert
	require.Len(t, rows, 4)
	assert.Equal(t, "alice", rows[1][1])
	assert.Equal(t, "bob", rows[2][1])
	assert.Equal(t, []string{"venue", "", "7"}, rows[3])
}

// TestGenesisExample_PrintsEmbeddedFile genesis example 输出内置示例
func TestGenesisExample_PrintsEmbeddedFile(t *testing.T) {
	// Arrange
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"genesis", "example"})

	// Act
	err := root.Execute()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(configs.GetExampleGenesis()), out.String())
}
