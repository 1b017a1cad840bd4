package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDerivePaths(t *testing.T) {
	for _, root := range []string{"/", "", "/exa", "/exa/", "/exa//", "exa"} {
		t.Run(root, func(t *testing.T) {
			p := DerivePaths(root)
			base := strings.TrimRight(root, "/") + "/"
			for suffix, got := range map[string]string{
				SuffixEmission:       p.Emission,
				SuffixImportForecast: p.ImportForecast,
				SuffixProcess:        p.Process,
				SuffixSuccess:        p.Success,
				SuffixError:          p.Error,
				SuffixTest:           p.Test,
				SuffixSuccessRecept:  p.SuccessRecept,
				SuffixLog:            p.Log,
			} {
				assert.Equal(t, base+suffix, got)
				assert.NotContains(t, got, "//")
			}
		})
	}
}

func TestDerivePathsExamples(t *testing.T) {
	assert.Equal(t, "/emission", DerivePaths("/").Emission)
	assert.Equal(t, "/exa/import/forecast", DerivePaths("/exa").ImportForecast)
	assert.Equal(t, "/exa/success_recept", DerivePaths("/exa/").SuccessRecept)
}

func TestJoinRemote(t *testing.T) {
	assert.Equal(t, "/exa/process/a.xml", JoinRemote("/exa/process", "a.xml"))
	assert.Equal(t, "/exa/process/a.xml", JoinRemote("/exa/process/", "/a.xml"))
	assert.Equal(t, "/a.xml", JoinRemote("/", "a.xml"))
}

func TestTransactionTransitions(t *testing.T) {
	now := time.Now()
	tests := []struct {
		from, to TransactionState
		ok       bool
	}{
		{StateNew, StateTreated, true},
		{StateNew, StateTest, true},
		{StateNew, StateProcessing, false},
		{StateTreated, StateProcessing, true},
		{StateTreated, StateError, true},
		{StateProcessing, StateSuccess, true},
		{StateProcessing, StateProcessing, true},
		{StateSuccess, StateError, false},
		{StateTest, StateProcessing, false},
		{StateError, StateSuccess, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			tx := &Transaction{State: tt.from}
			err := tx.Transition(tt.to, now)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, tx.State)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tt.from, tx.State)
			}
		})
	}
}

func TestCycleRankPutsLogsLast(t *testing.T) {
	assert.Less(t, ActionLCR.CycleRank(), ActionStatement.CycleRank())
	assert.Less(t, ActionStatement.CycleRank(), ActionLog.CycleRank())
}

func TestDisabledAlgorithmNames(t *testing.T) {
	p := ConnectionProfile{DisabledAlgorithms: []DisabledAlgorithm{{Name: "ssh-dss"}, {Name: " "}, {Name: "diffie-hellman-group1-sha1"}}}
	assert.Equal(t, []string{"ssh-dss", "diffie-hellman-group1-sha1"}, p.DisabledAlgorithmNames())
}
