package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTextSummarizesPassAndFail(t *testing.T) {
	results := []*RunResult{
		{Name: "ok scenario", Total: 2, Passed: 2, Failed: 0},
		{Name: "bad scenario", Total: 2, Passed: 1, Failed: 1, Cases: []CaseResult{
			{Index: 1, Name: "case one", Passed: true},
			{Index: 2, Name: "case two", Passed: false, Reason: "state: expected \"complete\", got \"needs_review\""},
		}},
	}

	out := FormatText(results)

	assert.Contains(t, out, "PASS  ok scenario (2/2)")
	assert.Contains(t, out, "FAIL  bad scenario (1/2)")
	assert.Contains(t, out, "case 2: case two")
	assert.True(t, strings.Contains(out, "3 of 4 cases passed."))
	assert.True(t, strings.Contains(out, "1 of 2 scenarios failed."))
}

func TestFormatJSONRoundTrips(t *testing.T) {
	results := []*RunResult{{Name: "scenario", Total: 1, Passed: 1}}

	out, err := FormatJSON(results)
	require.NoError(t, err)
	assert.Contains(t, out, "\"name\": \"scenario\"")
}
