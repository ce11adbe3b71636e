package linkage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusScore_Terminal(t *testing.T) {
	for _, s := range []string{"Completed", "complete", "Closed", "cancelled", "Canceled", "Invoiced", "Paid", "Job Completed"} {
		assert.Equal(t, StatusScoreTerminal, StatusScore(s), s)
	}
}

func TestStatusScore_Active(t *testing.T) {
	for _, s := range []string{"Scheduled", "In Progress", "in-progress", "Dispatched", "En Route", "On Site"} {
		assert.Equal(t, StatusScoreActive, StatusScore(s), s)
	}
}

func TestStatusScore_New(t *testing.T) {
	for _, s := range []string{"New", "Unassigned", "Unscheduled", "Pending", "Needs Scheduling"} {
		assert.Equal(t, StatusScoreNew, StatusScore(s), s)
	}
}

func TestStatusScore_UnknownDefaultsWithoutError(t *testing.T) {
	assert.Equal(t, StatusScoreDefault, StatusScore("Waiting on Parts"))
	assert.Equal(t, StatusScoreDefault, StatusScore(""))
	assert.Equal(t, StatusScoreDefault, StatusScore("???"))
}

func TestStatusScore_StemMatching(t *testing.T) {
	// Producer-specific compound labels still classify by stem.
	assert.Equal(t, StatusScoreTerminal, StatusScore("Completed - Paid"))
	assert.Equal(t, StatusScoreTerminal, StatusScore("Auto-Cancelled"))
	assert.Equal(t, StatusScoreNew, StatusScore("Still Unscheduled"))
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, StatusTerminal, ClassifyStatus("Completed"))
	assert.Equal(t, StatusActive, ClassifyStatus("scheduled"))
	assert.Equal(t, StatusNew, ClassifyStatus("NEW"))
	assert.Equal(t, StatusUnknown, ClassifyStatus("mystery"))
	assert.Equal(t, StatusUnknown, ClassifyStatus(""))
}
