package progress

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/reckoning/go/internal/models"
)

func TestDecodeLocalRecord(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.ProgressState
	}{
		{
			name:     "canonical fields",
			input:    `{"xp": 100, "streak": 2, "completed": ["fig1"]}`,
			expected: models.ProgressState{Score: 100, StreakLength: 2, CompletedItems: []string{"fig1"}},
		},
		{
			name:     "bestQuestionStreak alias",
			input:    `{"userName": "ada", "xp": 10, "bestQuestionStreak": 7, "completed": []}`,
			expected: models.ProgressState{UserName: "ada", Score: 10, StreakLength: 7, CompletedItems: []string{}},
		},
		{
			name:     "both streak spellings take the higher",
			input:    `{"xp": 0, "streak": 9, "bestQuestionStreak": 4}`,
			expected: models.ProgressState{StreakLength: 9, CompletedItems: []string{}},
		},
		{
			name:     "duplicates removed in order",
			input:    `{"xp": 1, "streak": 0, "completed": ["b", "a", "b"]}`,
			expected: models.ProgressState{Score: 1, CompletedItems: []string{"b", "a"}},
		},
		{
			name:     "negative and fractional counters",
			input:    `{"xp": -5, "streak": 3.9}`,
			expected: models.ProgressState{StreakLength: 3, CompletedItems: []string{}},
		},
		{
			name:     "missing fields default to zero",
			input:    `{}`,
			expected: models.ProgressState{CompletedItems: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLocalRecord([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeLocalRecord_Malformed(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`{"xp": "lots"}`,
		`{"completed": [1, 2]}`,
		`[1, 2, 3]`,
	}

	for _, input := range inputs {
		_, err := DecodeLocalRecord([]byte(input))
		assert.ErrorIs(t, err, ErrMalformedLocalData, "input %q", input)
	}
}

func TestEncodeLocalRecord(t *testing.T) {
	data, err := EncodeLocalRecord(models.ProgressState{
		Identity:       "uid-1",
		Score:          50,
		StreakLength:   3,
		CompletedItems: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"xp": 50, "streak": 3, "completed": ["a", "b"]}`, string(data))
}

func TestEncodeLocalRecord_EmptyCompletedIsArray(t *testing.T) {
	data, err := EncodeLocalRecord(models.ProgressState{UserName: "ada"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"userName": "ada", "xp": 0, "streak": 0, "completed": []}`, string(data))
}

func TestLocalRecord_RoundTripNormalizesAlias(t *testing.T) {
	state, err := DecodeLocalRecord([]byte(`{"xp": 5, "bestQuestionStreak": 2, "completed": ["x"]}`))
	require.NoError(t, err)

	data, err := EncodeLocalRecord(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"xp": 5, "streak": 2, "completed": ["x"]}`, string(data))
}

// The game pages parse this record too, so the byte layout is pinned
func TestEncodeLocalRecord_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	decoded, err := DecodeLocalRecord([]byte(`{"completed": ["fig1", "fig2", "fig2", "fig3"], "bestQuestionStreak": 6, "xp": 1200, "userName": "ada"}`))
	require.NoError(t, err)
	data, err := EncodeLocalRecord(decoded)
	require.NoError(t, err)
	g.Assert(t, "local_record", data)

	data, err = EncodeLocalRecord(models.ProgressState{})
	require.NoError(t, err)
	g.Assert(t, "local_record_default", data)
}
