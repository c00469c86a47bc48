package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remindbot/internal/core/reminder"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Buy milk", false},
		{"valid with spaces", " Buy milk ", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Required(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Required(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	require.NoError(t, TimeOfDay("07:30"))
	require.NoError(t, TimeOfDay("23:59"))

	err := TimeOfDay("7:30")
	require.ErrorIs(t, err, reminder.ErrInvalidTime)
	assert.Contains(t, err.Error(), `"7:30"`)
}

func TestTask(t *testing.T) {
	require.NoError(t, Task("42", "Buy milk", "07:30"))

	err := Task("", "Buy milk", "24:00")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "owner", fieldErrs[0].Field)
	assert.Equal(t, "time", fieldErrs[1].Field)
	assert.ErrorIs(t, fieldErrs[1].Err, reminder.ErrInvalidTime)
}
