package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr error
	}{
		{name: "pdf", file: "tender.pdf", size: 1024},
		{name: "upper case extension", file: "SHEET.XLSX", size: 1024},
		{name: "exactly max", file: "scan.png", size: MaxSize},
		{name: "text file", file: "notes.txt", size: 10, wantErr: ErrExtensionNotAllowed},
		{name: "no extension", file: "README", size: 10, wantErr: ErrExtensionNotAllowed},
		{name: "one byte over", file: "big.pdf", size: MaxSize + 1, wantErr: ErrTooLarge},
		{name: "empty name", file: " ", size: 1, wantErr: ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.file, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, vErr.Message)
		})
	}
}

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot("tender-document")
	require.NoError(t, err)
	assert.Equal(t, SlotTenderDocument, slot)
	assert.Equal(t, "", slot.FilePrefix())

	slot, err = ParseSlot("working_sheet")
	require.NoError(t, err)
	assert.Equal(t, "working-sheet", slot.Path())
	assert.Equal(t, "ws_", slot.FilePrefix())

	_, err = ParseSlot("invoice")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}
