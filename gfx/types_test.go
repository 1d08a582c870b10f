package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHashDistinguishesAttachmentCombos(t *testing.T) {
	base := FormatHash(1, FormatD24nS8u, []Format{FormatRGBA8n})

	assert.Equal(t, base, FormatHash(1, FormatD24nS8u, []Format{FormatRGBA8n}))
	assert.NotEqual(t, base, FormatHash(4, FormatD24nS8u, []Format{FormatRGBA8n}), "sample count must contribute")
	assert.NotEqual(t, base, FormatHash(1, FormatD32f, []Format{FormatRGBA8n}), "depth format must contribute")
	assert.NotEqual(t, base, FormatHash(1, FormatD24nS8u, []Format{FormatRGBA16f}), "colour formats must contribute")
	assert.NotEqual(t,
		FormatHash(1, FormatUnknown, []Format{FormatRGBA8n, FormatRGBA16f}),
		FormatHash(1, FormatUnknown, []Format{FormatRGBA16f, FormatRGBA8n}),
		"colour attachment order must contribute")
}

func TestValidateDataSize(t *testing.T) {
	tests := []struct {
		name      string
		sizeBytes int
		data      []byte
		wantErr   bool
	}{
		{"nil data always validates", 64, nil, false},
		{"exact match", 4, []byte{1, 2, 3, 4}, false},
		{"too short", 4, []byte{1, 2}, true},
		{"too long", 2, []byte{1, 2, 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataSize(tt.sizeBytes, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDataSize)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTextureInfoSizeBytes(t *testing.T) {
	info := TextureInfo{Width: 4, Height: 4, Format: FormatRGBA8n}
	assert.Equal(t, 64, info.SizeBytes())

	info.Depth = 2
	assert.Equal(t, 128, info.SizeBytes())
}
