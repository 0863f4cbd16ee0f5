package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manimark/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		json string
		want model.MediaInfo
	}{
		{
			name: "container duration",
			json: `{"streams":[{"codec_type":"video","width":1920,"height":1080,"duration":"4.950000"}],
			        "format":{"duration":"5.000000"}}`,
			want: model.MediaInfo{DurationSec: 5, Width: 1920, Height: 1080},
		},
		{
			name: "stream duration when container lacks it",
			json: `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":854,"height":480,"duration":"3.5"}],
			        "format":{"duration":"N/A"}}`,
			want: model.MediaInfo{DurationSec: 3.5, Width: 854, Height: 480},
		},
		{
			name: "no streams",
			json: `{"format":{}}`,
			want: model.MediaInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("not json"))
	require.Error(t, err)
}

func TestProberFunc(t *testing.T) {
	var p Prober = ProberFunc(func(path string) (model.MediaInfo, error) {
		return model.MediaInfo{Width: len(path)}, nil
	})
	info, err := p.Probe("abc")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Width)
}
