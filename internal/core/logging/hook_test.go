package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  map[string]string
		wantEmpty []string
	}{
		{
			name: "nav id and provider",
			setupCtx: func() context.Context {
				ctx := WithNavID(context.Background(), "nav-1")
				return WithProvider(ctx, "aws")
			},
			wantKeys: map[string]string{"nav_id": "nav-1", "provider": "aws"},
		},
		{
			name: "only nav id",
			setupCtx: func() context.Context {
				return WithNavID(context.Background(), "nav-2")
			},
			wantKeys:  map[string]string{"nav_id": "nav-2"},
			wantEmpty: []string{"provider"},
		},
		{
			name:      "background",
			setupCtx:  context.Background,
			wantEmpty: []string{"nav_id", "provider"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.setupCtx()).Msg("test")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			for k, want := range tt.wantKeys {
				assert.Equal(t, want, entry[k], k)
			}
			for _, k := range tt.wantEmpty {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestGetters_Missing(t *testing.T) {
	assert.Empty(t, GetNavID(context.Background()))
	assert.Empty(t, GetProvider(context.Background()))
}
