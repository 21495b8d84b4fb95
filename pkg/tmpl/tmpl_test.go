package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "/get-article?id={{ .ID }}",
			data: map[string]int{"ID": 12},
			want: "/get-article?id=12",
		},
		{
			name: "query escaping",
			tmpl: "/get-first?to_lang={{ q .ToLang }}",
			data: struct{ ToLang string }{"pt BR&x"},
			want: "/get-first?to_lang=pt+BR%26x",
		},
		{
			name: "path escaping and case",
			tmpl: "/remove/{{ path .Name }}/{{ upper .Code }}",
			data: map[string]string{"Name": "a/b", "Code": "de"},
			want: "/remove/a%2Fb/DE",
		},
		{
			name:    "missing key is an error",
			tmpl:    "{{ .Nope }}",
			data:    map[string]string{},
			wantErr: true,
		},
		{
			name:    "parse error",
			tmpl:    "{{ .Open",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
