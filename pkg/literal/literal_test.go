package literal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "keywords",
			in:   `{"a": True, "b": False, "c": None, "TrueName": "True"}`,
			want: `{"a": true, "b": false, "c": null, "TrueName": "True"}`,
		},
		{
			name: "single quotes",
			in:   `{'who': 'a', 'when': None}`,
			want: `{"who": "a", "when": null}`,
		},
		{
			name: "escaped apostrophe",
			in:   `{'it\'s': Trueish} # comment` + "\n",
			want: `{"it's": Trueish} ` + "\n",
		},
		{
			name: "double quote inside single quotes",
			in:   `['say "hi"']`,
			want: `["say \"hi\""]`,
		},
		{
			name: "apostrophe inside double quotes",
			in:   `{"why": "it's None # here"}`,
			want: `{"why": "it's None # here"}`,
		},
		{
			name: "other escapes kept",
			in:   `['a\nb\\']`,
			want: `["a\nb\\"]`,
		},
		{
			name: "python list",
			in:   `['kompas.com', 'detik.com',]`,
			want: `["kompas.com", "detik.com",]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToJSON(tt.in))
		})
	}
}
