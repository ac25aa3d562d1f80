package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"plain", "Jan de Vries", "Jan de Vries"},
		{"trimmed", "  Jan  ", "Jan"},
		{"entities kept as text", "Jan & Piet", "Jan & Piet"},
		{"apostrophe", "D'Artagnan", "D'Artagnan"},
		{"accents", "Zoë", "Zoë"},
		{"tags stripped", "<b>Hallo</b> wereld", "Hallo wereld"},
		{"script removed", "<script>alert(1)</script>Hallo", "Hallo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestMap(t *testing.T) {
	in := map[string]string{"firstName": "<i>Jan</i>", "message": "Hallo"}

	out := Map(in)

	assert.Equal(t, map[string]string{"firstName": "Jan", "message": "Hallo"}, out)
	assert.Equal(t, "<i>Jan</i>", in["firstName"], "input is not modified")
}
