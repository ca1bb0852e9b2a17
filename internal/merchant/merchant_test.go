package merchant

import (
	"testing"

	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	d := NewDetector(locale.MustDefault())

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "hinglish", text: "swiggy se 250 ki biryani mangayi", want: "Swiggy"},
		{name: "case insensitive", text: "ZOMATO order 300", want: "Zomato"},
		{name: "multi word", text: "big bazaar mein 1200 ka saaman", want: "Big Bazaar"},
		{name: "first in pack order", text: "uber to amazon office 180", want: "Uber"},
		{name: "none", text: "200 ka dosa khaya"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Bookmyshow", DisplayName("bookmyshow"))
	assert.Equal(t, "Big Bazaar", DisplayName("  big   bazaar "))
	assert.Equal(t, "", DisplayName(""))
}
