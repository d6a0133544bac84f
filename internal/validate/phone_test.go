package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bakecake/pkg/domain"
)

func TestPhone(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		invalid bool
	}{
		{name: "e164 passthrough", in: "+79161234567", want: "+79161234567"},
		{name: "domestic with punctuation", in: "8 (916) 123-45-67", want: "+79161234567"},
		{name: "plain domestic", in: "89161234567", want: "+79161234567"},
		{name: "letters", in: "abc", invalid: true},
		{name: "empty", in: "", invalid: true},
		{name: "plus in the middle", in: "7916+1234567", invalid: true},
		{name: "too short garbage", in: "++", invalid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Phone(tc.in)
			if tc.invalid {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err), "expected a ValidationError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddress(t *testing.T) {
	got, err := Address("  12 Baker Street, apt 4  ")
	require.NoError(t, err)
	assert.Equal(t, "12 Baker Street, apt 4", got)

	_, err = Address("   ")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
