package dialog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bakecake/internal/dialog"
	"github.com/aretw0/bakecake/pkg/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  dialog.Event
	}{
		{"build cake label", "Build a cake", dialog.BuildCake{}},
		{"view orders label", "Your orders", dialog.ViewOrders{}},
		{"skip label", "Skip", dialog.Skip{}},
		{"back to menu label", "Back to menu", dialog.ReturnToMenu{}},
		{"place order label", "Place order", dialog.PlaceOrder{}},
		{"confirm label", "Confirm order", dialog.ConfirmOrder{}},
		{"cancel label", "Cancel", dialog.CancelOrder{}},
		{"accept label", "Accept the policy", dialog.AcceptConsent{}},
		{"decline label", "Decline", dialog.DeclineConsent{}},
		{"label with padding", "  Skip  ", dialog.Skip{}},
		{"option row", "Chocolate — 200 ₽ #21", dialog.SelectOption{OptionID: 21}},
		{"bare option marker", "#7", dialog.SelectOption{OptionID: 7}},
		{"order row", "Order №5 — 1150 ₽ (02.05.2024)", dialog.SelectOrder{OrderID: 5}},
		{"free text", "Happy birthday!", dialog.Text{Value: "Happy birthday!"}},
		{"phone-looking text", "+79161234567", dialog.Text{Value: "+79161234567"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dialog.Classify(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_MalformedMarkers(t *testing.T) {
	for _, input := range []string{"#abc", "# 21", "№", "№minus", "#-3", "#0"} {
		t.Run(input, func(t *testing.T) {
			_, err := dialog.Classify(input)
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}
