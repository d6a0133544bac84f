package dialog

import (
	"fmt"
	"strings"

	"github.com/aretw0/bakecake/pkg/domain"
)

// FormatPrice renders an integer price for the customer.
func FormatPrice(price int64) string {
	return fmt.Sprintf("%d ₽", price)
}

// OptionLabel renders one option row for a category keyboard. The trailing
// "#id" marker is what the classifier parses back out.
func OptionLabel(opt domain.Option) string {
	return fmt.Sprintf("%s — %s #%d", opt.Name, FormatPrice(opt.Price), opt.ID)
}

// OrderLabel renders one order row for the history keyboard. The "№id"
// marker is what the classifier parses back out.
func OrderLabel(o domain.Order) string {
	return fmt.Sprintf("Order №%d — %s (%s)", o.ID, FormatPrice(o.Total), o.CreatedAt.Format("02.01.2006"))
}

func text(msg string) domain.Reply {
	return domain.Reply{Text: msg}
}

func consentPrompt(policyPath string) []domain.Reply {
	replies := []domain.Reply{}
	if policyPath != "" {
		replies = append(replies, domain.Reply{DocumentPath: policyPath})
	}
	return append(replies, domain.Reply{
		Text:        "Please review and accept our personal data processing policy.",
		Suggestions: []string{LabelAccept, LabelDecline},
	})
}

func phonePrompt() domain.Reply {
	return text("Please share your phone number.")
}

func addressPrompt() domain.Reply {
	return text("Please share your delivery address.")
}

func mainMenu(hasOrders bool) domain.Reply {
	suggestions := []string{LabelBuildCake}
	if hasOrders {
		suggestions = append(suggestions, LabelViewOrders)
	}
	return domain.Reply{
		Text:        "What would you like to do?",
		Suggestions: suggestions,
	}
}

func categoryPrompt(cat domain.CategoryWithOptions) domain.Reply {
	suggestions := make([]string, 0, len(cat.Options)+2)
	if !cat.Mandatory {
		suggestions = append(suggestions, LabelSkip)
	}
	for _, opt := range cat.Options {
		suggestions = append(suggestions, OptionLabel(opt))
	}
	suggestions = append(suggestions, LabelReturnToMenu)
	return domain.Reply{
		Text:        fmt.Sprintf("Pick a %q option.", cat.Title),
		Suggestions: suggestions,
	}
}

func cakeReadyPrompt(c *domain.Cake) domain.Reply {
	return domain.Reply{
		Text:        fmt.Sprintf("Your cake is ready! Total: %s.", FormatPrice(c.Price())),
		Suggestions: []string{LabelPlaceOrder, LabelReturnToMenu},
	}
}

func inscriptionPrompt() domain.Reply {
	return text("What should we write on the cake?")
}

func ordersPrompt(orders []domain.Order) domain.Reply {
	suggestions := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		suggestions = append(suggestions, OrderLabel(o))
	}
	suggestions = append(suggestions, LabelReturnToMenu)
	return domain.Reply{
		Text:        "Pick an order to view.",
		Suggestions: suggestions,
	}
}

func orderSummary(o *domain.Order, customer *domain.Customer) domain.Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Order №%d\n", o.ID)
	fmt.Fprintf(&b, "Status: %s\n\n", o.Status.Label())
	fmt.Fprintf(&b, "Cakes in the order: %d\n", len(o.Cakes))
	fmt.Fprintf(&b, "Order total: %s\n\n", FormatPrice(o.Total))
	fmt.Fprintf(&b, "Recipient: %s\n", customer.DisplayName())
	fmt.Fprintf(&b, "Phone: %s\n", customer.Phone)
	fmt.Fprintf(&b, "Delivery address: %s", customer.Address)
	return text(b.String())
}

func reviewPrompt() domain.Reply {
	return domain.Reply{
		Text:        "Please check your order.",
		Suggestions: []string{LabelConfirmOrder, LabelChangePhone, LabelChangeAddress, LabelCancel},
	}
}

func notUnderstood() domain.Reply {
	return text("Sorry, I did not understand that.")
}

func somethingWentWrong() domain.Reply {
	return text("Sorry, something went wrong. Please try again.")
}
