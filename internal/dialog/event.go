package dialog

import (
	"strconv"
	"strings"

	"github.com/aretw0/bakecake/pkg/domain"
)

// Button labels the bot puts on reply keyboards. The classifier is the only
// place that knows them; state handlers work with typed events.
const (
	LabelBuildCake     = "Build a cake"
	LabelViewOrders    = "Your orders"
	LabelSkip          = "Skip"
	LabelReturnToMenu  = "Back to menu"
	LabelPlaceOrder    = "Place order"
	LabelConfirmOrder  = "Confirm order"
	LabelChangePhone   = "Change phone"
	LabelChangeAddress = "Change address"
	LabelCancel        = "Cancel"
	LabelAccept        = "Accept the policy"
	LabelDecline       = "Decline"
)

// Event is a classified inbound input. Exactly one concrete type per kind of
// customer action; free text that matches no button falls through as Text.
type Event interface{ isEvent() }

type (
	// BuildCake starts the cake-composition flow.
	BuildCake struct{}
	// ViewOrders opens the customer's order history.
	ViewOrders struct{}
	// Skip leaves the currently presented optional category unset.
	Skip struct{}
	// ReturnToMenu abandons the current flow.
	ReturnToMenu struct{}
	// PlaceOrder turns the finished cake into an order.
	PlaceOrder struct{}
	// ConfirmOrder confirms the order under review.
	ConfirmOrder struct{}
	// ChangePhone asks to replace the contact phone during review.
	ChangePhone struct{}
	// ChangeAddress asks to replace the delivery address during review.
	ChangeAddress struct{}
	// CancelOrder discards the order under review.
	CancelOrder struct{}
	// AcceptConsent grants personal-data processing consent.
	AcceptConsent struct{}
	// DeclineConsent declines personal-data processing consent.
	DeclineConsent struct{}
	// SelectOption picks a catalog option ("Chocolate — 200 ₽ #21").
	SelectOption struct{ OptionID int64 }
	// SelectOrder picks an order from the history keyboard ("Order №5 …").
	SelectOrder struct{ OrderID int64 }
	// Text is free-form input (phone, address, inscription).
	Text struct{ Value string }
)

func (BuildCake) isEvent()      {}
func (ViewOrders) isEvent()     {}
func (Skip) isEvent()           {}
func (ReturnToMenu) isEvent()   {}
func (PlaceOrder) isEvent()     {}
func (ConfirmOrder) isEvent()   {}
func (ChangePhone) isEvent()    {}
func (ChangeAddress) isEvent()  {}
func (CancelOrder) isEvent()    {}
func (AcceptConsent) isEvent()  {}
func (DeclineConsent) isEvent() {}
func (SelectOption) isEvent()   {}
func (SelectOrder) isEvent()    {}
func (Text) isEvent()           {}

// Classify maps raw input text onto exactly one Event. Identifier-carrying
// rows are recognized by their marker ("#" for options, "№" for orders); a
// marker without a parseable id fails with domain.ErrParse, which callers
// treat as "not understood".
func Classify(input string) (Event, error) {
	text := strings.TrimSpace(input)

	switch text {
	case LabelBuildCake:
		return BuildCake{}, nil
	case LabelViewOrders:
		return ViewOrders{}, nil
	case LabelSkip:
		return Skip{}, nil
	case LabelReturnToMenu:
		return ReturnToMenu{}, nil
	case LabelPlaceOrder:
		return PlaceOrder{}, nil
	case LabelConfirmOrder:
		return ConfirmOrder{}, nil
	case LabelChangePhone:
		return ChangePhone{}, nil
	case LabelChangeAddress:
		return ChangeAddress{}, nil
	case LabelCancel:
		return CancelOrder{}, nil
	case LabelAccept:
		return AcceptConsent{}, nil
	case LabelDecline:
		return DeclineConsent{}, nil
	}

	if strings.Contains(text, "#") {
		id, err := parseMarkedID(text, "#")
		if err != nil {
			return nil, err
		}
		return SelectOption{OptionID: id}, nil
	}
	if strings.Contains(text, "№") {
		id, err := parseMarkedID(text, "№")
		if err != nil {
			return nil, err
		}
		return SelectOrder{OrderID: id}, nil
	}

	return Text{Value: text}, nil
}

// parseMarkedID extracts the integer following the marker in a word like
// "#21" or "№5".
func parseMarkedID(text, marker string) (int64, error) {
	for _, word := range strings.Fields(text) {
		rest, ok := strings.CutPrefix(word, marker)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return 0, domain.ErrParse
		}
		return id, nil
	}
	return 0, domain.ErrParse
}
