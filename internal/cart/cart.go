package cart

import (
	"fmt"

	"github.com/vietddude/storefront/internal/core/domain"
)

// MaxPerItem is the fixed per-line quantity cap, independent of stock.
const MaxPerItem = 3

// Item is one cart line. Identity is Product.ID.
type Item struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// State is the cart contents. Total always equals the sum of
// price x quantity over Items, recomputed on every accepted mutation.
// LastError is transient: set on a rejected mutation, cleared by any
// accepted mutation or an explicit AckError.
type State struct {
	Items     []Item  `json:"items"`
	Total     float64 `json:"total"`
	LastError string  `json:"last_error,omitempty"`
}

// Action is a cart mutation.
type Action interface {
	isAction()
}

// AddItem appends a product with quantity 1, or increments an existing
// line by 1 up to the effective cap.
type AddItem struct {
	Product domain.Product
}

// RemoveItem deletes a line. Removing an absent product is a no-op.
type RemoveItem struct {
	ProductID int64
}

// UpdateQuantity sets a line quantity. Zero or negative removes the
// line; a value above the effective cap is rejected, never clamped.
type UpdateQuantity struct {
	ProductID int64
	Quantity  int
}

// ClearCart resets to the empty state.
type ClearCart struct{}

// AckError clears LastError after the caller has surfaced it, so the
// same violation can be reported again.
type AckError struct{}

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (ClearCart) isAction()      {}
func (AckError) isAction()       {}

// effectiveCap is the per-line ceiling: the fixed cap or the stock
// level, whichever is lower.
func effectiveCap(p domain.Product) int {
	if p.StockQuantity < MaxPerItem {
		return p.StockQuantity
	}
	return MaxPerItem
}

// Reduce applies one action and returns the next state. It never
// panics and never returns an error: a rejected mutation comes back as
// the unchanged state with LastError set.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		return reduceAdd(state, a.Product)

	case RemoveItem:
		items := make([]Item, 0, len(state.Items))
		for _, it := range state.Items {
			if it.Product.ID != a.ProductID {
				items = append(items, it)
			}
		}
		return State{Items: items, Total: recompute(items)}

	case UpdateQuantity:
		return reduceUpdate(state, a.ProductID, a.Quantity)

	case ClearCart:
		return State{}

	case AckError:
		state.LastError = ""
		return state

	default:
		return state
	}
}

func reduceAdd(state State, p domain.Product) State {
	cap := effectiveCap(p)

	for i, it := range state.Items {
		if it.Product.ID != p.ID {
			continue
		}
		if it.Quantity+1 > cap {
			state.LastError = capError(p.Name, cap)
			return state
		}
		items := make([]Item, len(state.Items))
		copy(items, state.Items)
		items[i].Quantity++
		return State{Items: items, Total: recompute(items)}
	}

	if p.StockQuantity == 0 {
		state.LastError = fmt.Sprintf("%s is out of stock", p.Name)
		return state
	}

	items := make([]Item, len(state.Items), len(state.Items)+1)
	copy(items, state.Items)
	items = append(items, Item{Product: p, Quantity: 1})
	return State{Items: items, Total: recompute(items)}
}

func reduceUpdate(state State, productID int64, quantity int) State {
	if quantity <= 0 {
		return Reduce(state, RemoveItem{ProductID: productID})
	}

	for i, it := range state.Items {
		if it.Product.ID != productID {
			continue
		}
		cap := effectiveCap(it.Product)
		if quantity > cap {
			state.LastError = capError(it.Product.Name, cap)
			return state
		}
		items := make([]Item, len(state.Items))
		copy(items, state.Items)
		items[i].Quantity = quantity
		return State{Items: items, Total: recompute(items)}
	}

	// Unknown product: benign no-op, not an error.
	return State{Items: state.Items, Total: state.Total}
}

func capError(name string, cap int) string {
	return fmt.Sprintf("Maximum quantity of %d reached for %s", cap, name)
}

func recompute(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}
