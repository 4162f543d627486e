package billing

import (
	"fmt"

	"billbook/internal/model"
)

// billTransitions is the legal-edge table for bills. Submitted is the only
// status that can move backwards (revert to draft); paid and voided are
// terminal.
var billTransitions = map[model.BillStatus][]model.BillStatus{
	model.BillDraft:     {model.BillSubmitted, model.BillVoided},
	model.BillSubmitted: {model.BillApproved, model.BillDraft, model.BillVoided},
	model.BillApproved:  {model.BillPaid, model.BillVoided},
	model.BillPaid:      {},
	model.BillVoided:    {},
}

// poTransitions is the legal-edge table for purchase orders. An approved PO
// ends by being billed (converted) or closed without billing.
var poTransitions = map[model.PurchaseOrderStatus][]model.PurchaseOrderStatus{
	model.POStatusDraft:     {model.POStatusSubmitted},
	model.POStatusSubmitted: {model.POStatusApproved, model.POStatusDraft},
	model.POStatusApproved:  {model.POStatusBilled, model.POStatusClosed},
	model.POStatusBilled:    {},
	model.POStatusClosed:    {},
}

// NextStatuses returns the statuses a bill may move to from current. The
// result is a copy; terminal and unknown statuses yield an empty slice.
func NextStatuses(current model.BillStatus) []model.BillStatus {
	next := billTransitions[current]
	out := make([]model.BillStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether the from -> to edge is legal for bills.
func CanTransition(from, to model.BillStatus) bool {
	for _, s := range billTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsEditable reports whether a bill's content (lines, dates, contact) may
// still change. Leaving draft locks line items.
func IsEditable(current model.BillStatus) bool {
	return current == model.BillDraft
}

// CanReceivePayment reports whether payments may be recorded against a bill
// in the given status.
func CanReceivePayment(current model.BillStatus) bool {
	return current == model.BillApproved
}

// ApplyTransition validates and returns the requested status. It performs no
// I/O; persisting the new status and any side effects (ledger impact on
// approval, locking lines on leaving draft) are the caller's responsibility.
func ApplyTransition(current, requested model.BillStatus) (model.BillStatus, error) {
	if !CanTransition(current, requested) {
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, requested)
	}
	return requested, nil
}

// NextPOStatuses returns the statuses a purchase order may move to from current.
func NextPOStatuses(current model.PurchaseOrderStatus) []model.PurchaseOrderStatus {
	next := poTransitions[current]
	out := make([]model.PurchaseOrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionPO reports whether the from -> to edge is legal for purchase orders.
func CanTransitionPO(from, to model.PurchaseOrderStatus) bool {
	for _, s := range poTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsPOEditable reports whether a purchase order's content may still change.
func IsPOEditable(current model.PurchaseOrderStatus) bool {
	return current == model.POStatusDraft
}

// ApplyPOTransition validates and returns the requested purchase order status.
func ApplyPOTransition(current, requested model.PurchaseOrderStatus) (model.PurchaseOrderStatus, error) {
	if !CanTransitionPO(current, requested) {
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, requested)
	}
	return requested, nil
}
