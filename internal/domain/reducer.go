package domain

// ReduceStatus derives the order status from its item statuses after an item changed.
//
// All items cancelled cancels the order, and this rule wins over the next one.
// An order already IN_PROGRESS whose items are all DONE or CANCELLED becomes READY.
// Orders in any other status never auto-advance.
func ReduceStatus(current OrderStatus, items []ItemStatus) (OrderStatus, bool) {
	allCancelled := true
	allComplete := true

	for _, status := range items {
		if status != ItemStatusCancelled {
			allCancelled = false
		}
		if status != ItemStatusDone && status != ItemStatusCancelled {
			allComplete = false
		}
	}

	if allCancelled {
		return OrderStatusCancelled, true
	}

	if allComplete && current == OrderStatusInProgress {
		return OrderStatusReady, true
	}

	return current, false
}
