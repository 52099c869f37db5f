// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ordering

import "github.com/danielhkuo/lunchpick/models"

// ComputeBill returns what userID owes for the day's orders.
//
// The delivery fee is split evenly across every order of the day and rounded
// up to the next cent, so the orderer is never short. The fee is taken from
// the first order carrying one; orders without a closure add no fee.
func ComputeBill(userID string, orders []models.Order) models.Bill {
	var own int64
	var fee int64
	feeFound := false

	for _, o := range orders {
		if o.UserID == userID {
			own += o.PriceCents
		}
		if !feeFound && o.DeliveryFeeCents != nil {
			fee = *o.DeliveryFeeCents
			feeFound = true
		}
	}

	share := deliveryShare(fee, len(orders))
	total := own + share

	return models.Bill{
		UserID:             userID,
		OwnDishCents:       own,
		DeliveryShareCents: share,
		TotalCents:         total,
		Total:              models.FormatCents(total),
	}
}

// deliveryShare is ceil(fee / participants) in whole cents
func deliveryShare(fee int64, participants int) int64 {
	if participants <= 0 || fee <= 0 {
		return 0
	}
	n := int64(participants)
	return (fee + n - 1) / n
}
