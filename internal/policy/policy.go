// Package policy decides, per operation and caller identity, whether an order
// operation may proceed. It is deliberately separate from the order store so
// the access rules can be tested and changed independently of validation and
// persistence. All functions are pure; denials are errorbank.Forbidden.
//
// The rules are asymmetric on purpose: admins read anything, list anything,
// and may create on behalf of a customer, but order mutation (update/delete)
// is customer-exclusive. An admin cannot update or delete another customer's
// order.
package policy

import (
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

// CanListOrders checks a list query against the caller. A customer must
// explicitly restrict the query to themselves; omitting the customer filter
// or requesting another customer's orders is denied. Admins are unrestricted.
func CanListOrders(id identity.Identity, customerFilter string) error {
	switch id.Role {
	case identity.RoleAdmin:
		return nil
	case identity.RoleCustomer:
		if customerFilter == "" || customerFilter != id.Subject {
			return errorbank.Forbidden("customers may only list their own orders")
		}
		return nil
	}
	return errorbank.BadRequest("unrecognized role")
}

// CanReadOrder checks a read of a single order. Admins read anything;
// customers only their own.
func CanReadOrder(id identity.Identity, ownerID string) error {
	switch id.Role {
	case identity.RoleAdmin:
		return nil
	case identity.RoleCustomer:
		if ownerID != id.Subject {
			return errorbank.Forbidden("order belongs to another customer")
		}
		return nil
	}
	return errorbank.BadRequest("unrecognized role")
}

// CustomerForCreate resolves which customer a new order is created for.
// Customers always create for themselves; any caller-supplied value is
// ignored. Admins may create on behalf of a supplied customer and fall back
// to themselves when none is supplied.
func CustomerForCreate(id identity.Identity, requested string) (string, error) {
	switch id.Role {
	case identity.RoleAdmin:
		if requested != "" {
			return requested, nil
		}
		return id.Subject, nil
	case identity.RoleCustomer:
		return id.Subject, nil
	}
	return "", errorbank.BadRequest("unrecognized role")
}

// CanMutateOrder checks update and delete. Only the owning customer may
// mutate an order; there is no admin override.
func CanMutateOrder(id identity.Identity, ownerID string) error {
	switch id.Role {
	case identity.RoleAdmin, identity.RoleCustomer:
		if ownerID != id.Subject {
			return errorbank.Forbidden("only the owning customer may modify this order")
		}
		return nil
	}
	return errorbank.BadRequest("unrecognized role")
}
