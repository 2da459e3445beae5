// Package validate shape-checks create/update/complete request bodies
// before any handler logic runs, converting untyped JSON into the typed
// records the checkout engine consumes.
package validate

import "acp-checkout-gateway/internal/core/domain"

// ItemInput mirrors domain.ItemRef on the wire.
type ItemInput struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// AddressInput mirrors domain.Address on the wire.
type AddressInput struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required,len=2"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
}

// CustomerInput mirrors domain.Customer on the wire.
type CustomerInput struct {
	BillingAddress  *AddressInput `json:"billing_address,omitempty" validate:"omitempty"`
	ShippingAddress *AddressInput `json:"shipping_address,omitempty" validate:"omitempty"`
}

// FulfillmentInput carries only the agent-selectable part of fulfillment;
// the options themselves always come from the catalog.
type FulfillmentInput struct {
	SelectedID string `json:"selected_id,omitempty"`
}

// CreateRequest is the body of POST /checkout_sessions.
type CreateRequest struct {
	Items       []ItemInput       `json:"items" validate:"required,min=1,dive"`
	Customer    *CustomerInput    `json:"customer,omitempty" validate:"omitempty"`
	Fulfillment *FulfillmentInput `json:"fulfillment,omitempty" validate:"omitempty"`
}

// UpdateRequest is the body of POST /checkout_sessions/{id}; every field is
// optional but at least one must be present.
type UpdateRequest struct {
	Items       []ItemInput       `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Customer    *CustomerInput    `json:"customer,omitempty" validate:"omitempty"`
	Fulfillment *FulfillmentInput `json:"fulfillment,omitempty" validate:"omitempty"`
}

// IsEmpty reports whether the request carries no fields at all, which is
// itself a validation failure (§4.6: "at least one field must be present").
func (r UpdateRequest) IsEmpty() bool {
	return r.Items == nil && r.Customer == nil && r.Fulfillment == nil
}

// PaymentInput is the payment handle passed through to the PSP.
type PaymentInput struct {
	DelegatedToken string `json:"delegated_token,omitempty"`
	Method         string `json:"method,omitempty"`
}

// HasCredential reports whether at least one payment field is non-empty.
func (p PaymentInput) HasCredential() bool {
	return p.DelegatedToken != "" || p.Method != ""
}

// CompleteRequest is the body of POST /checkout_sessions/{id}/complete.
type CompleteRequest struct {
	Payment     PaymentInput      `json:"payment" validate:"required"`
	Customer    *CustomerInput    `json:"customer,omitempty" validate:"omitempty"`
	Fulfillment *FulfillmentInput `json:"fulfillment,omitempty" validate:"omitempty"`
}

func toAddress(in *AddressInput) *domain.Address {
	if in == nil {
		return nil
	}
	return &domain.Address{
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		Region:     in.Region,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Name:       in.Name,
		Phone:      in.Phone,
		Email:      in.Email,
	}
}

func toCustomer(in *CustomerInput) *domain.Customer {
	if in == nil {
		return nil
	}
	return &domain.Customer{
		BillingAddress:  toAddress(in.BillingAddress),
		ShippingAddress: toAddress(in.ShippingAddress),
	}
}

func toItemRefs(in []ItemInput) []domain.ItemRef {
	if in == nil {
		return nil
	}
	refs := make([]domain.ItemRef, len(in))
	for i, item := range in {
		refs[i] = domain.ItemRef{ID: item.ID, Quantity: item.Quantity}
	}
	return refs
}

func toFulfillment(in *FulfillmentInput) *domain.Fulfillment {
	if in == nil {
		return nil
	}
	return &domain.Fulfillment{SelectedID: in.SelectedID}
}

// ToDomain converts a CreateRequest to the (items, customer, fulfillment)
// triple the checkout engine prices.
func (r CreateRequest) ToDomain() ([]domain.ItemRef, *domain.Customer, *domain.Fulfillment) {
	return toItemRefs(r.Items), toCustomer(r.Customer), toFulfillment(r.Fulfillment)
}

// ToDomain converts an UpdateRequest the same way, returning nils for
// fields the client omitted so the engine can merge against the current session.
func (r UpdateRequest) ToDomain() ([]domain.ItemRef, *domain.Customer, *domain.Fulfillment) {
	return toItemRefs(r.Items), toCustomer(r.Customer), toFulfillment(r.Fulfillment)
}
