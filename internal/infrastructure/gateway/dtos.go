package gateway

// OrderRequest creates a gateway order ahead of client-side checkout.
// Amount is in minor currency units.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type OrderResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// PaymentResponse is the gateway's authoritative record of a payment.
// Status values of interest are "captured" and "authorized"; anything else
// means the payment did not succeed.
type PaymentResponse struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	CreatedAt        int64  `json:"created_at"`
}

// IsSuccessful reports whether the payment went through. Authorized-but-not-
// yet-captured payments count as success; capture settles asynchronously.
func (p *PaymentResponse) IsSuccessful() bool {
	return p.Status == "captured" || p.Status == "authorized"
}
