package models

// DerivedMetrics are ratios computed from a Volume. They are never stored on
// their own; they always travel with the record or aggregate they describe.
//
// Every ratio with a zero denominator resolves to 0, except CPA which is
// undefined (NaN) so that "spent with no orders" cannot read as free
// conversions. ATCRate and CheckoutRate are nil when the dataset carries no
// add_to_cart column.
type DerivedMetrics struct {
	CTR          float64  `json:"ctr"`  // clicks / impressions
	CVR          float64  `json:"cvr"`  // orders / clicks
	ROAS         float64  `json:"roas"` // revenue / cost
	CPC          float64  `json:"cpc"`  // cost / clicks
	CPA          Float    `json:"cpa"`  // cost / orders
	ACOS         float64  `json:"acos"` // cost / revenue
	RPC          float64  `json:"rpc"`  // revenue / clicks
	ATCRate      *float64 `json:"atc_rate,omitempty"`
	CheckoutRate *float64 `json:"checkout_rate,omitempty"`
}
