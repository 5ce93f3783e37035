package rental

type CreateRentalReq struct {
	ItemID      int64   `json:"item_id" validate:"required,gt=0"`
	VariantID   *int64  `json:"variant_id" validate:"omitempty,gt=0"`
	Start       string  `json:"start" validate:"required,datetime=2006-01-02"`
	End         string  `json:"end" validate:"required,datetime=2006-01-02"`
	PricePerDay float64 `json:"price_per_day" validate:"required,gt=0"`
	TotalPrice  float64 `json:"total_price" validate:"required,gt=0"`
}

type UpdateRentalReq struct {
	Status *string `json:"status" validate:"omitempty,oneof=ACTIVE RETURNED LATE CANCELED"`
	Start  *string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End    *string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}
