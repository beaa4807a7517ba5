package models

type Product struct {
	ID          int      `bson:"_id" json:"id"`
	Name        string   `bson:"nombre" json:"nombre"`
	Description string   `bson:"descripcion" json:"descripcion"`
	Image       string   `bson:"imagen" json:"imagen"`
	NormalPrice float64  `bson:"precio_normal" json:"precio_normal"`
	SalePrice   *float64 `bson:"precio_rebajado,omitempty" json:"precio_rebajado,omitempty"`
	Stock       int      `bson:"cantidad" json:"cantidad"`
	CategoryID  int      `bson:"id_categoria" json:"id_categoria"`
}

// EffectivePrice is the discounted price when one is set, else the normal price.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.NormalPrice
}

type ProductFilter struct {
	CategoryID *int
}

// ProductUpdate carries the admin-editable fields; nil means unchanged.
// ClearSalePrice removes the discount.
type ProductUpdate struct {
	NormalPrice    *float64
	SalePrice      *float64
	ClearSalePrice bool
	Stock          *int
}
