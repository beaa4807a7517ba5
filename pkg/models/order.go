package models

import (
	"time"
)

const (
	OrderStatusPending   = "pendiente"
	OrderStatusShipped   = "enviado"
	OrderStatusDelivered = "entregado"
)

type Address struct {
	PostalCode   string `bson:"codigo_postal" json:"codigo_postal"`
	State        string `bson:"estado" json:"estado"`
	City         string `bson:"ciudad" json:"ciudad"`
	Street       string `bson:"calle" json:"calle"`
	Interior     string `bson:"numero_interior" json:"numero_interior"`
	Country      string `bson:"pais" json:"pais"`
	Neighborhood string `bson:"colonia" json:"colonia"`
}

// OrderLine is a snapshot of the product at purchase time.
type OrderLine struct {
	ProductID int     `bson:"id_producto" json:"id_producto"`
	Name      string  `bson:"nombre" json:"nombre"`
	Image     string  `bson:"imagen" json:"imagen"`
	Price     float64 `bson:"precio" json:"precio"`
	Quantity  int     `bson:"cantidad" json:"cantidad"`
}

type Order struct {
	ID            int         `bson:"_id" json:"id"`
	UID           string      `bson:"uid" json:"uid"`
	Address       Address     `bson:"direccion_envio" json:"direccion_envio"`
	PlacedAt      time.Time   `bson:"fecha_pedido" json:"fecha_pedido"`
	Status        string      `bson:"estado" json:"estado"`
	Total         float64     `bson:"monto_total" json:"monto_total"`
	ShippedAt     *time.Time  `bson:"fecha_envio" json:"fecha_envio"`
	DeliveredAt   *time.Time  `bson:"fecha_entrega" json:"fecha_entrega"`
	PaymentMethod string      `bson:"metodo_pago" json:"metodo_pago"`
	Lines         []OrderLine `bson:"productos" json:"productos"`
}

// StatusChange is the only mutation an order accepts after creation.
type StatusChange struct {
	Status      string
	ShippedAt   *time.Time
	DeliveredAt *time.Time
}
