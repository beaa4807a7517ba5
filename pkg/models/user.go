package models

import (
	"time"
)

type User struct {
	UID        string    `bson:"_id" json:"uid"`
	Email      string    `bson:"email" json:"email"`
	FirstNames string    `bson:"nombres" json:"nombres"`
	LastNames  string    `bson:"apellidos" json:"apellidos"`
	Phone      string    `bson:"telefono" json:"telefono"`
	Photo      string    `bson:"foto_perfil" json:"foto_perfil"`
	ActiveCart string    `bson:"carrito_activo" json:"carrito_activo"`
	Orders     []int     `bson:"pedidos" json:"pedidos"`
	Admin      bool      `bson:"admin" json:"admin"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

type UserUpdate struct {
	FirstNames *string
	LastNames  *string
	Phone      *string
	Photo      *string
}
