package models

import (
	"time"
)

type FAQ struct {
	ID       int    `bson:"_id" json:"id"`
	Question string `bson:"pregunta" json:"pregunta"`
	Answer   string `bson:"respuesta" json:"respuesta"`
}

type Post struct {
	ID          int       `bson:"_id" json:"id"`
	Title       string    `bson:"titulo" json:"titulo"`
	Body        string    `bson:"contenido" json:"contenido"`
	Image       string    `bson:"imagen" json:"imagen"`
	PublishedAt time.Time `bson:"fecha" json:"fecha"`
}

// Counter names, one singleton document per entity type.
const (
	CounterProducts = "productos"
	CounterOrders   = "pedidos"
	CounterFAQ      = "faq"
	CounterPosts    = "posts"
)
