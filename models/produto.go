package models

// Produto represents a product in the catalog.
// ID is zero until the first save, when the database assigns it.
type Produto struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome       string  `gorm:"not null" json:"nome" validate:"required"`
	Quantidade int     `json:"quantidade"`
	Preco      float64 `gorm:"type:double precision" json:"preco"`
	Status     string  `json:"status"`
}

func (p *Produto) TableName() string {
	return "produtos"
}
