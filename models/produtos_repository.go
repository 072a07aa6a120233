package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrProdutoNaoEncontrado is returned when an update targets an id that does not exist.
var ErrProdutoNaoEncontrado = errors.New("Produto não encontrado")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const likeClause = `nome LIKE ? ESCAPE '\'`

type ProdutosRepository struct {
	db *gorm.DB
}

func NewProdutosRepository(db *gorm.DB) *ProdutosRepository {
	return &ProdutosRepository{
		db: db,
	}
}

func (r *ProdutosRepository) FindAll(ctx context.Context) ([]Produto, error) {
	return r.find(ctx, r.db)
}

// FindByID returns nil without error when no row has the given id.
func (r *ProdutosRepository) FindByID(ctx context.Context, id int64) (*Produto, error) {
	var produto Produto
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&produto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find produto %d: %w", id, err)
	}
	return &produto, nil
}

// Save inserts p when its ID is zero and updates the matching row otherwise.
// A non-zero ID that matches no row is inserted under a newly generated ID.
func (r *ProdutosRepository) Save(ctx context.Context, p *Produto) (*Produto, error) {
	db := r.db.WithContext(ctx)

	if p.ID != 0 {
		result := db.Model(p).
			Select("nome", "quantidade", "preco", "status").
			Updates(p)
		if err := result.Error; err != nil {
			return nil, fmt.Errorf("failed to update produto %d: %w", p.ID, err)
		}
		if result.RowsAffected > 0 {
			return p, nil
		}
		p.ID = 0
	}

	if err := db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create produto: %w", err)
	}
	return p, nil
}

// SaveAll saves each element in order. It stops at the first failure and
// returns what was saved before it; earlier saves are not rolled back.
func (r *ProdutosRepository) SaveAll(ctx context.Context, produtos []Produto) ([]Produto, error) {
	saved := make([]Produto, 0, len(produtos))
	for i := range produtos {
		p, err := r.Save(ctx, &produtos[i])
		if err != nil {
			return saved, fmt.Errorf("save item %d: %w", i, err)
		}
		saved = append(saved, *p)
	}
	return saved, nil
}

// DeleteByID succeeds whether or not the row exists.
func (r *ProdutosRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Produto{}).Error; err != nil {
		return fmt.Errorf("failed to delete produto %d: %w", id, err)
	}
	return nil
}

func (r *ProdutosRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&Produto{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check produto %d: %w", id, err)
	}
	return count > 0, nil
}

func (r *ProdutosRepository) FindByNome(ctx context.Context, nome string) ([]Produto, error) {
	return r.find(ctx, r.db.Where("nome = ?", nome))
}

func (r *ProdutosRepository) FindByNomeContaining(ctx context.Context, substr string) ([]Produto, error) {
	return r.find(ctx, r.db.Where(likeClause, "%"+likeEscaper.Replace(substr)+"%"))
}

func (r *ProdutosRepository) FindByNomeAndStatus(ctx context.Context, nome, status string) ([]Produto, error) {
	return r.find(ctx, r.db.Where("nome = ? AND status = ?", nome, status))
}

func (r *ProdutosRepository) FindByNomeStartingWith(ctx context.Context, prefix string) ([]Produto, error) {
	return r.find(ctx, r.db.Where(likeClause, likeEscaper.Replace(prefix)+"%"))
}

func (r *ProdutosRepository) FindByNomeEndingWith(ctx context.Context, suffix string) ([]Produto, error) {
	return r.find(ctx, r.db.Where(likeClause, "%"+likeEscaper.Replace(suffix)))
}

// FindByPreco compares with exact floating-point equality. A price produced
// by arithmetic (100.0*3) may not match a stored 300.0.
func (r *ProdutosRepository) FindByPreco(ctx context.Context, preco float64) ([]Produto, error) {
	return r.find(ctx, r.db.Where("preco = ?", preco))
}

func (r *ProdutosRepository) FindByPrecoGreaterThan(ctx context.Context, preco float64) ([]Produto, error) {
	return r.find(ctx, r.db.Where("preco > ?", preco))
}

func (r *ProdutosRepository) FindByPrecoLessThan(ctx context.Context, preco float64) ([]Produto, error) {
	return r.find(ctx, r.db.Where("preco < ?", preco))
}

// FindTotalPreco sums preco over every row. The result is invalid on an empty table.
func (r *ProdutosRepository) FindTotalPreco(ctx context.Context) (decimal.NullDecimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).
		Model(&Produto{}).
		Select("SUM(preco)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to sum preco: %w", err)
	}
	return total, nil
}

func (r *ProdutosRepository) find(ctx context.Context, query *gorm.DB) ([]Produto, error) {
	produtos := []Produto{}
	if err := query.WithContext(ctx).
		Order("id").
		Find(&produtos).Error; err != nil {
		return nil, fmt.Errorf("failed to find produtos: %w", err)
	}
	return produtos, nil
}
