package models

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenDatabase(DatabaseOptions{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seed(t *testing.T, repo *ProdutosRepository, produtos ...Produto) []Produto {
	t.Helper()
	saved, err := repo.SaveAll(context.Background(), produtos)
	require.NoError(t, err)
	return saved
}

func nomes(produtos []Produto) []string {
	out := make([]string, len(produtos))
	for i, p := range produtos {
		out[i] = p.Nome
	}
	return out
}

func TestProdutosRepository_SaveAndFindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))

	input := Produto{Nome: "Skate", Quantidade: 200, Preco: 300.0, Status: "Disponivel"}
	saved, err := repo.Save(ctx, &Produto{Nome: input.Nome, Quantidade: input.Quantidade, Preco: input.Preco, Status: input.Status})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	input.ID = saved.ID
	assert.Equal(t, input, *found)
}

func TestProdutosRepository_FindByIDMissing(t *testing.T) {
	repo := NewProdutosRepository(setupTestDB(t))

	found, err := repo.FindByID(context.Background(), 424242)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestProdutosRepository_SaveUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))
	saved := seed(t, repo, Produto{Nome: "Skate p", Quantidade: 200, Preco: 300.0, Status: "Disponivel"})
	id := saved[0].ID

	updated, err := repo.Save(ctx, &Produto{ID: id, Nome: "Skate p2", Quantidade: 0, Preco: 320.0, Status: ""})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Skate p2", found.Nome)
	assert.Equal(t, 0, found.Quantidade, "zero values must be written too")
	assert.Equal(t, 320.0, found.Preco)
	assert.Equal(t, "", found.Status)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProdutosRepository_SaveUnknownIDInserts(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))
	seed(t, repo, Produto{Nome: "A"})

	saved, err := repo.Save(ctx, &Produto{ID: 99999, Nome: "B"})
	require.NoError(t, err)
	assert.NotEqual(t, int64(99999), saved.ID)

	exists, err := repo.ExistsByID(ctx, 99999)
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, nomes(all))
}

func TestProdutosRepository_SaveAllPreservesOrder(t *testing.T) {
	repo := NewProdutosRepository(setupTestDB(t))

	saved := seed(t, repo,
		Produto{Nome: "Primeiro", Preco: 1},
		Produto{Nome: "Segundo", Preco: 2},
		Produto{Nome: "Terceiro", Preco: 3},
	)

	require.Len(t, saved, 3)
	assert.Equal(t, []string{"Primeiro", "Segundo", "Terceiro"}, nomes(saved))
	for _, p := range saved {
		assert.NotZero(t, p.ID)
	}
	assert.Less(t, saved[0].ID, saved[1].ID)
	assert.Less(t, saved[1].ID, saved[2].ID)
}

func TestProdutosRepository_SaveAllStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	require.NoError(t, db.Exec(`CREATE TRIGGER rejeita_estoque_negativo BEFORE INSERT ON produtos
		WHEN NEW.quantidade < 0
		BEGIN SELECT RAISE(ABORT, 'quantidade negativa'); END`).Error)
	repo := NewProdutosRepository(db)

	saved, err := repo.SaveAll(ctx, []Produto{
		{Nome: "Primeiro", Quantidade: 1},
		{Nome: "Segundo", Quantidade: 2},
		{Nome: "Invalido", Quantidade: -1},
		{Nome: "Nunca", Quantidade: 3},
	})

	require.Error(t, err)
	assert.ErrorContains(t, err, "save item 2")
	assert.ErrorContains(t, err, "quantidade negativa")
	assert.Equal(t, []string{"Primeiro", "Segundo"}, nomes(saved))

	// Rows saved before the failure stay committed.
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Primeiro", "Segundo"}, nomes(all))
}

func TestProdutosRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))
	saved := seed(t, repo, Produto{Nome: "To Be Deleted"})

	t.Run("existing produto", func(t *testing.T) {
		require.NoError(t, repo.DeleteByID(ctx, saved[0].ID))

		found, err := repo.FindByID(ctx, saved[0].ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("missing produto is not an error", func(t *testing.T) {
		require.NoError(t, repo.DeleteByID(ctx, saved[0].ID))
		require.NoError(t, repo.DeleteByID(ctx, 777))

		found, err := repo.FindByID(ctx, 777)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestProdutosRepository_ExistsByID(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))
	saved := seed(t, repo, Produto{Nome: "X"})

	exists, err := repo.ExistsByID(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, saved[0].ID+1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProdutosRepository_NameQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))
	seed(t, repo,
		Produto{Nome: "Skate", Status: "Disponivel"},
		Produto{Nome: "Skate", Status: "Esgotado"},
		Produto{Nome: "Skate Pro", Status: "Disponivel"},
		Produto{Nome: "Mini Skate", Status: "Disponivel"},
		Produto{Nome: "Patins", Status: "Disponivel"},
		Produto{Nome: "100% Algodao", Status: "Disponivel"},
		Produto{Nome: "1000 Algodao", Status: "Disponivel"},
	)

	testCases := []struct {
		name     string
		query    func() ([]Produto, error)
		expected []string
	}{
		{
			name:     "exact name",
			query:    func() ([]Produto, error) { return repo.FindByNome(ctx, "Skate") },
			expected: []string{"Skate", "Skate"},
		},
		{
			name:     "exact name has no partial matches",
			query:    func() ([]Produto, error) { return repo.FindByNome(ctx, "Skat") },
			expected: []string{},
		},
		{
			name:     "containing",
			query:    func() ([]Produto, error) { return repo.FindByNomeContaining(ctx, "kat") },
			expected: []string{"Skate", "Skate", "Skate Pro", "Mini Skate"},
		},
		{
			name:     "name and status",
			query:    func() ([]Produto, error) { return repo.FindByNomeAndStatus(ctx, "Skate", "Esgotado") },
			expected: []string{"Skate"},
		},
		{
			name:     "starting with",
			query:    func() ([]Produto, error) { return repo.FindByNomeStartingWith(ctx, "Skate") },
			expected: []string{"Skate", "Skate", "Skate Pro"},
		},
		{
			name:     "ending with",
			query:    func() ([]Produto, error) { return repo.FindByNomeEndingWith(ctx, "Skate") },
			expected: []string{"Skate", "Skate", "Mini Skate"},
		},
		{
			name:     "wildcards in input match literally",
			query:    func() ([]Produto, error) { return repo.FindByNomeStartingWith(ctx, "100%") },
			expected: []string{"100% Algodao"},
		},
		{
			name:     "underscore in input matches literally",
			query:    func() ([]Produto, error) { return repo.FindByNomeContaining(ctx, "_") },
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tc.query()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, nomes(result))
		})
	}
}

func TestProdutosRepository_ContainingIsSupersetOfExact(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))
	seed(t, repo, Produto{Nome: "Bola"}, Produto{Nome: "Bola de Futebol"}, Produto{Nome: "Rede"})

	for _, term := range []string{"Bola", "Rede", "de", "Inexistente"} {
		exact, err := repo.FindByNome(ctx, term)
		require.NoError(t, err)
		containing, err := repo.FindByNomeContaining(ctx, term)
		require.NoError(t, err)

		for _, p := range exact {
			assert.Contains(t, containing, p, "term %q", term)
		}
	}
}

func TestProdutosRepository_PriceQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))
	seed(t, repo,
		Produto{Nome: "Barato", Preco: 10.0},
		Produto{Nome: "Medio", Preco: 300.0},
		Produto{Nome: "Caro", Preco: 999.99},
	)

	equal, err := repo.FindByPreco(ctx, 300.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Medio"}, nomes(equal))

	greater, err := repo.FindByPrecoGreaterThan(ctx, 300.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Caro"}, nomes(greater), "greater than is strict")

	less, err := repo.FindByPrecoLessThan(ctx, 300.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Barato"}, nomes(less), "less than is strict")

	none, err := repo.FindByPreco(ctx, 300.01)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProdutosRepository_FindTotalPreco(t *testing.T) {
	ctx := context.Background()
	repo := NewProdutosRepository(setupTestDB(t))

	t.Run("empty table is null, not zero", func(t *testing.T) {
		total, err := repo.FindTotalPreco(ctx)
		require.NoError(t, err)
		assert.False(t, total.Valid)
	})

	t.Run("sum of prices", func(t *testing.T) {
		seed(t, repo, Produto{Nome: "A", Preco: 10.0}, Produto{Nome: "B", Preco: 20.5})

		total, err := repo.FindTotalPreco(ctx)
		require.NoError(t, err)
		require.True(t, total.Valid)
		assert.Equal(t, "30.5", total.Decimal.String())
	})
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase(DatabaseOptions{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestOpenDatabase_LogsQueriesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	db, err := OpenDatabase(DatabaseOptions{
		Driver:   DriverSQLite,
		DSN:      ":memory:",
		Logger:   slog.New(slog.NewTextHandler(&buf, nil)),
		LogLevel: logger.Info,
	})
	require.NoError(t, err)

	_, err = NewProdutosRepository(db).Save(context.Background(), &Produto{Nome: "Skate"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "INSERT INTO")
}
