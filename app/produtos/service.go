package produtos

import (
	"context"
	"log/slog"

	"github.com/produtoapi/produto-api/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Repository is the persistence contract the service depends on.
type Repository interface {
	FindAll(ctx context.Context) ([]models.Produto, error)
	FindByID(ctx context.Context, id int64) (*models.Produto, error)
	Save(ctx context.Context, p *models.Produto) (*models.Produto, error)
	SaveAll(ctx context.Context, produtos []models.Produto) ([]models.Produto, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	FindByNome(ctx context.Context, nome string) ([]models.Produto, error)
	FindByNomeContaining(ctx context.Context, substr string) ([]models.Produto, error)
	FindByNomeAndStatus(ctx context.Context, nome, status string) ([]models.Produto, error)
	FindByNomeStartingWith(ctx context.Context, prefix string) ([]models.Produto, error)
	FindByNomeEndingWith(ctx context.Context, suffix string) ([]models.Produto, error)
	FindByPreco(ctx context.Context, preco float64) ([]models.Produto, error)
	FindByPrecoGreaterThan(ctx context.Context, preco float64) ([]models.Produto, error)
	FindByPrecoLessThan(ctx context.Context, preco float64) ([]models.Produto, error)
	FindTotalPreco(ctx context.Context) (decimal.NullDecimal, error)
}

// Service holds the produto use cases. Only Atualizar adds a rule on top of
// the repository; every other method passes straight through.
type Service struct {
	repo       Repository
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
}

func NewService(repo Repository, tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) *Service {
	operations, _ := meter.Int64Counter(
		"produtos.operations",
		metric.WithDescription("Total number of produto operations"),
	)

	return &Service{
		repo:       repo,
		tracer:     tracer,
		logger:     logger,
		operations: operations,
	}
}

func (s *Service) ListarTodos(ctx context.Context) ([]models.Produto, error) {
	ctx, span := s.tracer.Start(ctx, "produtos.ListarTodos")
	defer span.End()

	produtos, err := s.repo.FindAll(ctx)
	s.record(ctx, span, "listar_todos", err)
	return produtos, err
}

func (s *Service) BuscarPorID(ctx context.Context, id int64) (*models.Produto, error) {
	ctx, span := s.tracer.Start(ctx, "produtos.BuscarPorID", trace.WithAttributes(attribute.Int64("produto.id", id)))
	defer span.End()

	produto, err := s.repo.FindByID(ctx, id)
	s.record(ctx, span, "buscar_por_id", err)
	return produto, err
}

func (s *Service) Salvar(ctx context.Context, p *models.Produto) (*models.Produto, error) {
	ctx, span := s.tracer.Start(ctx, "produtos.Salvar")
	defer span.End()

	saved, err := s.repo.Save(ctx, p)
	s.record(ctx, span, "salvar", err)
	if err == nil {
		span.SetAttributes(attribute.Int64("produto.id", saved.ID))
		s.logger.InfoContext(ctx, "produto saved", slog.Int64("id", saved.ID), slog.String("nome", saved.Nome))
	}
	return saved, err
}

func (s *Service) SalvarLista(ctx context.Context, produtos []models.Produto) ([]models.Produto, error) {
	ctx, span := s.tracer.Start(ctx, "produtos.SalvarLista", trace.WithAttributes(attribute.Int("produtos.count", len(produtos))))
	defer span.End()

	saved, err := s.repo.SaveAll(ctx, produtos)
	s.record(ctx, span, "salvar_lista", err)
	return saved, err
}

// Atualizar overwrites the produto stored under id. It fails with
// models.ErrProdutoNaoEncontrado, without writing, when id does not exist.
// The id in p is ignored in favour of id.
func (s *Service) Atualizar(ctx context.Context, id int64, p *models.Produto) (*models.Produto, error) {
	ctx, span := s.tracer.Start(ctx, "produtos.Atualizar", trace.WithAttributes(attribute.Int64("produto.id", id)))
	defer span.End()

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		s.record(ctx, span, "atualizar", err)
		return nil, err
	}
	if !exists {
		s.logger.WarnContext(ctx, "update of unknown produto", slog.Int64("id", id))
		s.record(ctx, span, "atualizar", models.ErrProdutoNaoEncontrado)
		return nil, models.ErrProdutoNaoEncontrado
	}

	p.ID = id
	updated, err := s.repo.Save(ctx, p)
	s.record(ctx, span, "atualizar", err)
	return updated, err
}

func (s *Service) Deletar(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "produtos.Deletar", trace.WithAttributes(attribute.Int64("produto.id", id)))
	defer span.End()

	err := s.repo.DeleteByID(ctx, id)
	s.record(ctx, span, "deletar", err)
	return err
}

func (s *Service) BuscarPorNome(ctx context.Context, nome string) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_nome", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByNome(ctx, nome)
	})
}

func (s *Service) BuscarPorNomeContendo(ctx context.Context, substr string) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_nome_contendo", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByNomeContaining(ctx, substr)
	})
}

func (s *Service) BuscarPorNomeEStatus(ctx context.Context, nome, status string) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_nome_e_status", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByNomeAndStatus(ctx, nome, status)
	})
}

func (s *Service) BuscarPorNomeComecandoCom(ctx context.Context, prefix string) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_nome_comecando_com", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByNomeStartingWith(ctx, prefix)
	})
}

func (s *Service) BuscarPorNomeTerminandoCom(ctx context.Context, suffix string) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_nome_terminando_com", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByNomeEndingWith(ctx, suffix)
	})
}

func (s *Service) BuscarPorPreco(ctx context.Context, preco float64) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_preco", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByPreco(ctx, preco)
	})
}

func (s *Service) BuscarPorPrecoMaiorQue(ctx context.Context, preco float64) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_preco_maior_que", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByPrecoGreaterThan(ctx, preco)
	})
}

func (s *Service) BuscarPorPrecoMenorQue(ctx context.Context, preco float64) ([]models.Produto, error) {
	return s.search(ctx, "buscar_por_preco_menor_que", func(ctx context.Context) ([]models.Produto, error) {
		return s.repo.FindByPrecoLessThan(ctx, preco)
	})
}

// TotalPrecos is invalid (null) when there are no produtos.
func (s *Service) TotalPrecos(ctx context.Context) (decimal.NullDecimal, error) {
	ctx, span := s.tracer.Start(ctx, "produtos.TotalPrecos")
	defer span.End()

	total, err := s.repo.FindTotalPreco(ctx)
	s.record(ctx, span, "total_precos", err)
	return total, err
}

func (s *Service) search(ctx context.Context, operation string, query func(context.Context) ([]models.Produto, error)) ([]models.Produto, error) {
	ctx, span := s.tracer.Start(ctx, "produtos."+operation)
	defer span.End()

	produtos, err := query(ctx)
	s.record(ctx, span, operation, err)
	if err == nil {
		span.SetAttributes(attribute.Int("produtos.count", len(produtos)))
	}
	return produtos, err
}

func (s *Service) record(ctx context.Context, span trace.Span, operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
