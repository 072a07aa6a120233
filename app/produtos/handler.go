package produtos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/produtoapi/produto-api/app/response"
	"github.com/produtoapi/produto-api/models"
	"github.com/shopspring/decimal"
)

// ErrNomeVazio is returned when a produto arrives without a name.
var ErrNomeVazio = errors.New("O nome do produto não pode ser vazio")

// ErrInterno is the only text clients see when storage fails.
var ErrInterno = errors.New("Erro interno ao processar a requisição")

type ProdutoService interface {
	ListarTodos(ctx context.Context) ([]models.Produto, error)
	BuscarPorID(ctx context.Context, id int64) (*models.Produto, error)
	Salvar(ctx context.Context, p *models.Produto) (*models.Produto, error)
	SalvarLista(ctx context.Context, produtos []models.Produto) ([]models.Produto, error)
	Atualizar(ctx context.Context, id int64, p *models.Produto) (*models.Produto, error)
	Deletar(ctx context.Context, id int64) error
	BuscarPorNome(ctx context.Context, nome string) ([]models.Produto, error)
	BuscarPorNomeContendo(ctx context.Context, substr string) ([]models.Produto, error)
	BuscarPorNomeEStatus(ctx context.Context, nome, status string) ([]models.Produto, error)
	BuscarPorNomeComecandoCom(ctx context.Context, prefix string) ([]models.Produto, error)
	BuscarPorNomeTerminandoCom(ctx context.Context, suffix string) ([]models.Produto, error)
	BuscarPorPreco(ctx context.Context, preco float64) ([]models.Produto, error)
	BuscarPorPrecoMaiorQue(ctx context.Context, preco float64) ([]models.Produto, error)
	BuscarPorPrecoMenorQue(ctx context.Context, preco float64) ([]models.Produto, error)
	TotalPrecos(ctx context.Context) (decimal.NullDecimal, error)
}

type Handler struct {
	service  ProdutoService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(s ProdutoService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  s,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Routes mounts every /produtos endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleListarTodos)
	r.Post("/", h.HandleSalvar)
	r.Post("/salvarLista", h.HandleSalvarLista)
	r.Get("/buscarPorNome", h.HandleBuscarPorNome)
	r.Get("/buscarPorNomeContendo", h.HandleBuscarPorNomeContendo)
	r.Get("/buscarPorNomeEStatus", h.HandleBuscarPorNomeEStatus)
	r.Get("/buscarPorNomeComecandoCom", h.HandleBuscarPorNomeComecandoCom)
	r.Get("/buscarPorNomeTerminandoCom", h.HandleBuscarPorNomeTerminandoCom)
	r.Get("/buscarPorPreco", h.HandleBuscarPorPreco)
	r.Get("/buscarPorPrecoMaiorQue", h.HandleBuscarPorPrecoMaiorQue)
	r.Get("/buscarPorPrecoMenorQue", h.HandleBuscarPorPrecoMenorQue)
	r.Get("/totalPrecos", h.HandleTotalPrecos)
	r.Get("/{id}", h.HandleBuscarPorID)
	r.Put("/{id}", h.HandleAtualizar)
	r.Delete("/{id}", h.HandleDeletar)
}

func (h *Handler) HandleListarTodos(w http.ResponseWriter, r *http.Request) {
	produtos, err := h.service.ListarTodos(r.Context())
	h.respondList(w, r, produtos, err)
}

// HandleBuscarPorID answers 200 with a null body when the id does not exist.
func (h *Handler) HandleBuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	produto, err := h.service.BuscarPorID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Write(w, http.StatusOK, produto)
}

func (h *Handler) HandleSalvar(w http.ResponseWriter, r *http.Request) {
	var input models.Produto
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := h.validar(&input); err != nil {
		badRequest(w, err)
		return
	}

	saved, err := h.service.Salvar(r.Context(), &input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Write(w, http.StatusOK, saved)
}

func (h *Handler) HandleSalvarLista(w http.ResponseWriter, r *http.Request) {
	var input []models.Produto
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	for i := range input {
		if err := h.validar(&input[i]); err != nil {
			badRequest(w, fmt.Errorf("item %d: %w", i, err))
			return
		}
	}

	saved, err := h.service.SalvarLista(r.Context(), input)
	h.respondList(w, r, saved, err)
}

func (h *Handler) HandleAtualizar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var input models.Produto
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := h.validar(&input); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := h.service.Atualizar(r.Context(), id, &input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Write(w, http.StatusOK, updated)
}

func (h *Handler) HandleDeletar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := h.service.Deletar(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleBuscarPorNome(w http.ResponseWriter, r *http.Request) {
	valor, err := requiredParam(r, "valor")
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorNome(r.Context(), valor)
	h.respondList(w, r, produtos, err)
}

func (h *Handler) HandleBuscarPorNomeContendo(w http.ResponseWriter, r *http.Request) {
	valor, err := requiredParam(r, "valor")
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorNomeContendo(r.Context(), valor)
	h.respondList(w, r, produtos, err)
}

func (h *Handler) HandleBuscarPorNomeEStatus(w http.ResponseWriter, r *http.Request) {
	nome, err := requiredParam(r, "nome")
	if err != nil {
		badRequest(w, err)
		return
	}
	status, err := requiredParam(r, "status")
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorNomeEStatus(r.Context(), nome, status)
	h.respondList(w, r, produtos, err)
}

func (h *Handler) HandleBuscarPorNomeComecandoCom(w http.ResponseWriter, r *http.Request) {
	valor, err := requiredParam(r, "valor")
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorNomeComecandoCom(r.Context(), valor)
	h.respondList(w, r, produtos, err)
}

func (h *Handler) HandleBuscarPorNomeTerminandoCom(w http.ResponseWriter, r *http.Request) {
	valor, err := requiredParam(r, "valor")
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorNomeTerminandoCom(r.Context(), valor)
	h.respondList(w, r, produtos, err)
}

func (h *Handler) HandleBuscarPorPreco(w http.ResponseWriter, r *http.Request) {
	valor, err := priceParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorPreco(r.Context(), valor)
	h.respondList(w, r, produtos, err)
}

func (h *Handler) HandleBuscarPorPrecoMaiorQue(w http.ResponseWriter, r *http.Request) {
	valor, err := priceParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorPrecoMaiorQue(r.Context(), valor)
	h.respondList(w, r, produtos, err)
}

func (h *Handler) HandleBuscarPorPrecoMenorQue(w http.ResponseWriter, r *http.Request) {
	valor, err := priceParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	produtos, err := h.service.BuscarPorPrecoMenorQue(r.Context(), valor)
	h.respondList(w, r, produtos, err)
}

// HandleTotalPrecos answers with a bare number, or null when there are no produtos.
func (h *Handler) HandleTotalPrecos(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalPrecos(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !total.Valid {
		response.Write(w, http.StatusOK, nil)
		return
	}
	response.Write(w, http.StatusOK, json.Number(total.Decimal.String()))
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, produtos []models.Produto, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if produtos == nil {
		produtos = []models.Produto{}
	}
	response.Write(w, http.StatusOK, produtos)
}

// fail maps a service error onto its response kind. Anything that is not a
// known produtos condition is logged and answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrProdutoNaoEncontrado) {
		response.Fail(w, response.NotFound, err.Error())
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	response.Fail(w, response.Internal, ErrInterno.Error())
}

func badRequest(w http.ResponseWriter, err error) {
	response.Fail(w, response.BadRequest, err.Error())
}

func (h *Handler) validar(p *models.Produto) error {
	err := h.validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Nome" {
				return ErrNomeVazio
			}
		}
	}
	return err
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func requiredParam(r *http.Request, name string) (string, error) {
	q := r.URL.Query()
	if !q.Has(name) {
		return "", fmt.Errorf("required parameter %q is missing", name)
	}
	return q.Get(name), nil
}

func priceParam(r *http.Request) (float64, error) {
	raw, err := requiredParam(r, "valor")
	if err != nil {
		return 0, err
	}
	valor, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric parameter \"valor\": %q", raw)
	}
	return valor, nil
}
