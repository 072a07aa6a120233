// Package client is a typed HTTP client for the /produtos API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/produtoapi/produto-api/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, strings.TrimSpace(e.Body))
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/produtos.
// A nil httpClient gets an instrumented client with the given timeout.
func New(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) ListarTodos(ctx context.Context) ([]models.Produto, error) {
	var out []models.Produto
	err := c.do(ctx, http.MethodGet, "", nil, nil, &out)
	return out, err
}

// BuscarPorID returns nil when the server has no produto under id.
func (c *Client) BuscarPorID(ctx context.Context, id int64) (*models.Produto, error) {
	var out *models.Produto
	err := c.do(ctx, http.MethodGet, "/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

func (c *Client) Salvar(ctx context.Context, p models.Produto) (*models.Produto, error) {
	var out models.Produto
	if err := c.do(ctx, http.MethodPost, "", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SalvarLista(ctx context.Context, produtos []models.Produto) ([]models.Produto, error) {
	var out []models.Produto
	err := c.do(ctx, http.MethodPost, "/salvarLista", nil, produtos, &out)
	return out, err
}

func (c *Client) Atualizar(ctx context.Context, id int64, p models.Produto) (*models.Produto, error) {
	var out models.Produto
	if err := c.do(ctx, http.MethodPut, "/"+strconv.FormatInt(id, 10), nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Deletar(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) BuscarPorNome(ctx context.Context, nome string) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorNome", url.Values{"valor": {nome}})
}

func (c *Client) BuscarPorNomeContendo(ctx context.Context, substr string) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorNomeContendo", url.Values{"valor": {substr}})
}

func (c *Client) BuscarPorNomeEStatus(ctx context.Context, nome, status string) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorNomeEStatus", url.Values{"nome": {nome}, "status": {status}})
}

func (c *Client) BuscarPorNomeComecandoCom(ctx context.Context, prefix string) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorNomeComecandoCom", url.Values{"valor": {prefix}})
}

func (c *Client) BuscarPorNomeTerminandoCom(ctx context.Context, suffix string) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorNomeTerminandoCom", url.Values{"valor": {suffix}})
}

func (c *Client) BuscarPorPreco(ctx context.Context, preco float64) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorPreco", priceQuery(preco))
}

func (c *Client) BuscarPorPrecoMaiorQue(ctx context.Context, preco float64) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorPrecoMaiorQue", priceQuery(preco))
}

func (c *Client) BuscarPorPrecoMenorQue(ctx context.Context, preco float64) ([]models.Produto, error) {
	return c.search(ctx, "/buscarPorPrecoMenorQue", priceQuery(preco))
}

// TotalPrecos is invalid when the catalog is empty.
func (c *Client) TotalPrecos(ctx context.Context) (decimal.NullDecimal, error) {
	var out decimal.NullDecimal
	err := c.do(ctx, http.MethodGet, "/totalPrecos", nil, nil, &out)
	return out, err
}

func (c *Client) search(ctx context.Context, path string, query url.Values) ([]models.Produto, error) {
	var out []models.Produto
	err := c.do(ctx, http.MethodGet, path, query, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, target, err)
	}
	return nil
}

func priceQuery(preco float64) url.Values {
	return url.Values{"valor": {strconv.FormatFloat(preco, 'f', -1, 64)}}
}
