package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/produtoapi/produto-api/models"
)

// ProdutoLister is the part of client.Client the startup check needs.
type ProdutoLister interface {
	ListarTodos(ctx context.Context) ([]models.Produto, error)
}

// RunStartupClient lists the catalog through the public API once the server
// is listening and logs every produto it gets back.
func RunStartupClient(ctx context.Context, lister ProdutoLister, logger *slog.Logger) error {
	logger.InfoContext(ctx, "startup client running")

	produtos, err := lister.ListarTodos(ctx)
	if err != nil {
		return fmt.Errorf("startup client: %w", err)
	}

	for _, p := range produtos {
		logger.InfoContext(ctx, "produto",
			slog.Int64("id", p.ID),
			slog.String("nome", p.Nome),
			slog.Float64("preco", p.Preco),
		)
	}
	logger.InfoContext(ctx, "startup client finished", slog.Int("count", len(produtos)))
	return nil
}

// LocalURL is the base URL a process uses to reach its own listener.
// A wildcard bind address (0.0.0.0, ::) is not dialable everywhere, so it
// is replaced with the IPv4 loopback.
func LocalURL(addr net.Addr, path string) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + path
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + path
}
