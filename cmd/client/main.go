// Command client walks the produtos API through create, list, fetch,
// update and delete, printing the catalog after each change. Any failed
// request ends the run.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/produtoapi/produto-api/app/config"
	"github.com/produtoapi/produto-api/client"
	"github.com/produtoapi/produto-api/models"
)

func main() {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	c := client.New(cfg.BaseURL, nil, cfg.Timeout)
	if err := run(context.Background(), c); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, c *client.Client) error {
	fmt.Println("Criar um produto novo")
	novo, err := c.Salvar(ctx, models.Produto{
		Nome:       "Skate p",
		Preco:      300.0,
		Quantidade: 200,
		Status:     "Disponivel",
	})
	if err != nil {
		return err
	}
	if err := listar(ctx, c); err != nil {
		return err
	}

	produto, err := c.BuscarPorID(ctx, novo.ID)
	if err != nil {
		return err
	}
	if produto == nil {
		return fmt.Errorf("produto %d desapareceu antes da atualização", novo.ID)
	}
	produto.Nome = "Skate p2"
	produto.Preco = 320.0
	produto.Quantidade = 100
	produto.Status = "Disponivel"

	fmt.Println("Atualizar produto")
	if _, err := c.Atualizar(ctx, produto.ID, *produto); err != nil {
		return err
	}
	if err := listar(ctx, c); err != nil {
		return err
	}

	fmt.Println("Deletar Produto")
	if err := c.Deletar(ctx, produto.ID); err != nil {
		return err
	}
	return listar(ctx, c)
}

func listar(ctx context.Context, c *client.Client) error {
	produtos, err := c.ListarTodos(ctx)
	if err != nil {
		return err
	}
	client.Print(os.Stdout, produtos)
	return nil
}
