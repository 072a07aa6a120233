package client

import (
	"fmt"
	"io"

	"github.com/produtoapi/produto-api/models"
	"github.com/shopspring/decimal"
)

// Print writes one block per produto in the console layout of the demo client.
func Print(w io.Writer, produtos []models.Produto) {
	for _, p := range produtos {
		fmt.Fprintf(w, "ID: %d\n", p.ID)
		fmt.Fprintf(w, "Nome: %s\n", p.Nome)
		fmt.Fprintf(w, "Preço: %s\n", decimal.NewFromFloat(p.Preco).StringFixed(2))
		fmt.Fprintf(w, "Quantidade: %d\n", p.Quantidade)
		fmt.Fprintf(w, "Status: %s\n", p.Status)
		fmt.Fprintln(w, "---------------------------")
	}
}
