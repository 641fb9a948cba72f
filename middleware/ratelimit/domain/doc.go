// Package domain define contratos e tipos de domínio do admission gate
// (janela deslizante por tenant) e do limite de concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
