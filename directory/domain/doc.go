// Package domain define os tipos da busca de funcionários por tenant: o
// registro (Employee), os campos projetáveis, a política de campos por tenant,
// o conjunto de tenants conhecidos, o pedido de busca e o contrato do store.
//
// Nada aqui depende de net/http nem de um banco específico.
package domain
