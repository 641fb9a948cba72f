// Package infra contém as implementações concretas de domain.Store
// (memória, SQLite, PostgreSQL, bbolt), o seed de dados de exemplo e os
// loaders de política de campos (YAML e casbin).
//
// Todos os stores devolvem as linhas ordenadas por id, então a paginação é
// estável enquanto os dados não mudam.
package infra
