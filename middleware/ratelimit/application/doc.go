// Package application contém os casos de uso do admission gate e do limite de
// concorrência.
//
// Depende apenas de domain (e da taxonomia de erros) e não conhece net/http.
// Ex.: Service.Decide(key) retorna uma Decision (admit/reject + retry-after).
package application
