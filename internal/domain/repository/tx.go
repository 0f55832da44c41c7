package repository

import "context"

// Atomic corre fn con todas las operaciones de repositorio del mismo
// store dentro de una única transacción: o se aplica todo o nada.
type Atomic interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
