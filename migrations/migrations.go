// Package migrations embebe el esquema SQL para que el binario pueda
// migrar sin archivos externos.
package migrations

import "embed"

//go:embed postgres/*.sql
var FS embed.FS
