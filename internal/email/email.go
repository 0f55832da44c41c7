// Package email envía los correos transaccionales del ciclo de vida de
// la cuenta (verificación y reset). El token crudo viaja solo por acá;
// el almacén nunca lo ve.
package email

import "context"

// Sender envía un correo. Las implementaciones no reintentan; el
// llamador decide si el envío es fire-and-forget.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}
