package audit

import "context"

// RequestMeta es el contexto de red de la petición que originó el
// evento. El middleware HTTP lo cuelga del context.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type metaKey struct{}

// WithMeta cuelga la metadata de la petición del context.
func WithMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// MetaFromContext recupera la metadata colgada por el middleware.
func MetaFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(metaKey{}).(RequestMeta)
	return meta, ok
}
