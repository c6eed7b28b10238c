package account

import "context"

// ViewCache caches sanitized profile views keyed by account id. Mutating
// operations refresh entries so reads never observe a stale username or
// picture URL.
type ViewCache interface {
	Get(ctx context.Context, id int64) (View, bool)
	Set(ctx context.Context, id int64, v View)
}
