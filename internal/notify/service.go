package notify

import (
	"context"
	"fmt"
	"log"

	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Store interface {
	FindOpen(ctx context.Context, productID, size, color string) ([]Request, error)
	MarkNotified(ctx context.Context, ids []string) error
}

type Service struct {
	Repo        Store
	Redis       *redis.Client
	ServiceName string
}

// HandleStockRestocked: dipasang sebagai handler consumer topic
// shop.stock.restocked. Resolve request back-in-stock yang match.
func (s *Service) HandleStockRestocked(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventStockRestocked {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id); event ulang aman di-skip
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[orders.StockRestockedPayload](env.Payload)
	if err != nil {
		return err
	}

	reqs, err := s.Repo.FindOpen(ctx, p.ProductID, p.Size, p.Color)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(reqs))
	for _, q := range reqs {
		// pengiriman email/push di luar scope; cukup log penerima
		log.Printf("back-in-stock: user=%s product=%s (%s/%s) qty=%d", q.UserID, p.ProductID, p.Size, p.Color, p.Qty)
		ids = append(ids, q.ID)
	}
	return s.Repo.MarkNotified(ctx, ids)
}
