package order

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// ProductInfo is the slice of the catalog the engine needs to price items and
// decide whether an order needs a kitchen ticket.
type ProductInfo struct {
	ID              uuid.UUID
	Name            string
	Price           float64
	RequiresKitchen bool
}

// ProductCache is a read-through cache over the catalog service. The catalog
// is never written from here.
type ProductCache struct {
	mu       sync.RWMutex
	products map[uuid.UUID]ProductInfo
	client   *aqm.ServiceClient
	logger   aqm.Logger
}

func NewProductCache(client *aqm.ServiceClient, logger aqm.Logger) *ProductCache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &ProductCache{
		products: make(map[uuid.UUID]ProductInfo),
		client:   client,
		logger:   logger,
	}
}

func (c *ProductCache) Warm(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	resp, err := c.client.List(ctx, "products")
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	return c.ingestCollection(resp.Data)
}

// Ensure returns the product, refreshing from the catalog on a cache miss.
// A miss the catalog cannot resolve is a dependency failure, not a default.
func (c *ProductCache) Ensure(ctx context.Context, id uuid.UUID) (ProductInfo, error) {
	if id == uuid.Nil {
		return ProductInfo{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	if info, ok := c.Get(id); ok {
		return info, nil
	}
	return c.Refresh(ctx, id)
}

func (c *ProductCache) Refresh(ctx context.Context, id uuid.UUID) (ProductInfo, error) {
	if c.client == nil {
		return ProductInfo{}, fmt.Errorf("%w: product cache uninitialized", ErrDependency)
	}
	resp, err := c.client.Get(ctx, "products", id.String())
	if err != nil {
		return ProductInfo{}, fmt.Errorf("%w: failed to fetch product %s: %v", ErrDependency, id, err)
	}
	return c.ingestProduct(id, resp.Data)
}

// ingestProduct classifies a single catalog answer: an undecodable payload is
// a dependency failure, an empty one means the product does not exist.
func (c *ProductCache) ingestProduct(id uuid.UUID, data interface{}) (ProductInfo, error) {
	var dto productDTO
	if err := rehydrate(data, &dto); err != nil {
		return ProductInfo{}, fmt.Errorf("%w: failed to decode product %s: %v", ErrDependency, id, err)
	}
	if dto.ID == "" {
		return ProductInfo{}, fmt.Errorf("%w: product %s not in catalog", ErrNotFound, id)
	}
	info, err := dto.toInfo()
	if err != nil {
		return ProductInfo{}, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	c.Set(info)
	return info, nil
}

func (c *ProductCache) Get(id uuid.UUID) (ProductInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.products[id]
	return info, ok
}

func (c *ProductCache) Set(info ProductInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[info.ID] = info
}

func (c *ProductCache) ingestCollection(data interface{}) error {
	var records []productDTO
	if err := rehydrate(data, &records); err != nil {
		return err
	}
	for _, record := range records {
		info, err := record.toInfo()
		if err != nil {
			c.logger.Debug("skipping invalid product", "product_id", record.ID)
			continue
		}
		c.Set(info)
	}
	return nil
}

type productDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	RequiresKitchen bool    `json:"requires_kitchen"`
}

func (d productDTO) toInfo() (ProductInfo, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return ProductInfo{}, fmt.Errorf("invalid product id %s", d.ID)
	}
	return ProductInfo{
		ID:              id,
		Name:            d.Name,
		Price:           d.Price,
		RequiresKitchen: d.RequiresKitchen,
	}, nil
}

func rehydrate(data interface{}, out interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}
