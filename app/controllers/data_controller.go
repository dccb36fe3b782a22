package controllers

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storepulse/storepulse/app/repository"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/cache"
	"github.com/storepulse/storepulse/internal/pkg/credentials"
	"github.com/storepulse/storepulse/internal/pkg/woo"
)

const (
	ordersPageSize   = 20
	catalogPageSize  = 100
	reportSampleSize = 100
)

// DataController serves store data read through the per-store response
// cache. Page sizes are fixed so one cache entry per (store, resource) pair
// is always valid.
type DataController struct {
	resolver *credentials.Resolver
	stores   repository.StoreRepository
	registry repository.WebhookRepository
	cache    cache.CacheStore

	// newClient is swappable in tests.
	newClient func(woo.Credentials) *woo.Client
}

func NewDataController(stores repository.StoreRepository, registry repository.WebhookRepository, store cache.CacheStore) *DataController {
	return &DataController{
		resolver:  credentials.NewResolver(stores),
		stores:    stores,
		registry:  registry,
		cache:     store,
		newClient: woo.NewClient,
	}
}

func hintFromQuery(c *fiber.Ctx) credentials.Hint {
	return credentials.Hint{
		StoreURL:       c.Query("store_url"),
		ConsumerKey:    c.Query("consumer_key"),
		ConsumerSecret: c.Query("consumer_secret"),
		AppUserID:      c.Query("app_user_id"),
	}
}

func sendJSON(c *fiber.Ctx, data []byte, hit bool) error {
	if hit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// HandleOrders returns the most recent orders for the resolved store.
func (ct *DataController) HandleOrders(c *fiber.Ctx) error {
	return ct.serveCached(c, cache.ResourceOrders, func(client *woo.Client) (any, error) {
		orders, err := client.ListOrders(c.Context(), ordersPageSize)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"orders": orders, "count": len(orders)}, nil
	})
}

// HandleProducts returns the product catalogue page.
func (ct *DataController) HandleProducts(c *fiber.Ctx) error {
	return ct.serveCached(c, cache.ResourceProducts, func(client *woo.Client) (any, error) {
		products, err := client.ListProducts(c.Context(), catalogPageSize)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"products": products, "count": len(products)}, nil
	})
}

// HandleCustomers returns the customer list page.
func (ct *DataController) HandleCustomers(c *fiber.Ctx) error {
	return ct.serveCached(c, cache.ResourceCustomers, func(client *woo.Client) (any, error) {
		customers, err := client.ListCustomers(c.Context(), catalogPageSize)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"customers": customers, "count": len(customers)}, nil
	})
}

// HandleReport aggregates recent orders into a revenue summary.
func (ct *DataController) HandleReport(c *fiber.Ctx) error {
	return ct.serveCached(c, cache.ResourceReport, func(client *woo.Client) (any, error) {
		orders, err := client.ListOrders(c.Context(), reportSampleSize)
		if err != nil {
			return nil, err
		}

		var revenue float64
		statusCounts := map[string]int{}
		currency := ""
		for _, o := range orders {
			if v, err := strconv.ParseFloat(o.Total, 64); err == nil {
				revenue += v
			}
			statusCounts[o.Status]++
			if currency == "" {
				currency = o.Currency
			}
		}
		return fiber.Map{
			"order_count":   len(orders),
			"total_revenue": fmt.Sprintf("%.2f", revenue),
			"currency":      currency,
			"status_counts": statusCounts,
		}, nil
	})
}

func (ct *DataController) serveCached(c *fiber.Ctx, resource cache.Resource, fetch func(*woo.Client) (any, error)) error {
	creds, err := ct.resolver.Resolve(c.Context(), hintFromQuery(c))
	if err != nil {
		return errorResponse(c, err)
	}
	key := cache.NormalizeStoreKey(creds.StoreURL)

	if data, ok := ct.cache.Get(resource, key); ok {
		return sendJSON(c, data, true)
	}

	result, err := fetch(ct.newClient(creds))
	if err != nil {
		return errorResponse(c, err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errorResponse(c, err)
	}
	ct.cache.Set(resource, key, data)
	return sendJSON(c, data, false)
}

// HandleStoreStatus reports connection state for a stored record.
func (ct *DataController) HandleStoreStatus(c *fiber.Ctx) error {
	appUserID := c.Query("app_user_id")
	if appUserID == "" {
		return errorResponse(c, apperrors.Validationf("app_user_id is required"))
	}

	store, err := ct.stores.GetByAppUserID(c.Context(), appUserID)
	if err != nil {
		return errorResponse(c, err)
	}

	topics := []string{}
	if regs, err := ct.registry.GetByStoreID(c.Context(), store.ID); err != nil {
		log.Warnf("[Store] Failed to load webhook rows for store %s: %v", store.ID, err)
	} else {
		for _, reg := range regs {
			topics = append(topics, reg.Topic)
		}
	}

	return c.JSON(fiber.Map{
		"store_id":  store.ID,
		"store_url": store.StoreURL,
		"connected": store.IsConnected(),
		"razorpay": fiber.Map{
			"connected": store.IsRazorpayConnected(),
			"skipped":   store.RazorpaySkipped,
		},
		"webhook_topics": topics,
	})
}
