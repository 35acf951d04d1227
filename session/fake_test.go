package session

import (
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/griffon/config"
	"github.com/ortelius/griffon/model"
	"github.com/stretchr/testify/require"
)

// fakeService serves the registry and incident REST surfaces from memory
type fakeService struct {
	URL        string
	Components []model.Component
	Flaws      []model.Flaw

	requests   atomic.Int64
	failFirst  atomic.Int64 // number of upcoming requests answered with failStatus
	failStatus int
	lastAuth   atomic.Value
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()

	f := &fakeService{failStatus: fiber.StatusServiceUnavailable}
	app := fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})

	app.Use(func(c *fiber.Ctx) error {
		f.requests.Add(1)
		f.lastAuth.Store(c.Get(fiber.HeaderAuthorization))
		if f.failFirst.Load() > 0 {
			f.failFirst.Add(-1)
			return c.Status(f.failStatus).SendString("try later")
		}
		return c.Next()
	})

	app.Get("/api/v1/components", func(c *fiber.Ctx) error {
		var matched []model.Component
		for _, comp := range f.Components {
			if name := c.Query("name"); name != "" && comp.Name != name {
				continue
			}
			if purl := c.Query("purl"); purl != "" && comp.Purl != purl {
				continue
			}
			matched = append(matched, comp)
		}
		return page(c, matched)
	})

	app.Get("/api/v1/components/:uuid", func(c *fiber.Ctx) error {
		for _, comp := range f.Components {
			if comp.UUID == c.Params("uuid") {
				return c.JSON(comp)
			}
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found."})
	})

	app.Get("/osidb/api/v1/flaws", func(c *fiber.Ctx) error {
		var matched []model.Flaw
		for _, flaw := range f.Flaws {
			if flaw.CveID == c.Query("cve_id") {
				matched = append(matched, flaw)
			}
		}
		return page(c, matched)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	f.URL = "http://" + ln.Addr().String()
	return f
}

func page[T any](c *fiber.Ctx, items []T) error {
	limit := c.QueryInt("limit", PageSize)
	offset := c.QueryInt("offset", 0)

	results := []T{}
	if offset < len(items) {
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		results = items[offset:end]
	}

	var next any
	if offset+limit < len(items) {
		next = c.BaseURL() + c.Path() + "?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset+limit)
	}
	return c.JSON(fiber.Map{
		"count":    len(items),
		"next":     next,
		"previous": nil,
		"results":  results,
	})
}

func (f *fakeService) client(t *testing.T, service Service, retries int) *Client {
	t.Helper()
	c, err := NewClient(service, f.URL, "s3cret", &config.Config{Retries: retries, Workers: 1, Format: "json"}, nil)
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

func componentsNamed(name string, n int) []model.Component {
	out := make([]model.Component, 0, n)
	for i := 0; i < n; i++ {
		v := strconv.Itoa(i)
		out = append(out, model.Component{
			Purl:      "pkg:rpm/redhat/" + name + "@1." + v,
			UUID:      "00000000-0000-0000-0000-" + strings.Repeat("0", 12-len(v)) + v,
			Name:      name,
			Version:   "1." + v,
			Namespace: model.NamespaceRedHat,
		})
	}
	return out
}
