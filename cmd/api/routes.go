package main

import (
	"crypto/subtle"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/clients"
	"github.com/noah-isme/backend-pos/internal/health"
	"github.com/noah-isme/backend-pos/internal/notify"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/ratelimit"
	"github.com/noah-isme/backend-pos/internal/sales"
	"github.com/noah-isme/backend-pos/internal/security"
	"github.com/noah-isme/backend-pos/internal/stock"
	"github.com/noah-isme/backend-pos/internal/suppliers"
)

type routerOptions struct {
	Logger         zerolog.Logger
	Metrics        *obs.HTTPMetrics
	Tracing        bool
	AllowedOrigins []string
	MaxBody        int64
	HSTSMaxAge     int
	EnablePprof    bool
	PprofUser      string
	PprofPass      string
	Health         health.Handler
}

func newRouter(a *app, opts routerOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if opts.Tracing {
		r.Use(otelhttp.NewMiddleware("pos-api", otelhttp.WithSpanNameFormatter(obs.SpanName)))
	}
	if opts.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: opts.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: opts.Logger}.Middleware)
	r.Use(security.Headers{HSTSMaxAge: opts.HSTSMaxAge}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(opts.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))

	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if opts.EnablePprof {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), opts.PprofUser, opts.PprofPass))
	}
	r.Get("/health/live", opts.Health.Live)
	r.Get("/health/ready", opts.Health.Ready)

	products := catalog.NewHandler(catalog.HandlerConfig{Service: a.Catalog})
	stocks := stock.NewHandler(a.Stock)
	docs := sales.NewHandler(a.Sales)
	directory := clients.NewHandler(a.Clients)
	vendors := suppliers.NewHandler(a.Suppliers)
	pos := cart.NewHandler(a.Cart)
	inbox := notify.NewHandler(a.Center)
	limit := ratelimit.Handler{
		Limiter: a.Limiter,
		OnError: func(err error) { opts.Logger.Warn().Err(err).Msg("rate limiter store unavailable") },
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: opts.MaxBody}.Middleware)
		v.Use(limit.Middleware)

		v.Route("/products", func(p chi.Router) {
			p.Get("/", products.Products)
			p.Post("/", products.Create)
			p.Get("/{id}", products.Product)
			p.Put("/{id}", products.Update)
			p.Delete("/{id}", products.Delete)
			p.Get("/{id}/stock", stocks.Product)
			p.Put("/{id}/stock", stocks.Reassign)
			p.Put("/{id}/stock/{warehouseId}", stocks.SetQuantity)
			p.Post("/{id}/stock/{warehouseId}/toggle", stocks.Toggle)
		})
		v.Get("/warehouses", products.Warehouses)
		v.Get("/warehouses/{id}/stock", stocks.Warehouse)

		v.Route("/pos", func(p chi.Router) {
			p.Get("/cart", pos.Get)
			p.Post("/cart/items", pos.AddItem)
			p.Patch("/cart/items/{lineId}", pos.UpdateItem)
			p.Delete("/cart/items/{lineId}", pos.RemoveItem)
			p.Put("/cart/discount", pos.SetDiscount)
			p.Put("/cart/client", pos.SetClient)
			p.Put("/cart/document", pos.SetDocument)
			p.Put("/cart/notes", pos.SetNotes)
			p.Post("/cart/reset", pos.Reset)
			p.Post("/cart/commit", pos.Commit)
			p.Get("/products", pos.SearchProducts)
			p.Get("/clients", pos.SearchClients)
		})

		v.Get("/sales", docs.List)
		v.Get("/sales/{id}", docs.Get)
		v.Patch("/sales/{id}/status", docs.SetStatus)
		v.Get("/purchases", docs.Purchases)
		v.Post("/purchases", docs.CreatePurchase)
		v.Get("/finance/summary", docs.Summary)
		v.Get("/finance/daily", docs.Daily)

		v.Route("/clients", func(c chi.Router) {
			c.Get("/", directory.List)
			c.Post("/", directory.Create)
			c.Get("/search", directory.Search)
			c.Get("/{id}", directory.Get)
			c.Put("/{id}", directory.Update)
			c.Delete("/{id}", directory.Delete)
		})
		v.Route("/suppliers", func(s chi.Router) {
			s.Get("/", vendors.List)
			s.Post("/", vendors.Create)
			s.Get("/{id}", vendors.Get)
			s.Put("/{id}", vendors.Update)
			s.Delete("/{id}", vendors.Delete)
		})

		v.Get("/notifications", inbox.List)
		v.Delete("/notifications/{id}", inbox.Dismiss)

		v.Route("/admin/queues/{queue}", func(q chi.Router) {
			q.Get("/", a.Queue.Stats)
			q.Get("/archived", a.Queue.ListArchived)
			q.Post("/archived/{taskId}/run", a.Queue.Replay)
		})
	})

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		mux.Handle("/"+name, pprof.Handler(name))
	}
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
