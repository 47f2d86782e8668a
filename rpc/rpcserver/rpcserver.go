package rpcserver

import (
	"net/http"

	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/util/ratelimit"
)

type Server struct {
	handlers map[string]Handler
	config   Config

	limit *ratelimit.Limit
}
type Handler = func(c *Context)

type Config struct {
	// When true, the RPC server blocks cross-origin requests and refuses
	// privileged methods.
	Restricted bool

	// The username:password used in Basic Auth. Leave blank to disable
	// authentication.
	Authentication string

	// The maximum number of requests per minute from a single IP address.
	RateLimit int
}

func New(bind string, cfg Config) *Server {
	if cfg.RateLimit == 0 {
		cfg.RateLimit = config.DEFAULT_RATE_LIMIT
	}

	srv := &Server{
		handlers: make(map[string]Handler),
		config:   cfg,
		limit:    ratelimit.New(cfg.RateLimit),
	}

	httpSrv := &http.Server{
		Addr: bind,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			srv.handler(w, r)
		}),
	}
	go httpSrv.ListenAndServe()

	return srv
}

func (s *Server) Handle(method string, f Handler) {
	s.handlers[method] = f
}
