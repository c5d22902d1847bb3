package viz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

type ImageContainer struct {
	name string
	data []byte
}

type Producer interface {
	Name() string
	GetImage() (*ImageContainer, error)
	AddPlotOption(opt PlotOptions)
}

// Server serves the station status as JSON and periodically rendered
// plots as PNG.
type Server struct {
	images         map[string]*ImageContainer
	producers      map[string]Producer
	status         func() interface{}
	mu             sync.RWMutex
	srv            *http.Server
	updateInterval time.Duration
}

func NewServer(port int, updateInterval time.Duration) *Server {
	return &Server{
		images:         make(map[string]*ImageContainer),
		producers:      make(map[string]Producer),
		srv:            &http.Server{Addr: fmt.Sprintf(":%d", port)},
		updateInterval: updateInterval,
	}
}

func (s *Server) Register(p Producer) {
	s.mu.Lock()
	s.producers[p.Name()] = p
	s.mu.Unlock()
}

func (s *Server) SetStatusFunc(fn func() interface{}) {
	s.mu.Lock()
	s.status = fn
	s.mu.Unlock()
}

func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

// Refresh renders every registered producer once.
func (s *Server) Refresh() {
	s.mu.RLock()
	producers := make([]Producer, 0, len(s.producers))
	for _, p := range s.producers {
		producers = append(producers, p)
	}
	s.mu.RUnlock()

	for _, p := range producers {
		img, err := p.GetImage()
		if err != nil {
			log.Warn().Err(err).Str("plot", p.Name()).Msg("error rendering plot")
			continue
		}
		if img == nil {
			continue
		}
		s.mu.Lock()
		s.images[img.name] = img
		s.mu.Unlock()
	}
}

func (s *Server) Handler() http.Handler {
	handler := httprouter.New()

	handler.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Location", "/status")
		w.WriteHeader(http.StatusFound)
	})

	handler.GET("/status", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		s.mu.RLock()
		status := s.status
		s.mu.RUnlock()

		if status == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status()); err != nil {
			log.Warn().Err(err).Msg("error encoding status")
		}
	})

	handler.GET("/view", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		s.mu.RLock()
		names := make([]string, 0, len(s.producers))
		for name := range s.producers {
			names = append(names, name)
		}
		s.mu.RUnlock()
		sort.Strings(names)

		w.Header().Add("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>foxcast</title></head><body style='background-color: black'>`))
		for _, name := range names {
			w.Write([]byte(fmt.Sprintf(`<div><img src="/img/%s.png?%d" /></div>`, name, time.Now().UnixMicro())))
		}
		w.Write([]byte(`</body></html>`))
	})

	handler.GET("/img/:img", func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		name := strings.TrimSuffix(params.ByName("img"), ".png")

		s.mu.RLock()
		img, ok := s.images[name]
		s.mu.RUnlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Add("Content-Type", "image/png")
		w.Write(img.data)
	})

	return handler
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		tick := time.NewTicker(s.updateInterval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				s.Refresh()
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.srv.Shutdown(context.Background())
	}()

	s.srv.Handler = s.Handler()

	err := s.srv.ListenAndServe()
	switch {
	case err == http.ErrServerClosed:
		return nil
	default:
		return err
	}
}
