// Command tmdb-mock serves canned TMDB v3 responses for local development.
package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed fixtures.json
var defaultFixtures []byte

type fixtures struct {
	Genres []json.RawMessage            `json:"genres"`
	Lists  map[string][]json.RawMessage `json:"lists"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "", "path to a fixtures file (defaults to the embedded set)")
		apiKey  = flag.String("api-key", "", "reject requests whose api_key differs (empty accepts any)")
		fail    = flag.String("fail", "", "comma-separated paths that answer 503, e.g. /movie/top_rated")
		delay   = flag.Duration("delay", 0, "latency added to every response")
		logReqs = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	raw := defaultFixtures
	if *data != "" {
		file, err := os.ReadFile(*data)
		if err != nil {
			log.Fatalf("read mock data: %v", err)
		}
		raw = file
	}

	var payload fixtures
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	failing := map[string]bool{}
	for _, p := range strings.Split(*fail, ",") {
		if p = strings.TrimSpace(p); p != "" {
			failing[p] = true
		}
	}

	r := chi.NewRouter()
	if *logReqs {
		r.Use(middleware.Logger)
	}
	r.Route("/3", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if *delay > 0 {
					time.Sleep(*delay)
				}
				if *apiKey != "" && req.URL.Query().Get("api_key") != *apiKey {
					writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"status_code": 7, "status_message": "Invalid API key"})
					return
				}
				if failing[strings.TrimPrefix(req.URL.Path, "/3")] {
					writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status_message": "unavailable"})
					return
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/genre/movie/list", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"genres": payload.Genres})
		})
		r.Get("/movie/{list}", func(w http.ResponseWriter, req *http.Request) {
			results, ok := payload.Lists["/movie/"+chi.URLParam(req, "list")]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]interface{}{"status_code": 34, "status_message": "The resource you requested could not be found."})
				return
			}
			writeJSON(w, http.StatusOK, page(results))
		})
		r.Get("/search/movie", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, page(search(payload, req.URL.Query().Get("query"))))
		})
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s (base url http://localhost%s/3)", addr, addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func page(results []json.RawMessage) map[string]interface{} {
	if results == nil {
		results = []json.RawMessage{}
	}
	return map[string]interface{}{
		"page":          1,
		"results":       results,
		"total_pages":   1,
		"total_results": len(results),
	}
}

// search matches titles case-insensitively across every fixture list, in
// list path order.
func search(payload fixtures, query string) []json.RawMessage {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	paths := make([]string, 0, len(payload.Lists))
	for p := range payload.Lists {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	seen := map[int]bool{}
	var out []json.RawMessage
	for _, p := range paths {
		for _, entry := range payload.Lists[p] {
			var m struct {
				ID    int    `json:"id"`
				Title string `json:"title"`
			}
			if err := json.Unmarshal(entry, &m); err != nil || seen[m.ID] {
				continue
			}
			if strings.Contains(strings.ToLower(m.Title), query) {
				seen[m.ID] = true
				out = append(out, entry)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
