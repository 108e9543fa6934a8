// Command hypha-sandbox runs an in-memory artifact manager over HTTP so the
// client and CLI can be exercised without a real Hypha deployment. It
// supports seeding artifacts from a JSON file plus latency and failure
// injection for resilience testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aicell-lab/hypha-artifact-go/internal/devseed"
	"github.com/aicell-lab/hypha-artifact-go/pkg/artifact/mock"
)

type failConfig struct {
	rate float64
	code int
}

func main() {
	addr := flag.String("addr", ":9527", "listen address")
	seed := flag.String("seed", "", "path to JSON seed file of artifacts")
	artifactID := flag.String("artifact", "", "create an empty artifact with this id (workspace/alias)")
	token := flag.String("token", "", "require this bearer token on API calls")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	flag.Parse()

	m := mock.New()
	if *seed != "" {
		seeds, err := devseed.LoadArtifactSeed(*seed)
		if err != nil {
			log.Fatalf("load seed: %v", err)
		}
		if err := m.Seed(seeds); err != nil {
			log.Fatalf("apply seed: %v", err)
		}
	}
	if *artifactID != "" {
		m.CreateArtifact(*artifactID)
	}
	if *token != "" {
		m.RequireToken(*token)
	}

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		log.Fatalf("parse fail flag: %v", err)
	}

	server := &http.Server{
		Addr:    *addr,
		Handler: withMiddleware(*latency, failCfg, m.Handler()),
	}

	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	log.Printf("hypha-sandbox listening on %s", *addr)
	fmt.Println()
	fmt.Printf("export HYPHA_SERVER_URL=http://%s\n", host)
	if *token != "" {
		fmt.Printf("export HYPHA_TOKEN=%s\n", *token)
	}
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func withMiddleware(delay time.Duration, failCfg failConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
			status := failCfg.code
			if status == 0 {
				status = http.StatusInternalServerError
			}
			http.Error(w, "failure injected", status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			val, err := strconv.ParseFloat(strings.TrimSpace(keyVal[1]), 64)
			if err != nil {
				return failConfig{}, err
			}
			cfg.rate = val
		case "code":
			val, err := strconv.Atoi(strings.TrimSpace(keyVal[1]))
			if err != nil {
				return failConfig{}, err
			}
			cfg.code = val
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}
