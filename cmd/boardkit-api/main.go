package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"boardkit/api"
	"boardkit/auth"
	"boardkit/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	usersTable := os.Getenv("USERS_TABLE")
	boardsTable := os.Getenv("BOARDS_TABLE")
	todosTable := os.Getenv("TODOS_TABLE")
	eventsQueue := os.Getenv("EVENTS_QUEUE")
	if connStr == "" || usersTable == "" || boardsTable == "" || todosTable == "" || eventsQueue == "" {
		log.Fatal("missing storage config")
	}
	store, err := storage.New(connStr, usersTable, boardsTable, todosTable, eventsQueue)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var rc *redis.Client
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		rc = redis.NewClient(parseRedisConn(redisConn))
	}
	cacheTTL := envDuration("CACHE_TTL", 5*time.Minute)
	dedupeTTL := envDuration("DEDUPE_TTL", 24*time.Hour)
	cached := storage.NewCache(store, rc, cacheTTL)
	deduper := api.NewRedisDeduper(rc, dedupeTTL)

	audience := os.Getenv("AUTH_AUDIENCE")
	issuerName := os.Getenv("AUTH_ISSUER")
	var verifier *auth.Verifier
	var issuer *auth.Issuer
	if domain := os.Getenv("AUTH_JWKS_DOMAIN"); domain != "" {
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		verifier = auth.NewJWKSVerifier(jwks, audience, "https://"+domain+"/")
	} else {
		secret := os.Getenv("AUTH_SECRET")
		if secret == "" {
			log.Fatal("missing auth config: set AUTH_SECRET or AUTH_JWKS_DOMAIN")
		}
		verifier = auth.NewVerifier([]byte(secret), audience, issuerName)
		issuer = auth.NewIssuer([]byte(secret), issuerName, audience)
	}
	if issuer == nil {
		// JWKS mode verifies externally issued tokens, so login still needs
		// a local signing secret.
		secret := os.Getenv("AUTH_SECRET")
		if secret == "" {
			log.Fatal("missing AUTH_SECRET for token issuance")
		}
		issuer = auth.NewIssuer([]byte(secret), issuerName, audience)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logger := log.New()
	api.Register(e, cached, verifier, issuer, deduper, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok {
		listenAddr = ":" + val
	} else if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// parseRedisConn accepts a redis URL or the comma separated
// host:port,password=...,ssl=true form used by managed caches.
func parseRedisConn(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid %s: %v", name, err)
	}
	return d
}
