package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/movietix/backend/internal/adapters/crdb"
	mongoadapter "github.com/movietix/backend/internal/adapters/mongo"
	"github.com/movietix/backend/internal/adapters/rabbit"
	redisadapter "github.com/movietix/backend/internal/adapters/redis"
	"github.com/movietix/backend/internal/auth"
	"github.com/movietix/backend/internal/booking"
	"github.com/movietix/backend/internal/config"
	httphandler "github.com/movietix/backend/internal/http"
	"github.com/movietix/backend/internal/idempotency"
	"github.com/movietix/backend/internal/observability"
	"github.com/movietix/backend/internal/outbox"
	"github.com/movietix/backend/internal/rateLimit"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestIntegration_BookingFlow(t *testing.T) {
	ctx := context.Background()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp", "8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer crdbContainer.Terminate(ctx)

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer mongoContainer.Terminate(ctx)

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	rabbitContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-management",
			ExposedPorts: []string{"5672/tcp", "15672/tcp"},
			WaitingFor:   wait.ForHTTP("/api/health").WithPort("15672"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer rabbitContainer.Terminate(ctx)

	crdbHost, err := crdbContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	crdbPort, err := crdbContainer.MappedPort(ctx, "26257")
	if err != nil {
		t.Fatal(err)
	}
	mongoHost, err := mongoContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mongoPort, err := mongoContainer.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatal(err)
	}
	redisHost, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}
	rabbitHost, err := rabbitContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	rabbitPort, err := rabbitContainer.MappedPort(ctx, "5672")
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		CRDBDSN:         "postgresql://root@" + crdbHost + ":" + crdbPort.Port() + "/defaultdb?sslmode=disable",
		MongoURI:        "mongodb://" + mongoHost + ":" + mongoPort.Port(),
		MongoDatabase:   "movietix",
		RedisAddr:       redisHost + ":" + redisPort.Port(),
		RabbitURL:       "amqp://guest:guest@" + rabbitHost + ":" + rabbitPort.Port() + "/",
		SessionTTL:      7 * 24 * time.Hour,
		SeatMapCacheTTL: time.Second,
		IdempotencyTTL:  time.Hour,
		OTLPEndpoint:    "", // Skip otel for test
	}

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		t.Fatal(err)
	}
	defer mongoClient.Disconnect(ctx)
	logger := observability.NewLogger()
	catalog := mongoadapter.NewCatalogRepository(mongoClient.Database(cfg.MongoDatabase), logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(redisCache)

	rabbitConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		t.Fatal(err)
	}
	defer rabbitConn.Close()
	rabbitPub, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		t.Fatal(err)
	}

	// Consume booking.confirmed events so the outbox path is observable.
	consumeCh, err := rabbitConn.Channel()
	if err != nil {
		t.Fatal(err)
	}
	q, err := consumeCh.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := consumeCh.QueueBind(q.Name, "booking.confirmed", "movietix.events", false, nil); err != nil {
		t.Fatal(err)
	}
	deliveries, err := consumeCh.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		t.Fatal(err)
	}

	outboxCtx, cancelOutbox := context.WithCancel(ctx)
	defer cancelOutbox()
	go outbox.NewPublisher(repo, rabbitPub, logger).Run(outboxCtx, 200*time.Millisecond)

	bookingSvc := booking.NewService(catalog, repo, logger)
	authSvc := auth.NewService(repo, cfg.SessionTTL)
	handlers := httphandler.NewHandlers(cfg, logger, bookingSvc, authSvc, catalog, redisCache, idemp)
	srv := httptest.NewServer(httphandler.SetupRouter(handlers, logger, rl))
	defer srv.Close()

	doJSON := func(method, path, token, idempKey string, body interface{}) (*http.Response, map[string]interface{}) {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatal(err)
			}
		}
		req, err := http.NewRequest(method, srv.URL+path, &buf)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if idempKey != "" {
			req.Header.Set("Idempotency-Key", idempKey)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var decoded map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		return resp, decoded
	}

	// Register and log in.
	resp, body := doJSON("POST", "/v1/auth/register", "", "", map[string]string{
		"name":     "Grace",
		"email":    "grace@example.com",
		"password": "correcthorse",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	resp, body = doJSON("POST", "/v1/auth/login", "", "", map[string]string{
		"email":    "grace@example.com",
		"password": "correcthorse",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}

	// Seed catalog through the API.
	resp, body = doJSON("POST", "/v1/movies", token, "", map[string]interface{}{
		"title":            "Heat",
		"description":      "A crew of career criminals against one relentless detective.",
		"duration_minutes": 170,
		"rating":           "R",
		"genre":            []string{"crime"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create movie: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	movieID := body["id"].(string)

	resp, body = doJSON("POST", "/v1/shows", token, "", map[string]interface{}{
		"movie_id":    movieID,
		"start_time":  time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"screen":      "Screen 1",
		"price_cents": 1250,
		"rows":        4,
		"cols":        6,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create show: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	showID := body["id"].(string)

	// Book two seats with an idempotency key.
	idempKey := "itest-booking-1"
	resp, body = doJSON("POST", "/v1/bookings", token, idempKey, map[string]interface{}{
		"show_id": showID,
		"seats":   []string{"A1", "A2"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("booking: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	bookingID := body["booking_id"].(string)
	if body["amount_cents"].(float64) != 2500 {
		t.Errorf("expected amount 2500, got %v", body["amount_cents"])
	}

	// Replaying the same key returns the stored response, no new booking.
	resp, body = doJSON("POST", "/v1/bookings", token, idempKey, map[string]interface{}{
		"show_id": showID,
		"seats":   []string{"A1", "A2"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("replay: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if body["booking_id"].(string) != bookingID {
		t.Errorf("replay returned a different booking: %v vs %s", body["booking_id"], bookingID)
	}

	// An overlapping request is rejected and names the taken seat.
	resp, body = doJSON("POST", "/v1/bookings", token, "", map[string]interface{}{
		"show_id": showID,
		"seats":   []string{"A2", "B1"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overlap: expected 400, got %d (%v)", resp.StatusCode, body)
	}
	seats, _ := body["seats"].([]interface{})
	if len(seats) != 1 || seats[0] != "A2" {
		t.Errorf("expected conflict on A2, got %v", seats)
	}

	// Seat map reflects the booking.
	resp, body = doJSON("GET", "/v1/shows/"+showID+"/seats", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seat map: expected 200, got %d", resp.StatusCode)
	}
	layout, _ := body["layout"].([]interface{})
	if len(layout) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(layout))
	}
	rowA := layout[0].(map[string]interface{})
	seatsA := rowA["seats"].([]interface{})
	booked := 0
	for _, s := range seatsA {
		if s.(map[string]interface{})["booked"].(bool) {
			booked++
		}
	}
	if booked != 2 {
		t.Errorf("expected 2 booked seats in row A, got %d", booked)
	}

	// Booking record round trip.
	resp, body = doJSON("GET", "/v1/bookings/"+bookingID, "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get booking: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["status"].(string) != "confirmed" {
		t.Errorf("expected status confirmed, got %v", body["status"])
	}
	gotSeats, _ := body["seats"].([]interface{})
	if len(gotSeats) != 2 || gotSeats[0] != "A1" || gotSeats[1] != "A2" {
		t.Errorf("expected seats [A1 A2], got %v", gotSeats)
	}

	// The outbox publisher delivers the confirmation event to RabbitMQ.
	select {
	case d := <-deliveries:
		if d.RoutingKey != "booking.confirmed" {
			t.Errorf("expected routing key booking.confirmed, got %s", d.RoutingKey)
		}
		var event map[string]interface{}
		if err := json.Unmarshal(d.Body, &event); err != nil {
			t.Fatalf("event payload not JSON: %v", err)
		}
		if event["booking_id"] != bookingID {
			t.Errorf("expected event for booking %s, got %v", bookingID, event["booking_id"])
		}
	case <-time.After(15 * time.Second):
		t.Fatal("timed out waiting for booking.confirmed event")
	}
}
