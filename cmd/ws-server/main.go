package main

import (
	"context"
	"log"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/api/router"
	"faq-assist-backend/internal/database"
	"faq-assist-backend/internal/env"
	internaljwt "faq-assist-backend/internal/jwt"
	"faq-assist-backend/internal/pubsub"
	"faq-assist-backend/internal/queue"
	"faq-assist-backend/internal/service/archive"
	"faq-assist-backend/internal/service/auth"
	"faq-assist-backend/internal/service/session"
	"faq-assist-backend/internal/service/ticket"
	"faq-assist-backend/internal/signal"
	"faq-assist-backend/internal/translate"
	"faq-assist-backend/internal/websocket"

	"github.com/go-redis/redis/v8"
)

func main() {
	queueManager := queue.NewRequestQueueManager(10, 10)

	db, err := database.NewDatabase(database.Config{
		Region:       env.Get(env.AWSRegion),
		AccessKey:    env.Get(env.AWSID),
		SecretKey:    env.Get(env.AWSSecret),
		SessionToken: env.Get(env.AWSToken),
		Endpoint:     env.Get(env.DynamoDBEndpoint),
	})
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	authRedis := redis.NewClient(&redis.Options{
		Addr:     env.Get(env.AuthRedisURL),
		Password: env.Get(env.AuthRedisPass),
	})
	internaljwt.Configure(env.Get(env.CustomerSecretKey), env.Get(env.AgentSecretKey), authRedis)

	eventsRedis := redis.NewClient(&redis.Options{
		Addr:     env.Get(env.EventsRedisURL),
		Password: env.Get(env.EventsRedisPass),
	})
	broker := pubsub.NewRedisBroker(eventsRedis)

	ticketService := ticket.New(db, broker)
	if err := ticketService.Load(context.Background()); err != nil {
		log.Fatalf("service request load failed: %v", err)
	}
	archiveService := archive.New(db)
	signalClient := signal.NewClient(env.Get(env.SignalServiceURL))
	sessionService := session.New(signalClient, ticketService, archiveService)

	translator := translate.NewClient(env.Get(env.TranslatorURL))
	hub := websocket.NewHub(translator, ticketService)
	go hub.Run()
	handler := websocket.NewHandler(hub, eventsRedis)

	services := &api.Services{
		Sessions: sessionService,
		Tickets:  ticketService,
		Archives: archiveService,
		Auth:     auth.New(db),
		Broker:   broker,
	}

	server := api.NewAPIServer(
		":83",
		queueManager,
		db,
		services,
		handler,
		[]string{env.Get(env.WebUrl), "http://localhost:3000"},
		router.UtilsRoutes("/api/ws/v1"),
		router.LiveChatRoutes("/api/ws/v1"),
	)

	server.Run()
}
