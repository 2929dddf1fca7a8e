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

	services := &api.Services{
		Sessions: sessionService,
		Tickets:  ticketService,
		Archives: archiveService,
		Auth:     auth.New(db),
		Broker:   broker,
	}

	server := api.NewAPIServer(
		":81",
		queueManager,
		db,
		services,
		nil,
		[]string{env.Get(env.WebUrl), "http://localhost:3000"},
		router.UtilsRoutes("/api/v1"),
		router.AuthRoutes("/api/v1"),
		router.SessionRoutes("/api/v1"),
		router.TicketRoutes("/api/v1"),
		router.ArchiveRoutes("/api/v1"),
	)

	server.Run()
}
