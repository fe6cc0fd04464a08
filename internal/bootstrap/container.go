package bootstrap

import (
	"context"
	"log"

	"studysync-be/internal/config"
	"studysync-be/internal/controller"
	"studysync-be/internal/pkg/logger"
	"studysync-be/internal/pkg/mailer"
	"studysync-be/internal/pkg/tokens"
	"studysync-be/internal/repository/memory"
	"studysync-be/internal/repository/unitofwork"
	"studysync-be/internal/service"
	"studysync-be/internal/websocket"

	pktNats "studysync-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController  controller.ISessionController
	ChatController     controller.IChatController
	MeetingController  controller.IMeetingController
	RealtimeController controller.IRealtimeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	presence := memory.NewPresenceRepository(cfg.Realtime.PresenceTTL)
	accessService := service.NewRealtimeAccessService(uowFactory)
	wsHub := websocket.NewHub(rdb, accessService, presence, wsLogger)
	go wsHub.Run()

	// 3. Services
	broadcaster := service.NewBroadcastPublisher(cfg.Realtime.BroadcastTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Realtime.BroadcastTopic,
		wsHub,
		wsLogger,
	)

	sessionService := service.NewSessionService(
		uowFactory,
		broadcaster,
		natsPub,
		cfg.Meeting.GraceBefore,
		cfg.Meeting.GraceAfter,
		sysLogger,
	)
	enrollmentService := service.NewEnrollmentService(uowFactory, broadcaster, natsPub, presence, sysLogger)
	chatService := service.NewChatService(uowFactory, broadcaster, natsPub, sysLogger)

	roomIssuer := tokens.NewJWTIssuer(cfg.Meeting.TokenSecret, "studysync-be", "studysync-meet")
	meetingService := service.NewMeetingService(
		uowFactory,
		roomIssuer,
		cfg.Meeting.BaseURL,
		cfg.Meeting.MaxTokenTTL,
		cfg.Meeting.GraceBefore,
		cfg.Meeting.GraceAfter,
	)

	// 3.5 Notification Worker
	notifService := service.NewNotificationService(natsSub, uowFactory, emailService, cfg.Meeting.BaseURL, sysLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	// 4. Controllers
	return &Container{
		SessionController:  controller.NewSessionController(sessionService, enrollmentService),
		ChatController:     controller.NewChatController(chatService),
		MeetingController:  controller.NewMeetingController(meetingService),
		RealtimeController: controller.NewRealtimeController(wsHub, wsLogger),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}
