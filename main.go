package main

import (
	"context"
	"os/signal"
	"syscall"

	api "roadbuddy-backend/cmd/api"
	authDelivery "roadbuddy-backend/internal/auth/delivery"
	authRepo "roadbuddy-backend/internal/auth/repository"
	authUsecase "roadbuddy-backend/internal/auth/usecase"
	chatDelivery "roadbuddy-backend/internal/chat/delivery"
	chatRepo "roadbuddy-backend/internal/chat/repository"
	chatUsecase "roadbuddy-backend/internal/chat/usecase"
	"roadbuddy-backend/internal/event"
	notificationDelivery "roadbuddy-backend/internal/notification/delivery"
	notificationdomain "roadbuddy-backend/internal/notification/domain"
	notificationRepo "roadbuddy-backend/internal/notification/repository"
	notificationUsecase "roadbuddy-backend/internal/notification/usecase"
	paymentDelivery "roadbuddy-backend/internal/payment/delivery"
	paymentdomain "roadbuddy-backend/internal/payment/domain"
	paymentRepo "roadbuddy-backend/internal/payment/repository"
	paymentUsecase "roadbuddy-backend/internal/payment/usecase"
	rideDelivery "roadbuddy-backend/internal/ride/delivery"
	rideRepo "roadbuddy-backend/internal/ride/repository"
	"roadbuddy-backend/internal/ride/scheduler"
	rideUsecase "roadbuddy-backend/internal/ride/usecase"
	vehicleDelivery "roadbuddy-backend/internal/vehicle/delivery"
	vehicleRepo "roadbuddy-backend/internal/vehicle/repository"
	vehicleUsecase "roadbuddy-backend/internal/vehicle/usecase"
	"roadbuddy-backend/pkg/clock"
	"roadbuddy-backend/pkg/config"
	"roadbuddy-backend/pkg/database"
	"roadbuddy-backend/pkg/docstore"
	"roadbuddy-backend/pkg/fcm"
	"roadbuddy-backend/pkg/firebase"
	"roadbuddy-backend/pkg/logger"
	"roadbuddy-backend/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logger.Init("roadbuddy-backend", cfg.IsDevelopment()); err != nil {
		logger.InitDefault("roadbuddy-backend")
		logger.Warn("Falling back to development logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk, err := clock.New(cfg.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	// Document store and identity: Firebase in deployed environments,
	// in-memory store with self-issued JWTs otherwise.
	var (
		store     docstore.Store
		identity  authUsecase.IdentityProvider
		fcmClient *fcm.Client
	)

	if cfg.FirebaseEnabled() {
		app, err := firebase.NewApp(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase", zap.Error(err))
		}

		firestoreClient, err := app.Firestore(ctx)
		if err != nil {
			logger.Fatal("Failed to connect to Firestore", zap.Error(err))
		}
		defer firestoreClient.Close()
		store = docstore.NewFirestoreStore(firestoreClient)

		authClient, err := app.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Auth", zap.Error(err))
		}
		identity = authUsecase.NewFirebaseIdentity(authClient)

		fcmClient, err = fcm.NewClient(ctx, app)
		if err != nil {
			logger.Warn("Failed to initialize FCM client, push notifications disabled", zap.Error(err))
		}
	} else {
		logger.Warn("Firebase not configured, using in-memory document store and development tokens")
		store = docstore.NewMemoryStore()
	}

	userRepository := authRepo.NewUserRepository(store)
	if identity == nil {
		identity = authUsecase.NewDevIdentity(userRepository, cfg.JWTSecret, cfg.JWTAccessExpiry)
	}

	// Postgres is optional and backs device tokens and the payment ledger
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&notificationdomain.DeviceToken{}, &paymentdomain.PaymentRecord{}); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	} else {
		logger.Warn("DATABASE_URL not configured, push devices and payment ledger disabled")
	}

	// Initialize repositories (dependency injection)
	rideRepository := rideRepo.NewRideRepository(store)
	chatRepository := chatRepo.NewChatRepository(store)
	vehicleRepository := vehicleRepo.NewVehicleRepository(store)
	notificationRepository := notificationRepo.NewNotificationRepository(store)

	var (
		tokenRepository notificationRepo.DeviceTokenRepository
		ledger          paymentRepo.PaymentRepository
		pushWorker      *notificationUsecase.PushWorkerService
	)
	if db != nil {
		tokenRepository = notificationRepo.NewDeviceTokenRepository(db)
		ledger = paymentRepo.NewPaymentRepository(db)
		if fcmClient != nil {
			pushWorker = notificationUsecase.NewPushWorkerService(tokenRepository, fcmClient, cfg.PushWorkers)
			pushWorker.Start()
			defer pushWorker.Stop()
		}
	}

	// Ride events go to Pub/Sub when a project is configured
	var publisher event.Publisher
	if cfg.GoogleProjectID != "" {
		publisher, err = event.NewPubSubPublisher(ctx, cfg.GoogleProjectID, cfg.PubSubTopic, cfg.FirebaseCredentials)
		if err != nil {
			logger.Warn("Failed to initialize Pub/Sub publisher, events will only be logged", zap.Error(err))
			publisher = event.NewLogPublisher()
		}
	} else {
		publisher = event.NewLogPublisher()
	}
	defer publisher.Close()

	var processor payment.Processor
	if cfg.StripeSecretKey != "" {
		processor = payment.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeAPIVersion)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not configured, payments disabled")
		processor = payment.NewDisabledProcessor()
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, identity)
	notificationUsecaseInstance := notificationUsecase.NewNotificationUsecase(notificationRepository, tokenRepository, pushWorker, clk)
	chatUsecaseInstance := chatUsecase.NewChatUsecase(chatRepository, notificationUsecaseInstance, clk)
	rideUsecaseInstance := rideUsecase.NewRideUsecase(rideRepository, userRepository, chatUsecaseInstance, notificationUsecaseInstance, publisher, clk)
	vehicleUsecaseInstance := vehicleUsecase.NewVehicleUsecase(vehicleRepository)
	paymentUsecaseInstance := paymentUsecase.NewPaymentUsecase(rideRepository, userRepository, processor, ledger, cfg.StripePublishableKey)

	// Expire past rides in the background
	expiryScheduler := scheduler.NewExpiryScheduler(rideUsecaseInstance, cfg.SweepInterval)
	expiryScheduler.Start()
	defer expiryScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, cfg, api.Handlers{
		Auth:         authDelivery.NewAuthHandler(authUsecaseInstance),
		Ride:         rideDelivery.NewRideHandler(rideUsecaseInstance),
		Vehicle:      vehicleDelivery.NewVehicleHandler(vehicleUsecaseInstance),
		Chat:         chatDelivery.NewChatHandler(chatUsecaseInstance),
		Notification: notificationDelivery.NewNotificationHandler(notificationUsecaseInstance),
		Payment:      paymentDelivery.NewPaymentHandler(paymentUsecaseInstance),
	})

	if err := handler.Start(ctx, ":"+cfg.Port); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
