package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"deptchat_server/middleware"
	"deptchat_server/routes"
	"deptchat_server/services"
	"deptchat_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize services
	identityService := &services.IdentityService{Dynamo: dynamoService}
	messageService := &services.MessageService{Dynamo: dynamoService}
	groupService := &services.GroupService{Dynamo: dynamoService}
	notificationService := &services.NotificationService{Dynamo: dynamoService}
	presenceService := services.NewPresenceService()
	mediaService := &services.MediaService{
		Client: services.InitializeS3Client(),
		Bucket: os.Getenv("S3_BUCKET_NAME"),
	}

	chatService := &services.ChatService{
		Identity:      identityService,
		Messages:      messageService,
		Groups:        groupService,
		Notifications: notificationService,
		Presence:      presenceService,
	}

	auth := &middleware.AuthMiddleware{Secret: []byte(jwtSecret)}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to the department chat server")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Start the Socket.IO event channel
	socketServer := socket.NewSocketServer(chatService, presenceService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	r.PathPrefix("/socket.io/").Handler(socketServer)

	// Register routes
	routes.RegisterMessageRoutes(r, auth, chatService, messageService, identityService, groupService)
	routes.RegisterNotificationRoutes(r, auth, notificationService)
	routes.RegisterMediaRoutes(r, auth, mediaService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
