package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"astromatch_server/hub"
	"astromatch_server/middleware"
	"astromatch_server/routes"
	"astromatch_server/services"
	"astromatch_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Live message hub feeding chat sessions and the socket server
	messageHub := hub.New()

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	compatibilityService := services.NewCompatibilityService()
	interactionService := &services.InteractionService{
		Dynamo:        dynamoService,
		Profiles:      userProfileService,
		Compatibility: compatibilityService,
	}
	chatService := &services.ChatService{Dynamo: dynamoService, Hub: messageHub}
	matchService := &services.MatchService{Dynamo: dynamoService, Profiles: userProfileService}
	discoveryService := services.NewDiscoveryService(userProfileService, interactionService, compatibilityService)

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to AstroMatch")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Socket.IO server for live chat updates
	socketServer := socket.NewSocketServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	stopBridge := socket.Bridge(socketServer, messageHub)
	defer stopBridge()
	r.Handle("/socket.io/", socketServer)

	// Authenticated API routes
	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.UserAuth([]byte(jwtSecret)))
	routes.RegisterUserProfileRoutes(api, userProfileService)
	routes.RegisterDiscoveryRoutes(api, discoveryService)
	routes.RegisterChatRoutes(api, chatService, userProfileService, messageHub)
	routes.RegisterMatchRoutes(api, matchService)
	routes.RegisterCompatibilityRoutes(api, compatibilityService)
	routes.RegisterS3Routes(api)

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
