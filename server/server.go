package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq" // import postgres driver
	"github.com/modo-agency/web/handler/restapi"
	"github.com/modo-agency/web/storage"
	"github.com/spf13/viper"
)

var (
	logInfo  = log.New(os.Stdout, "INFO: ", log.Ltime)
	logError = log.New(os.Stderr, "ERROR: ", log.Ltime)

	// Db - opened data source, exported for use in tests
	Db *sql.DB
)

// config keys. Every key can be overridden by the same-named env variable
const (
	serverPortKey    string = "server_port"
	environmentKey   string = "environment"
	publicBaseURLKey string = "public_base_url"

	dbUserKey     string = "db_user"
	dbPasswordKey string = "db_password"
	dbNameKey     string = "db_name"
	dbHostKey     string = "db_host"
	dbPortKey     string = "db_port"

	jwtSecretKey string = "jwt_secret_key"

	storageBackendKey string = "storage_backend"
	storageDirKey     string = "storage_dir"
	s3RegionKey       string = "s3_region"
	s3AccessKeyKey    string = "s3_access_key"
	s3SecretKeyKey    string = "s3_secret_key"
	s3BucketKey       string = "s3_bucket"
	s3EndpointKey     string = "s3_endpoint"

	frontDirKey string = "front_dir"

	rateLimitKey string = "rate_limit"

	corsOriginsKey string = "cors_origins"
)

func setConfigDefaults() {
	viper.SetDefault(serverPortKey, "8080")
	viper.SetDefault(environmentKey, "development")
	viper.SetDefault(publicBaseURLKey, "http://localhost:8080")
	viper.SetDefault(dbHostKey, "localhost")
	viper.SetDefault(dbPortKey, "5432")
	viper.SetDefault(storageBackendKey, "fs")
	viper.SetDefault(storageDirKey, "uploads")
	viper.SetDefault(frontDirKey, "front")
	viper.SetDefault(rateLimitKey, 100)
}

func newStorageBackend() (storage.Backend, error) {
	switch viper.GetString(storageBackendKey) {
	case "s3":
		return storage.NewS3(context.Background(), storage.S3Config{
			Region:       viper.GetString(s3RegionKey),
			AccessKey:    viper.GetString(s3AccessKeyKey),
			SecretKey:    viper.GetString(s3SecretKeyKey),
			Bucket:       viper.GetString(s3BucketKey),
			BaseEndpoint: viper.GetString(s3EndpointKey),
		})
	case "fs":
		return storage.NewFS(viper.GetString(storageDirKey), viper.GetString(publicBaseURLKey))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", viper.GetString(storageBackendKey))
	}
}

// RunServer - runs the service. Config file name and path should be passed.
// Exported for use in tests
func RunServer(configPath string) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	setConfigDefaults()
	if err := viper.ReadInConfig(); err != nil {
		logInfo.Printf("No config file loaded, relying on env and defaults: %s", err)
	}

	connString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		viper.GetString(dbHostKey), viper.GetString(dbPortKey), viper.GetString(dbUserKey),
		viper.GetString(dbPasswordKey), viper.GetString(dbNameKey))
	logInfo.Printf("Opening database on host=%s, port=%s, db name=%s...",
		viper.GetString(dbHostKey), viper.GetString(dbPortKey), viper.GetString(dbNameKey))
	var err error
	Db, err = sql.Open("postgres", connString)
	if err != nil {
		logError.Fatalf("Error opening database: %s", err)
	}
	defer func() {
		if err := Db.Close(); err != nil {
			logError.Printf("Error closing database: %s", err)
		}
	}()
	if err = Db.Ping(); err != nil {
		logError.Fatalf("Invalid data source: %s", err)
	}
	logInfo.Print("Database successfully opened")

	signingKey := []byte(viper.GetString(jwtSecretKey))
	if len(signingKey) == 0 {
		logError.Fatal("jwt_secret_key must be set")
	}

	storageBackend, err := newStorageBackend()
	if err != nil {
		logError.Fatalf("Error initializing storage backend: %s", err)
	}

	secureCookies := viper.GetString(environmentKey) == "production"

	authAPIHandler := restapi.NewAuthAPIHandler(Db, signingKey, secureCookies,
		log.New(os.Stdout, "[restApi.auth] INFO: ", log.Ltime),
		log.New(os.Stderr, "[restApi.auth] ERROR: ", log.Ltime))
	postAPIHandler := restapi.NewPostAPIHandler(Db, authAPIHandler,
		log.New(os.Stdout, "[restApi.post] INFO: ", log.Ltime),
		log.New(os.Stderr, "[restApi.post] ERROR: ", log.Ltime))
	tagAPIHandler := restapi.NewTagAPIHandler(Db,
		log.New(os.Stdout, "[restApi.tag] INFO: ", log.Ltime),
		log.New(os.Stderr, "[restApi.tag] ERROR: ", log.Ltime))
	categoryAPIHandler := restapi.NewCategoryAPIHandler(Db,
		log.New(os.Stderr, "[restApi.category] ERROR: ", log.Ltime))
	contactAPIHandler := restapi.NewContactAPIHandler(Db,
		log.New(os.Stdout, "[restApi.contact] INFO: ", log.Ltime),
		log.New(os.Stderr, "[restApi.contact] ERROR: ", log.Ltime))
	reservationAPIHandler := restapi.NewReservationAPIHandler(Db,
		log.New(os.Stdout, "[restApi.reservation] INFO: ", log.Ltime),
		log.New(os.Stderr, "[restApi.reservation] ERROR: ", log.Ltime))
	uploadAPIHandler := restapi.NewUploadAPIHandler(Db, storageBackend,
		log.New(os.Stdout, "[restApi.upload] INFO: ", log.Ltime),
		log.New(os.Stderr, "[restApi.upload] ERROR: ", log.Ltime))
	blogFileHandler := restapi.NewBlogFileHandler(storageBackend,
		log.New(os.Stderr, "[restApi.blogfile] ERROR: ", log.Ltime))

	auth := authAPIHandler.SessionAuthentication

	router := mux.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   viper.GetStringSlice(corsOriginsKey),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", restapi.SessionHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(httprate.LimitByIP(viper.GetInt(rateLimitKey), time.Minute))

	router.HandleFunc("/api/hc", func(w http.ResponseWriter, r *http.Request) {
		if err := Db.Ping(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	// session
	router.Handle("/api/auth/login", authAPIHandler.LoginHandler()).Methods("POST")
	router.Handle("/api/auth/logout", authAPIHandler.LogoutHandler()).Methods("POST")
	router.Handle("/api/auth/session", authAPIHandler.SessionHandler()).Methods("GET")

	// blog content
	router.Handle("/api/posts", postAPIHandler.GetPostsHandler()).Methods("GET")
	router.Handle("/api/posts", auth(postAPIHandler.CreatePostHandler())).Methods("POST")
	router.Handle("/api/posts/{id}", postAPIHandler.GetCertainPostHandler()).Methods("GET")
	router.Handle("/api/posts/{id}", auth(postAPIHandler.UpdatePostHandler())).Methods("PUT")
	router.Handle("/api/posts/{id}", auth(postAPIHandler.DeletePostHandler())).Methods("DELETE")
	router.Handle("/api/posts/{id}/view", postAPIHandler.IncrementViewHandler()).Methods("POST")
	router.Handle("/api/categories", categoryAPIHandler.GetCategoriesHandler()).Methods("GET")
	router.Handle("/api/tags", tagAPIHandler.GetTagsHandler()).Methods("GET")
	router.Handle("/api/tags", auth(tagAPIHandler.CreateTagHandler())).Methods("POST")
	router.Handle("/api/tags/{id}", auth(tagAPIHandler.DeleteTagHandler())).Methods("DELETE")

	// uploads
	router.Handle("/api/upload", auth(uploadAPIHandler.UploadImageHandler())).Methods("POST")
	router.Handle("/api/upload-html", auth(uploadAPIHandler.UploadHTMLHandler())).Methods("POST")
	router.Handle("/api/upload-html", auth(uploadAPIHandler.ReplaceHTMLHandler())).Methods("PUT")
	router.Handle("/blog/{filename}", blogFileHandler.GetFileHandler()).Methods("GET")

	// intake
	router.Handle("/api/contact", contactAPIHandler.SubmitInquiryHandler()).Methods("POST")
	router.Handle("/api/contact", auth(contactAPIHandler.GetInquiriesHandler())).Methods("GET")
	router.Handle("/api/contact/{id}", auth(contactAPIHandler.GetInquiryHandler())).Methods("GET")
	router.Handle("/api/contact/{id}", auth(contactAPIHandler.UpdateInquiryHandler())).Methods("PATCH")
	router.Handle("/api/contact/{id}", auth(contactAPIHandler.DeleteInquiryHandler())).Methods("DELETE")
	router.Handle("/api/pre-reservations", reservationAPIHandler.SubmitReservationHandler()).Methods("POST")
	router.Handle("/api/pre-reservations", auth(reservationAPIHandler.GetReservationsHandler())).Methods("GET")

	// locally stored uploads are served by this process itself
	if viper.GetString(storageBackendKey) == "fs" {
		router.PathPrefix("/files/").Handler(http.StripPrefix("/files/",
			http.FileServer(http.Dir(viper.GetString(storageDirKey)))))
	}

	// frontend static files
	frontDir := viper.GetString(frontDirKey)
	if _, err := os.Stat(frontDir); err == nil {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(frontDir)))
	}

	serverPort := viper.GetString(serverPortKey)
	srv := &http.Server{
		// omitting host will run server on all interfaces
		Addr:              ":" + serverPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logInfo.Printf("Starting server on port %s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logError.Fatalf("Error starting server: %s", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logInfo.Print("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logError.Printf("Error shutting down server: %s", err)
	}
	logInfo.Print("Server stopped")
}
