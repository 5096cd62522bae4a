package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/youknowom/campus-connect/internal/api"
	"github.com/youknowom/campus-connect/internal/auth"
	"github.com/youknowom/campus-connect/internal/config"
	"github.com/youknowom/campus-connect/internal/domain"
	"github.com/youknowom/campus-connect/internal/media"
	"github.com/youknowom/campus-connect/internal/storage"
	"github.com/youknowom/campus-connect/internal/storage/inmemory"
	"github.com/youknowom/campus-connect/internal/storage/postgres"
)

func main() {
	storageType := flag.String("storage", "in-memory", "Storage type (in-memory or postgres)")
	configPath := flag.String("config", "", "Path to yaml config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var store storage.Storage

	log.Printf("Starting server with %s storage", *storageType)
	if *storageType == "postgres" {
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL must be set for postgres storage")
		}
		store, err = postgres.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
	} else {
		memStore := inmemory.New()
		// Заполним данными для ручной проверки
		fillWithMockData(memStore)
		store = memStore
	}

	mediaStore, err := media.NewFSStore(cfg.UploadsDir, cfg.UploadsBaseURL)
	if err != nil {
		log.Fatalf("failed to init media store: %v", err)
	}

	handler := api.NewHandler(store, mediaStore, cfg.MaxUploadBytes, cfg.DevMode)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	// Загруженные изображения раздаются как статика.
	router.Handle(cfg.UploadsBaseURL+"/*",
		http.StripPrefix(cfg.UploadsBaseURL+"/", http.FileServer(http.Dir(mediaStore.Dir()))))

	router.Mount("/", handler.Routes(auth.HeaderResolver{}))

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}

func fillWithMockData(s storage.Storage) {
	ctx := context.Background()

	alice, err := s.EnsureUser(ctx, &domain.User{ID: "user-alice", Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create user: %v", err)
	}
	bob, err := s.EnsureUser(ctx, &domain.User{ID: "user-bob", Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create user: %v", err)
	}

	post, err := s.CreatePost(ctx, &domain.Post{
		AuthorID: alice.ID,
		Content:  "Добро пожаловать в кампусную ленту! Первый пост для проверки.",
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create post: %v", err)
	}

	_, err = s.CreateComment(ctx, &domain.Comment{
		PostID:   post.ID,
		AuthorID: bob.ID,
		Content:  "Отличное начало, проверяю комментарии.",
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create comment: %v", err)
	}

	if _, err := s.UpsertVote(ctx, &domain.Vote{PostID: post.ID, UserID: bob.ID, Value: 1}); err != nil {
		log.Fatalf("fillWithMockData: failed to cast vote: %v", err)
	}

	log.Printf("Mock data filled successfully. Created post ID: %s", post.ID)
}
