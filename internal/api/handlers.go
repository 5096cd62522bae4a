package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/youknowom/campus-connect/internal/auth"
	"github.com/youknowom/campus-connect/internal/domain"
	"github.com/youknowom/campus-connect/internal/media"
	"github.com/youknowom/campus-connect/internal/storage"
)

// Handler - транспортный слой поверх хранилища и медиа-стора.
// Бизнес-проверки живут рядом с данными, здесь только разбор запросов,
// ленивое создание пользователя и перевод ошибок в статусы.
type Handler struct {
	store          storage.Storage
	media          media.Store
	maxUploadBytes int64
	devMode        bool
}

func NewHandler(store storage.Storage, mediaStore media.Store, maxUploadBytes int64, devMode bool) *Handler {
	return &Handler{
		store:          store,
		media:          mediaStore,
		maxUploadBytes: maxUploadBytes,
		devMode:        devMode,
	}
}

// Routes собирает маршруты приложения. Распознавание личности висит на
// всем дереве (чтение голосов использует ее опционально), а RequireUser -
// только на пишущих маршрутах.
func (h *Handler) Routes(resolver auth.Resolver) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.Middleware(resolver))

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.getFeed)
		r.With(auth.RequireUser).Post("/", h.createPost)

		r.Route("/{postID}", func(r chi.Router) {
			r.Get("/", h.getPost)
			r.Get("/comments", h.getComments)
			r.With(auth.RequireUser).Post("/comments", h.createComment)
			r.Get("/votes", h.getVotes)
			r.With(auth.RequireUser).Post("/votes", h.castVote)
			r.With(auth.RequireUser).Delete("/votes", h.deleteVote)
		})
	})

	r.Get("/healthz", h.healthz)
	return r
}

// ensureUser лениво материализует запись пользователя в начале любого
// авторизованного обработчика.
func (h *Handler) ensureUser(r *http.Request) (*domain.User, error) {
	identity := auth.From(r.Context())
	return h.store.EnsureUser(r.Context(), identity.User())
}

// === Posts ===

func (h *Handler) getFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.store.GetFeed(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch posts", err)
		return
	}
	respondJSON(w, http.StatusOK, feed)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPostByID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.respondStorageError(w, err, "Failed to fetch post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	user, err := h.ensureUser(r)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to create post", err)
		return
	}

	// Серверный лимит размера загрузки: клиентской проверки недостаточно.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Upload is too large or malformed", err)
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))

	file, header, err := r.FormFile("image")
	hasImage := err == nil
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.respondError(w, http.StatusBadRequest, "Invalid image upload", err)
		return
	}

	if content == "" && !hasImage {
		h.respondError(w, http.StatusBadRequest, "Content or image is required", nil)
		return
	}

	var imageURL *string
	if hasImage {
		defer file.Close()
		// Сначала сохраняем картинку, потом создаем пост: поста без
		// обещанной картинки быть не должно. Компенсирующего удаления
		// файла при неудачной вставке нет - осознанный пробел.
		url, err := h.media.Save(r.Context(), file, header.Filename)
		if err != nil {
			if errors.Is(err, media.ErrBadFilename) {
				h.respondError(w, http.StatusBadRequest, "Invalid image filename", err)
				return
			}
			h.respondError(w, http.StatusInternalServerError, "Failed to store image", err)
			return
		}
		imageURL = &url
	}

	post, err := h.store.CreatePost(r.Context(), &domain.Post{
		AuthorID: user.ID,
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		h.respondStorageError(w, err, "Failed to create post")
		return
	}

	// Форма ответа совпадает с элементом ленты; счетчики у нового поста нулевые.
	respondJSON(w, http.StatusOK, &domain.FeedPost{Post: *post})
}

// === Comments ===

func (h *Handler) getComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.store.GetCommentsByPostID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch comments", err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	user, err := h.ensureUser(r)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to create comment", err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	comment, err := h.store.CreateComment(r.Context(), &domain.Comment{
		PostID:   chi.URLParam(r, "postID"),
		AuthorID: user.ID,
		Content:  req.Content,
	})
	if err != nil {
		h.respondStorageError(w, err, "Failed to create comment")
		return
	}
	respondJSON(w, http.StatusOK, comment)
}

// === Votes ===

func (h *Handler) getVotes(w http.ResponseWriter, r *http.Request) {
	// Личность здесь опциональна: аноним получает агрегат с userVote=null.
	var userID *string
	if identity := auth.From(r.Context()); identity != nil {
		userID = &identity.UserID
	}

	agg, err := h.store.GetVoteAggregate(r.Context(), chi.URLParam(r, "postID"), userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch votes", err)
		return
	}
	respondJSON(w, http.StatusOK, agg)
}

func (h *Handler) castVote(w http.ResponseWriter, r *http.Request) {
	user, err := h.ensureUser(r)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to vote", err)
		return
	}

	var req struct {
		Value int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Повторный голос с тем же значением - перезапись, не переключение.
	// Снять голос можно только явным DELETE; этим занимается клиент.
	vote, err := h.store.UpsertVote(r.Context(), &domain.Vote{
		UserID: user.ID,
		PostID: chi.URLParam(r, "postID"),
		Value:  req.Value,
	})
	if err != nil {
		h.respondStorageError(w, err, "Failed to vote")
		return
	}
	respondJSON(w, http.StatusOK, vote)
}

func (h *Handler) deleteVote(w http.ResponseWriter, r *http.Request) {
	identity := auth.From(r.Context())

	err := h.store.DeleteVote(r.Context(), chi.URLParam(r, "postID"), identity.UserID)
	if err != nil {
		h.respondStorageError(w, err, "Failed to remove vote")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// === Service ===

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.respondError(w, http.StatusInternalServerError, "storage unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
