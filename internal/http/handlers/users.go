package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/rosterhub/internal/cache"
	"github.com/geocoder89/rosterhub/internal/domain/user"
	"github.com/geocoder89/rosterhub/internal/rosterevents"
	"github.com/gin-gonic/gin"
)

const usersListCacheKey = "users:list:v1"

type UsersStore interface {
	List() []user.Record
	Count() int
	Add(name, role, location string) user.Record
	Remove(id int) bool
}

type UsersHandler struct {
	store    UsersStore
	cache    *cache.Cache[jsonBody]
	events   *rosterevents.Dispatcher
	onChange func(count int)
	now      func() time.Time
}

// UsersDeps are the optional collaborators of UsersHandler. Any of them may be nil.
type UsersDeps struct {
	Cache    *cache.Cache[jsonBody]
	Events   *rosterevents.Dispatcher
	OnChange func(count int)
}

type ListUsersResponse struct {
	Count int           `json:"count"`
	Items []user.Record `json:"items"`
}

type CreateUserResponse struct {
	Message string      `json:"message"`
	User    user.Record `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewUsersHandler(store UsersStore) *UsersHandler {
	return NewUsersHandlerWithDeps(store, UsersDeps{})
}

func NewUsersHandlerWithDeps(store UsersStore, deps UsersDeps) *UsersHandler {
	return &UsersHandler{
		store:    store,
		cache:    deps.Cache,
		events:   deps.Events,
		onChange: deps.OnChange,
		now:      time.Now,
	}
}

// NewListCache builds the cache UsersHandler expects for the list payload.
func NewListCache(ttl time.Duration) *cache.Cache[jsonBody] {
	return cache.New[jsonBody](ttl)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(usersListCacheKey); ok {
			respondJSONBodyWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	// taken before reading the store so a concurrent write wins over this body
	var version uint64
	if h.cache != nil {
		version = h.cache.Version()
	}

	items := h.store.List()

	body, err := json.Marshal(ListUsersResponse{Count: len(items), Items: items})
	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	b := newJSONBody(body)

	if h.cache != nil {
		h.cache.SetIfVersion(usersListCacheKey, b, version)
	}

	respondJSONBodyWithETag(ctx, http.StatusOK, b)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rec := h.store.Add(req.Name, req.Role, req.Location)
	h.afterWrite(ctx, rosterevents.UserCreated(rec, h.now()))

	ctx.JSON(http.StatusCreated, CreateUserResponse{
		Message: "User created successfully",
		User:    rec,
	})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	raw := ctx.Param("id")

	id, err := strconv.Atoi(raw)
	if err != nil {
		RespondBadRequest(ctx, "User ID must be an integer", gin.H{
			"fields": []FieldError{{Field: "id", Rule: "int", Message: "must be an integer"}},
		})
		return
	}

	if !h.store.Remove(id) {
		RespondNotFound(ctx, user.NotFoundMessage(id))
		return
	}

	h.afterWrite(ctx, rosterevents.UserDeleted(id, h.now()))

	ctx.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("User %d deleted successfully", id),
	})
}

func (h *UsersHandler) afterWrite(ctx *gin.Context, e rosterevents.Event) {
	if h.cache != nil {
		h.cache.Delete(usersListCacheKey)
	}

	if h.onChange != nil {
		h.onChange(h.store.Count())
	}

	h.events.Dispatch(ctx.Request.Context(), e)
}
