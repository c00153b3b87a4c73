package foods

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/traindiary/backend/internal/telemetry/tracing"
	"github.com/traindiary/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type foodsRepo interface {
	Add(ctx context.Context, food Food) (*Food, error)
	Get(ctx context.Context, id int) (*Food, error)
	Search(ctx context.Context, nameLike string) ([]Food, error)
	Update(ctx context.Context, food *Food) error
	Delete(ctx context.Context, id int) error
}

type DeleteFoodResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo foodsRepo
}

func NewHandler(repo foodsRepo) *Handler {
	return &Handler{repo: repo}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.foods.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var food Food
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		log.Tracef("new food, unmarshal json params: %s", err)
		http.Error(w, "add food failed", http.StatusBadRequest)
		return
	}

	if food.Name == "" {
		http.Error(w, "error, food name empty", http.StatusBadRequest)
		return
	}
	if food.CreatedAt.IsZero() {
		food.CreatedAt = time.Now()
	}

	addedFood, err := handler.repo.Add(ctx, food)
	if err != nil {
		log.Errorf("failed to add food [%s]: %s", food.Name, err)
		http.Error(w, "error, failed to add food", http.StatusInternalServerError)
		return
	}

	foodJson, err := json.Marshal(addedFood)
	if err != nil {
		log.Errorf("failed to marshal food: %s", err)
		http.Error(w, "error, failed to add food", http.StatusInternalServerError)
		return
	}

	log.Debugf("new food added: %s [%d]", addedFood.Name, addedFood.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foodJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.foods.get")
	defer span.End()

	id, ok := foodIDFromPath(w, r)
	if !ok {
		return
	}

	food, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFoodNotFound) {
			http.Error(w, "food not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get food %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	foodJson, err := json.Marshal(food)
	if err != nil {
		log.Errorf("failed to marshal food: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foodJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.foods.list")
	defer span.End()

	foods, err := handler.repo.Search(ctx, r.URL.Query().Get("name"))
	if err != nil {
		log.Errorf("list foods error: %s", err)
		http.Error(w, "failed to get foods", http.StatusInternalServerError)
		return
	}

	foodsJson, err := json.Marshal(foods)
	if err != nil {
		log.Errorf("marshal foods error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foodsJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.foods.update")
	defer span.End()

	id, ok := foodIDFromPath(w, r)
	if !ok {
		return
	}

	var food Food
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		log.Tracef("update food, unmarshal json params: %s", err)
		http.Error(w, "update food failed", http.StatusBadRequest)
		return
	}
	food.ID = id

	if food.Name == "" {
		http.Error(w, "error, food name empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Update(ctx, &food); err != nil {
		if errors.Is(err, ErrFoodNotFound) {
			http.Error(w, "food not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update food %d: %s", id, err)
		http.Error(w, "error, failed to update food", http.StatusInternalServerError)
		return
	}

	foodJson, err := json.Marshal(food)
	if err != nil {
		log.Errorf("failed to marshal food: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foodJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.foods.delete")
	defer span.End()

	id, ok := foodIDFromPath(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrFoodNotFound) {
			http.Error(w, "food not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete food %d: %s", id, err)
		http.Error(w, "food not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteFoodResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func foodIDFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
